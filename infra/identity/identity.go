// Package identity provides credential.IdentitySource implementations backed
// by a user file or the process environment.
package identity

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/slotgate/core/credential"
	"github.com/kilianp07/slotgate/core/model"
)

// FileSource reads the identity from a JSON or YAML file on every call so
// that logins and logouts are picked up without a restart.
type FileSource struct {
	Path string
}

// NewFileSource creates a FileSource for path.
func NewFileSource(path string) *FileSource { return &FileSource{Path: path} }

// Identity loads the file. A missing file reports credential.ErrNoIdentity.
func (s *FileSource) Identity(ctx context.Context) (model.Identity, error) {
	if err := ctx.Err(); err != nil {
		return model.Identity{}, err
	}
	if _, err := os.Stat(s.Path); errors.Is(err, os.ErrNotExist) {
		return model.Identity{}, credential.ErrNoIdentity
	}
	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	default:
		parser = json.Parser()
	}
	k := koanf.New(".")
	if err := k.Load(file.Provider(s.Path), parser); err != nil {
		return model.Identity{}, fmt.Errorf("identity file %s: %w", s.Path, err)
	}
	var id model.Identity
	if err := k.UnmarshalWithConf("", &id, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return model.Identity{}, fmt.Errorf("identity file %s: %w", s.Path, err)
	}
	return id, nil
}

// DefaultEnvPrefix is the prefix read by EnvSource.
const DefaultEnvPrefix = "SLOTGATE_IDENTITY_"

// EnvSource reads the identity from environment variables, e.g.
// SLOTGATE_IDENTITY_USERNAME and SLOTGATE_IDENTITY_PERSONAL_AUTH_TOKEN.
type EnvSource struct {
	Prefix string
}

// Identity reads the environment on every call.
func (s EnvSource) Identity(context.Context) (model.Identity, error) {
	prefix := s.Prefix
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	k := koanf.New(".")
	if err := k.Load(env.Provider(prefix, ".", func(v string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(v, prefix)), "_", "")
	}), nil); err != nil {
		return model.Identity{}, err
	}
	if len(k.Keys()) == 0 {
		return model.Identity{}, credential.ErrNoIdentity
	}
	return model.Identity{
		ID:                k.String("id"),
		Username:          k.String("username"),
		PersonalAuthToken: k.String("personalauthtoken"),
	}, nil
}

// Config selects an identity source.
type Config struct {
	// Source is "file", "env" or "none".
	Source    string `json:"source"`
	Path      string `json:"path"`
	EnvPrefix string `json:"env_prefix"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if c.Source == "" {
		c.Source = "file"
	}
	if c.Source == "file" && c.Path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Path = filepath.Join(home, ".slotgate", "user.json")
		}
	}
}

// Validate checks the selected source.
func (c Config) Validate() error {
	switch c.Source {
	case "file":
		if c.Path == "" {
			return errors.New("identity: path is required for file source")
		}
	case "env", "none":
	default:
		return fmt.Errorf("identity: unknown source %q", c.Source)
	}
	return nil
}

// New builds the source described by cfg.
func New(cfg Config) (credential.IdentitySource, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Source {
	case "env":
		return EnvSource{Prefix: cfg.EnvPrefix}, nil
	case "none":
		return credential.NoIdentity{}, nil
	default:
		return NewFileSource(cfg.Path), nil
	}
}
