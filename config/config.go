package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/slotgate/core/dispatch"
	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/metrics"
	"github.com/kilianp07/slotgate/infra/identity"
	"github.com/kilianp07/slotgate/infra/mqtt"
)

type Config struct {
	Dispatch  dispatch.Config      `json:"dispatch"`
	Allocator factory.ModuleConfig `json:"allocator"`
	Identity  identity.Config      `json:"identity"`
	Logging   LoggingConfig        `json:"logging"`
	Metrics   metrics.Config       `json:"metrics"`
	MQTT      mqtt.Config          `json:"mqtt"`
	Sentry    SentryConfig         `json:"sentry"`
	API       APIConfig            `json:"api"`
}

// Load reads a YAML or JSON file and applies K_ prefixed environment
// overrides, e.g. K_DISPATCH__COOLDOWN_SECONDS=30.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Dispatch.SetDefaults()
	c.Identity.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.Sentry.SetDefaults()
	c.API.SetDefaults()
}

// Validate checks every section.
func (c Config) Validate() error {
	if c.Allocator.Type == "" {
		return errors.New("allocator: type is required")
	}
	for _, v := range []interface{ Validate() error }{c.Dispatch, c.Identity, c.Logging, c.MQTT, c.API} {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
