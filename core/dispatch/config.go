package dispatch

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/model"
)

// Config defines dispatch-related settings.
type Config struct {
	// GenerationOperations lists the operation tags that require a slot.
	GenerationOperations []string `json:"generation_operations"`
	// Servers are the generation backends; an endpoint belongs to the
	// server whose base URL prefixes it.
	Servers []model.Server `json:"servers"`
	// CooldownSeconds is the slot lifetime requested from the allocator.
	CooldownSeconds int `json:"cooldown_seconds"`
	// RetryDelayMS is the wait between two busy allocator answers.
	RetryDelayMS int `json:"retry_delay_ms"`
	// HTTPTimeoutSeconds bounds the HTTP exchange; zero means no timeout.
	HTTPTimeoutSeconds int `json:"http_timeout_seconds"`
	// DefaultEndpoint is used by the CLI when no endpoint is given.
	DefaultEndpoint string `json:"default_endpoint"`
	// FallbackPolicy names the policy consulted after a failed override
	// attempt. Empty means a single attempt.
	FallbackPolicy factory.ModuleConfig `json:"fallback_policy"`
}

// SetDefaults applies default values.
func (c *Config) SetDefaults() {
	if len(c.GenerationOperations) == 0 {
		c.GenerationOperations = []string{"generate"}
	}
	if c.CooldownSeconds <= 0 {
		c.CooldownSeconds = 60
	}
	if c.RetryDelayMS <= 0 {
		c.RetryDelayMS = 2000
	}
}

// Validate checks server definitions.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Servers))
	for i, s := range c.Servers {
		if s.BaseURL == "" {
			return fmt.Errorf("dispatch: server %d has no base_url", i)
		}
		if !strings.HasPrefix(s.BaseURL, "http://") && !strings.HasPrefix(s.BaseURL, "https://") {
			return fmt.Errorf("dispatch: server %s base_url must be http(s)", s.BaseURL)
		}
		if seen[s.BaseURL] {
			return fmt.Errorf("dispatch: duplicate server %s", s.BaseURL)
		}
		seen[s.BaseURL] = true
	}
	if c.HTTPTimeoutSeconds < 0 {
		return fmt.Errorf("dispatch: http_timeout_seconds must not be negative")
	}
	return nil
}

// RetryDelay returns RetryDelayMS as a duration.
func (c Config) RetryDelay() time.Duration {
	return time.Duration(c.RetryDelayMS) * time.Millisecond
}

// HTTPTimeout returns HTTPTimeoutSeconds as a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}
