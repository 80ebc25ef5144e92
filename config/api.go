package config

import "fmt"

// APIConfig defines the HTTP surface served by `slotgate serve`.
type APIConfig struct {
	// Address is the listen address of the API and /metrics.
	Address string `json:"address"`
	// LogsToken protects GET /api/dispatch/logs when set.
	LogsToken string `json:"logs_token"`
	// DispatchToken protects POST /api/dispatch when set.
	DispatchToken   string `json:"dispatch_token"`
	ShutdownSeconds int    `json:"shutdown_seconds"`
}

// SetDefaults applies default values.
func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.ShutdownSeconds <= 0 {
		c.ShutdownSeconds = 10
	}
}

// Validate checks the section.
func (c APIConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("api: address is required")
	}
	return nil
}
