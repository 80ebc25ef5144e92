// Package plugins holds the named fallback policies selectable from
// configuration.
package plugins

import (
	"github.com/kilianp07/slotgate/core/dispatch"
	"github.com/kilianp07/slotgate/core/factory"
)

var policies = factory.NewRegistry[dispatch.FallbackPolicy]()

// RegisterFallbackPolicy adds a policy factory identified by name.
func RegisterFallbackPolicy(name string, f factory.Factory[dispatch.FallbackPolicy]) error {
	return policies.Register(name, f)
}

// NewFallbackPolicy builds the policy named by cfg.Type. An empty type yields
// dispatch.SingleAttempt.
func NewFallbackPolicy(cfg factory.ModuleConfig) (dispatch.FallbackPolicy, error) {
	if cfg.Type == "" {
		return dispatch.SingleAttempt{}, nil
	}
	return policies.Create(cfg)
}

// FallbackPolicies lists registered policy names.
func FallbackPolicies() []string { return policies.Types() }
