package plugins

import (
	"fmt"

	"github.com/kilianp07/slotgate/core/dispatch"
	"github.com/kilianp07/slotgate/core/factory"
	"github.com/kilianp07/slotgate/core/model"
)

// ListConf configures the "list" policy.
type ListConf struct {
	Tokens []string `json:"tokens"`
}

func init() {
	must(RegisterFallbackPolicy("single", func(map[string]any) (dispatch.FallbackPolicy, error) {
		return dispatch.SingleAttempt{}, nil
	}))
	must(RegisterFallbackPolicy("list", func(conf map[string]any) (dispatch.FallbackPolicy, error) {
		var c ListConf
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if len(c.Tokens) == 0 {
			return nil, fmt.Errorf("list policy: tokens are required")
		}
		l := make(dispatch.CredentialList, 0, len(c.Tokens))
		for _, t := range c.Tokens {
			l = append(l, model.Credential{Value: t, Origin: model.OriginSpecific})
		}
		return l, nil
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
