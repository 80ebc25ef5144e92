package dispatch

import (
	"context"

	"github.com/kilianp07/slotgate/core/model"
)

// FallbackPolicy supplies the next credential after a failed attempt. It is
// consulted only for dispatches that carry an override credential; normal
// dispatches make a single attempt.
type FallbackPolicy interface {
	Next(ctx context.Context, failed model.Credential, err error) (model.Credential, bool)
}

// SingleAttempt never offers another credential.
type SingleAttempt struct{}

func (SingleAttempt) Next(context.Context, model.Credential, error) (model.Credential, bool) {
	return model.Credential{}, false
}

// CredentialList offers the credentials that follow the failed one, in
// order. When the failed credential is not in the list the whole list is
// offered. Empty values are skipped.
type CredentialList []model.Credential

func (l CredentialList) Next(_ context.Context, failed model.Credential, _ error) (model.Credential, bool) {
	rest := []model.Credential(l)
	for i, c := range l {
		if c.Value == failed.Value {
			rest = l[i+1:]
			break
		}
	}
	for _, c := range rest {
		if c.Value != "" && c.Value != failed.Value {
			return c, true
		}
	}
	return model.Credential{}, false
}
