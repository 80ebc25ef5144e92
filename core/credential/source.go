package credential

import (
	"context"
	"errors"

	"github.com/kilianp07/slotgate/core/model"
)

// ErrNoIdentity is returned by sources that have no current identity.
var ErrNoIdentity = errors.New("credential: no identity available")

// IdentitySource reads the current identity. Implementations are read-only
// and may be called concurrently.
type IdentitySource interface {
	Identity(ctx context.Context) (model.Identity, error)
}

// IdentityFunc adapts a function to IdentitySource.
type IdentityFunc func(ctx context.Context) (model.Identity, error)

func (f IdentityFunc) Identity(ctx context.Context) (model.Identity, error) { return f(ctx) }

// StaticIdentity always returns the wrapped identity.
type StaticIdentity model.Identity

func (s StaticIdentity) Identity(context.Context) (model.Identity, error) {
	return model.Identity(s), nil
}

// NoIdentity never has an identity.
type NoIdentity struct{}

func (NoIdentity) Identity(context.Context) (model.Identity, error) {
	return model.Identity{}, ErrNoIdentity
}
