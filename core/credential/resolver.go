// Package credential resolves the bearer credential used for a dispatch.
//
// At most one credential is produced: a caller supplied override wins,
// otherwise the personal token of the current identity is used.
package credential

import (
	"context"
	"strings"

	"github.com/kilianp07/slotgate/core/logger"
	"github.com/kilianp07/slotgate/core/model"
)

// Resolver turns identity state and an optional override into a credential.
type Resolver struct {
	log logger.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(log logger.Logger) *Resolver {
	return &Resolver{log: logger.OrNop(log)}
}

// Resolve returns the credential to attempt. A non-empty override is the
// only candidate and is tagged OriginSpecific. Otherwise the identity's
// personal token is used. Failures reading src are logged and reported as
// no credential.
func (r *Resolver) Resolve(ctx context.Context, src IdentitySource, override string) (model.Credential, bool) {
	if override = strings.TrimSpace(override); override != "" {
		return model.Credential{Value: override, Origin: model.OriginSpecific}, true
	}
	if src == nil {
		return model.Credential{}, false
	}
	id, err := src.Identity(ctx)
	if err != nil {
		r.log.Warnf("read identity: %v", err)
		return model.Credential{}, false
	}
	token := strings.TrimSpace(id.PersonalAuthToken)
	if token == "" {
		return model.Credential{}, false
	}
	return model.Credential{Value: token, Origin: model.OriginPersonal}, true
}

// Username returns the current username, or model.UnknownUsername when the
// identity cannot be read or carries no username.
func (r *Resolver) Username(ctx context.Context, src IdentitySource) string {
	if src == nil {
		return model.UnknownUsername
	}
	id, err := src.Identity(ctx)
	if err != nil {
		return model.UnknownUsername
	}
	return id.DisplayName()
}
