package auth

import (
	"context"

	"github.com/helpline-io/support-portal/internal/domain"
)

type principalCtxKey struct{}

// Principal represents the authenticated caller.
type Principal struct {
	IdentityUserID string
	UserType       domain.UserType
	AppUser        *domain.AppUser
}

// WithPrincipal attaches p to ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey{}, p)
}

// PrincipalFrom returns the principal attached to ctx, if any.
func PrincipalFrom(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(principalCtxKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}

// ContextIdentityProvider resolves the current principal from the request context.
type ContextIdentityProvider struct{}

// CurrentPrincipalID returns the identity user id of the caller.
func (ContextIdentityProvider) CurrentPrincipalID(ctx context.Context) (string, bool) {
	p, ok := PrincipalFrom(ctx)
	if !ok || p.IdentityUserID == "" {
		return "", false
	}
	return p.IdentityUserID, true
}
