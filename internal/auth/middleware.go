package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/helpline-io/support-portal/internal/domain"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// AppUserLookup resolves the AppUser wrapping an identity account.
type AppUserLookup interface {
	GetByIdentityUserID(ctx context.Context, identityUserID string) (*domain.AppUser, error)
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	tokens *TokenManager
	users  AppUserLookup
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users AppUserLookup) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthenticated("")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthenticated("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthenticated("invalid token")
	}

	ctx := c.UserContext()
	user, err := m.users.GetByIdentityUserID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthenticated("user not found")
		}
		return apperrors.FromStore("app user", claims.Subject, err)
	}
	if !user.Active {
		return apperrors.NewUnauthenticated("user is inactive")
	}

	principal := &Principal{IdentityUserID: claims.Subject, UserType: user.UserType, AppUser: user}
	c.Locals(principalKey, principal)
	c.SetUserContext(WithPrincipal(ctx, principal))
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated caller from a fiber context.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
