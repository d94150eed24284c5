package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/domain"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// RequireUserType ensures the principal has one of the allowed user types.
func RequireUserType(allowed ...domain.UserType) fiber.Handler {
	allowedSet := make(map[domain.UserType]struct{}, len(allowed))
	for _, userType := range allowed {
		allowedSet[userType] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthenticated("")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.UserType]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireAdmin restricts a route to administrators.
func RequireAdmin() fiber.Handler {
	return RequireUserType(domain.UserTypeAdmin)
}

// RequireStaff restricts a route to agents, technicians and administrators.
func RequireStaff() fiber.Handler {
	return RequireUserType(domain.UserTypeAgent, domain.UserTypeTechnician, domain.UserTypeAdmin)
}
