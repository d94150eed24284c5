// Package service holds the application facades. Every facade operation resolves
// the current principal before touching a manager and maps DTOs by hand.
package service

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// IdentityProvider supplies the id of the authenticated caller.
type IdentityProvider interface {
	CurrentPrincipalID(ctx context.Context) (string, bool)
}

func currentPrincipal(ctx context.Context, identity IdentityProvider) (string, error) {
	id, ok := identity.CurrentPrincipalID(ctx)
	if !ok || id == "" {
		return "", apperrors.NewUnauthenticated("")
	}
	return id, nil
}

// currentAppUser resolves the caller and the AppUser wrapping their identity.
func currentAppUser(ctx context.Context, identity IdentityProvider, users *manager.AppUserManager) (*domain.AppUser, error) {
	principalID, err := currentPrincipal(ctx, identity)
	if err != nil {
		return nil, err
	}
	return users.GetByIdentityUserID(ctx, principalID)
}

func pageRequest(q dto.PageQuery) repository.PageRequest {
	return repository.PageRequest{Skip: q.Skip, Take: q.Take}
}

func mapPage[E any, D any](page repository.Page[E], convert func(*E) D) dto.PagedResult[D] {
	items := make([]D, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, convert(&page.Items[i]))
	}
	return dto.PagedResult[D]{Items: items, TotalCount: page.Total}
}

func validateRequest(req any) error {
	return apperrors.FromValidation(validate.Struct(req))
}
