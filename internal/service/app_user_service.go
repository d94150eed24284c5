package service

import (
	"context"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/repository"
)

// AppUserService is the AppUser facade.
type AppUserService struct {
	users    *manager.AppUserManager
	identity IdentityProvider
}

// NewAppUserService builds the facade.
func NewAppUserService(users *manager.AppUserManager, identity IdentityProvider) *AppUserService {
	return &AppUserService{users: users, identity: identity}
}

// GetMe returns the AppUser of the caller.
func (s *AppUserService) GetMe(ctx context.Context) (*dto.AppUserDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	out := toAppUserDTO(user)
	return &out, nil
}

// Get returns one AppUser.
func (s *AppUserService) Get(ctx context.Context, id string) (*dto.AppUserDTO, error) {
	if _, err := currentPrincipal(ctx, s.identity); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := toAppUserDTO(user)
	return &out, nil
}

// List pages AppUsers, newest first.
func (s *AppUserService) List(ctx context.Context, q dto.AppUserListQuery) (dto.PagedResult[dto.AppUserDTO], error) {
	if _, err := currentPrincipal(ctx, s.identity); err != nil {
		return dto.PagedResult[dto.AppUserDTO]{}, err
	}
	page, err := s.users.ListPaged(ctx, repository.AppUserFilter{
		UserTypes:  q.UserTypes,
		Active:     q.Active,
		SearchTerm: q.Search,
	}, pageRequest(q.PageQuery))
	if err != nil {
		return dto.PagedResult[dto.AppUserDTO]{}, err
	}
	return mapPage(page, toAppUserDTO), nil
}

// Update edits an AppUser profile.
func (s *AppUserService) Update(ctx context.Context, id string, req dto.UpdateAppUserRequest) (*dto.AppUserDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	user, err := s.users.Update(ctx, id, toUpdateAppUserInput(req), principalID)
	if err != nil {
		return nil, err
	}
	out := toAppUserDTO(user)
	return &out, nil
}

// Delete soft-deletes an AppUser.
func (s *AppUserService) Delete(ctx context.Context, id string) error {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return err
	}
	return s.users.Delete(ctx, id, principalID)
}
