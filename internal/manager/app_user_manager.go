package manager

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// RegisterAppUserInput describes a new AppUser for an identity account.
type RegisterAppUserInput struct {
	IdentityUserID string          `validate:"required"`
	DisplayName    string          `validate:"required,max=128"`
	Username       string          `validate:"required,max=64"`
	Email          string          `validate:"required,email,max=256"`
	Phone          string          `validate:"max=32"`
	UserType       domain.UserType `validate:"omitempty,oneof=CUSTOMER AGENT TECHNICIAN ADMIN"`
}

// UpdateAppUserInput carries editable AppUser fields.
type UpdateAppUserInput struct {
	DisplayName string          `validate:"required,max=128"`
	Email       string          `validate:"required,email,max=256"`
	Phone       string          `validate:"max=32"`
	UserType    domain.UserType `validate:"required,oneof=CUSTOMER AGENT TECHNICIAN ADMIN"`
	Active      bool
}

// AppUserManager owns the AppUser aggregate.
type AppUserManager struct {
	core
	users      repository.AppUserRepository
	identities repository.IdentityRepository
}

// NewAppUserManager constructs the manager.
func NewAppUserManager(users repository.AppUserRepository, identities repository.IdentityRepository, opts ...Option) *AppUserManager {
	return &AppUserManager{core: newCore(opts), users: users, identities: identities}
}

// RegisterAppUser creates the AppUser for an identity account. At most one live
// AppUser exists per identity; a second registration fails with CONFLICT.
func (m *AppUserManager) RegisterAppUser(ctx context.Context, input RegisterAppUserInput, actingUserID string) (*domain.AppUser, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if input.UserType == "" {
		input.UserType = domain.UserTypeCustomer
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := m.identities.GetByID(ctx, input.IdentityUserID); err != nil {
		return nil, apperrors.FromStore("identity user", input.IdentityUserID, err)
	}
	existing, err := m.users.GetByIdentityUserID(ctx, input.IdentityUserID)
	if err == nil && existing != nil {
		return nil, apperrors.NewConflict("app user already registered for identity", map[string]any{
			"identity_user_id": input.IdentityUserID,
			"app_user_id":      existing.ID,
		})
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.FromStore("app user", input.IdentityUserID, err)
	}

	user := &domain.AppUser{
		ID:             m.newID(),
		IdentityUserID: input.IdentityUserID,
		DisplayName:    input.DisplayName,
		Username:       input.Username,
		Email:          input.Email,
		Phone:          input.Phone,
		UserType:       input.UserType,
		Active:         true,
		AuditInfo:      domain.NewAuditInfo(actingUserID, m.now()),
	}
	if err := m.users.Insert(ctx, user); err != nil {
		return nil, apperrors.FromStore("app user", user.ID, err)
	}
	return user, nil
}

// GetByID fetches a live AppUser.
func (m *AppUserManager) GetByID(ctx context.Context, id string) (*domain.AppUser, error) {
	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("app user", id, err)
	}
	return user, nil
}

// GetByIdentityUserID resolves the AppUser wrapping an identity account.
func (m *AppUserManager) GetByIdentityUserID(ctx context.Context, identityUserID string) (*domain.AppUser, error) {
	user, err := m.users.GetByIdentityUserID(ctx, identityUserID)
	if err != nil {
		return nil, apperrors.FromStore("app user", identityUserID, err)
	}
	return user, nil
}

// ListPaged returns newest AppUsers first.
func (m *AppUserManager) ListPaged(ctx context.Context, filter repository.AppUserFilter, page repository.PageRequest) (repository.Page[domain.AppUser], error) {
	result, err := m.users.Query(ctx, filter, page.Normalize())
	if err != nil {
		return repository.Page[domain.AppUser]{}, apperrors.FromStore("app users", "", err)
	}
	return result, nil
}

// Update edits profile fields of an AppUser.
func (m *AppUserManager) Update(ctx context.Context, id string, input UpdateAppUserInput, actingUserID string) (*domain.AppUser, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input.DisplayName = strings.TrimSpace(input.DisplayName)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	user, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	user.DisplayName = input.DisplayName
	user.Email = input.Email
	user.Phone = input.Phone
	user.UserType = input.UserType
	user.Active = input.Active
	user.Touch(actingUserID, m.now())
	if err := m.users.Update(ctx, user); err != nil {
		return nil, apperrors.FromStore("app user", id, err)
	}
	return user, nil
}

// Delete soft-deletes an AppUser.
func (m *AppUserManager) Delete(ctx context.Context, id, actingUserID string) error {
	if err := requireActor(actingUserID); err != nil {
		return err
	}
	if err := m.users.Delete(ctx, id, actingUserID, m.now()); err != nil {
		return apperrors.FromStore("app user", id, err)
	}
	return nil
}
