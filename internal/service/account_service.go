package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/auth"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/events"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// GrantTypePassword is the only grant accepted by the token endpoint.
const GrantTypePassword = "password"

// AccountService registers identity accounts and issues access tokens.
type AccountService struct {
	identities repository.IdentityRepository
	users      *manager.AppUserManager
	tokens     *auth.TokenManager
	dispatcher events.Dispatcher
	identity   IdentityProvider
	bcryptCost int
}

// AccountDependencies bundles the collaborators of the account service.
type AccountDependencies struct {
	Identities repository.IdentityRepository
	Users      *manager.AppUserManager
	Tokens     *auth.TokenManager
	Dispatcher events.Dispatcher
	Identity   IdentityProvider
	BcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(deps AccountDependencies) *AccountService {
	return &AccountService{
		identities: deps.Identities,
		users:      deps.Users,
		tokens:     deps.Tokens,
		dispatcher: deps.Dispatcher,
		identity:   deps.Identity,
		bcryptCost: deps.BcryptCost,
	}
}

// Register creates an identity account, registers its AppUser as a customer
// and returns an access token.
func (s *AccountService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	exists, err := s.identities.Exists(ctx, req.Username, req.Email)
	if err != nil {
		return nil, apperrors.FromStore("identity user", req.Username, err)
	}
	if exists {
		return nil, apperrors.NewConflict("username or email already registered", nil)
	}

	hash, err := hashPassword(req.Password, s.bcryptCost, "password")
	if err != nil {
		return nil, err
	}
	identityUser := &domain.IdentityUser{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Active:       true,
	}
	if err := s.identities.Create(ctx, identityUser); err != nil {
		return nil, apperrors.FromStore("identity user", identityUser.ID, err)
	}

	user, err := s.registerPortalUser(ctx, identityUser, req.DisplayName, req.Phone)
	if err != nil {
		return nil, err
	}
	token, err := s.tokens.GenerateToken(identityUser.ID, user.UserType)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &dto.RegisterResponse{User: toAppUserDTO(user), Token: s.tokenResponse(token)}, nil
}

// registerPortalUser registers the customer AppUser of a new identity and
// announces it. The identity row is already committed at this point; an
// identity left without an AppUser is repaired by its next password grant.
func (s *AccountService) registerPortalUser(ctx context.Context, identityUser *domain.IdentityUser, displayName, phone string) (*domain.AppUser, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = identityUser.Username
	}
	user, err := s.users.RegisterAppUser(ctx, manager.RegisterAppUserInput{
		IdentityUserID: identityUser.ID,
		DisplayName:    displayName,
		Username:       identityUser.Username,
		Email:          identityUser.Email,
		Phone:          phone,
		UserType:       domain.UserTypeCustomer,
	}, identityUser.ID)
	if err != nil {
		return nil, err
	}
	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.New(events.EventUserRegistered, "", identityUser.ID, events.UserRegisteredPayload{
			IdentityUserID: identityUser.ID,
			AppUserID:      user.ID,
			Email:          user.Email,
			DisplayName:    user.DisplayName,
		}))
	}
	return user, nil
}

// hashPassword maps hashing failures onto the error taxonomy.
func hashPassword(password string, cost int, field string) (string, error) {
	hash, err := auth.HashPassword(password, cost)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return "", apperrors.NewValidationError("password is too long", map[string]any{field: "max"})
	}
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return hash, nil
}

// Token implements the password grant.
func (s *AccountService) Token(ctx context.Context, req dto.TokenRequest) (*dto.TokenResponse, error) {
	if req.GrantType != GrantTypePassword {
		return nil, apperrors.NewValidationError("unsupported grant type", map[string]any{"grant_type": req.GrantType})
	}
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("username and password are required", nil)
	}
	identityUser, err := s.identities.GetByUsernameOrEmail(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthenticated("invalid credentials")
		}
		return nil, apperrors.FromStore("identity user", req.Username, err)
	}
	if !identityUser.Active {
		return nil, apperrors.NewUnauthenticated("account is disabled")
	}
	if err := auth.ComparePassword(identityUser.PasswordHash, req.Password); err != nil {
		return nil, apperrors.NewUnauthenticated("invalid credentials")
	}
	if auth.NeedsRehash(identityUser.PasswordHash, s.bcryptCost) {
		if hash, err := auth.HashPassword(req.Password, s.bcryptCost); err == nil {
			_ = s.identities.UpdatePassword(ctx, identityUser.ID, hash)
		}
	}
	user, err := s.users.GetByIdentityUserID(ctx, identityUser.ID)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		user, err = s.registerPortalUser(ctx, identityUser, "", "")
	}
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(identityUser.ID, user.UserType)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	out := s.tokenResponse(token)
	return &out, nil
}

// ChangePassword replaces the caller's password after checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, req dto.PasswordChangeRequest) error {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return err
	}
	if err := validateRequest(req); err != nil {
		return err
	}
	identityUser, err := s.identities.GetByID(ctx, principalID)
	if err != nil {
		return apperrors.FromStore("identity user", principalID, err)
	}
	if err := auth.ComparePassword(identityUser.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.NewValidationError("current password is incorrect", map[string]any{"current_password": "mismatch"})
	}
	hash, err := hashPassword(req.NewPassword, s.bcryptCost, "new_password")
	if err != nil {
		return err
	}
	if err := s.identities.UpdatePassword(ctx, principalID, hash); err != nil {
		return apperrors.FromStore("identity user", principalID, err)
	}
	return nil
}

func (s *AccountService) tokenResponse(token *domain.Token) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken: token.Value,
		TokenType:   "Bearer",
		ExpiresIn:   int(token.ExpiresAt.Sub(token.IssuedAt).Seconds()),
	}
}
