package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/auth"
	"github.com/helpline-io/support-portal/internal/domain"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

func TestRegisterCreatesCustomerAndSendsWelcome(t *testing.T) {
	e := newEnv(t)

	resp, err := e.accountSvc.Register(context.Background(), dto.RegisterRequest{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "correct horse battery",
		DisplayName: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.UserTypeCustomer, resp.User.UserType)
	assert.Equal(t, "Alice", resp.User.DisplayName)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.AccessToken)
	assert.Equal(t, 15*60, resp.Token.ExpiresIn)

	user, err := e.users.GetByIdentityUserID(context.Background(), resp.User.IdentityUserID)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, user.ID)

	require.Equal(t, 1, e.sender.count())
	assert.Equal(t, "alice@example.com", e.sender.sent[0].Address)
	assert.Equal(t, 1, e.store.Emails.Count())
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	e := newEnv(t)
	e.register(t, "bob", domain.UserTypeCustomer)

	_, err := e.accountSvc.Register(context.Background(), dto.RegisterRequest{
		Username: "bob",
		Email:    "other@example.com",
		Password: "correct horse battery",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestRegisterValidatesInput(t *testing.T) {
	e := newEnv(t)

	_, err := e.accountSvc.Register(context.Background(), dto.RegisterRequest{
		Username: "carol",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	assert.Zero(t, e.sender.count())
}

func TestTokenPasswordGrant(t *testing.T) {
	e := newEnv(t)
	e.register(t, "dave", domain.UserTypeCustomer)

	tok, err := e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: GrantTypePassword,
		Username:  "dave@example.com",
		Password:  "correct horse battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tok.AccessToken)

	_, err = e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: GrantTypePassword,
		Username:  "dave",
		Password:  "wrong password",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	_, err = e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: GrantTypePassword,
		Username:  "nobody",
		Password:  "correct horse battery",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))

	_, err = e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: "client_credentials",
		Username:  "dave",
		Password:  "correct horse battery",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
}

func TestChangePassword(t *testing.T) {
	e := newEnv(t)
	ctx, _ := e.register(t, "erin", domain.UserTypeCustomer)

	err := e.accountSvc.ChangePassword(ctx, dto.PasswordChangeRequest{
		CurrentPassword: "wrong",
		NewPassword:     "a brand new secret",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	require.NoError(t, e.accountSvc.ChangePassword(ctx, dto.PasswordChangeRequest{
		CurrentPassword: "correct horse battery",
		NewPassword:     "a brand new secret",
	}))

	_, err = e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: GrantTypePassword, Username: "erin", Password: "correct horse battery",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	_, err = e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: GrantTypePassword, Username: "erin", Password: "a brand new secret",
	})
	assert.NoError(t, err)

	err = e.accountSvc.ChangePassword(anonymous(), dto.PasswordChangeRequest{
		CurrentPassword: "a brand new secret",
		NewPassword:     "another secret value",
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
}

func TestRegisterRejectsPasswordBcryptCannotHash(t *testing.T) {
	e := newEnv(t)

	// 30 runes pass the length rule but take 90 bytes.
	_, err := e.accountSvc.Register(context.Background(), dto.RegisterRequest{
		Username: "gwen",
		Email:    "gwen@example.com",
		Password: strings.Repeat("€", 30),
	})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))
	exists, err := e.store.Identities.Exists(context.Background(), "gwen", "gwen@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTokenRepairsIdentityWithoutPortalUser(t *testing.T) {
	e := newEnv(t)
	hash, err := auth.HashPassword("correct horse battery", 4)
	require.NoError(t, err)
	orphan := &domain.IdentityUser{ID: "6f1c2a9e-0000-4000-8000-000000000001", Username: "hank", Email: "hank@example.com", PasswordHash: hash, Active: true}
	require.NoError(t, e.store.Identities.Create(context.Background(), orphan))

	for i := 0; i < 2; i++ {
		tok, err := e.accountSvc.Token(context.Background(), dto.TokenRequest{
			GrantType: GrantTypePassword, Username: "hank", Password: "correct horse battery",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tok.AccessToken)
	}

	user, err := e.users.GetByIdentityUserID(context.Background(), orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserTypeCustomer, user.UserType)
	assert.Equal(t, "hank", user.DisplayName)
	assert.Len(t, emailsOfType(t, e, domain.EmailTypeWelcome), 1)
}

func TestTokenRehashesAtConfiguredCost(t *testing.T) {
	e := newEnv(t)
	hash, err := auth.HashPassword("correct horse battery", 5)
	require.NoError(t, err)
	identityUser := &domain.IdentityUser{ID: "6f1c2a9e-0000-4000-8000-000000000002", Username: "iris", Email: "iris@example.com", PasswordHash: hash, Active: true}
	require.NoError(t, e.store.Identities.Create(context.Background(), identityUser))

	_, err = e.accountSvc.Token(context.Background(), dto.TokenRequest{
		GrantType: GrantTypePassword, Username: "iris", Password: "correct horse battery",
	})
	require.NoError(t, err)

	stored, err := e.store.Identities.GetByID(context.Background(), identityUser.ID)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(stored.PasswordHash))
	require.NoError(t, err)
	assert.Equal(t, 4, cost)
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "correct horse battery"))
}
