package manager

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

func TestRecordEmailKeepsFailures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sent, err := f.emails.Record(ctx, RecordEmailInput{
		RecipientUserID: "identity-alice",
		Address:         "alice@example.com",
		EmailType:       domain.EmailTypeWelcome,
		TemplateID:      "emails/Welcome",
		Subject:         "Welcome",
		Body:            "Hello",
		IsSuccess:       true,
	}, "identity-alice")
	require.NoError(t, err)
	assert.False(t, sent.SentAt.IsZero())

	failed, err := f.emails.Record(ctx, RecordEmailInput{
		RecipientUserID: "identity-alice",
		Address:         "alice@example.com",
		EmailType:       domain.EmailTypeTest,
		TemplateID:      "emails/Test",
		ErrorMessage:    "connection refused",
	}, "identity-alice")
	require.NoError(t, err)
	assert.False(t, failed.IsSuccess)

	success := false
	page, err := f.emails.ListPaged(ctx, repository.EmailFilter{IsSuccess: &success}, repository.PageRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "connection refused", page.Items[0].ErrorMessage)

	got, err := f.emails.GetByID(ctx, sent.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EmailTypeWelcome, got.EmailType)
}

func TestRecordEmailValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	input := RecordEmailInput{
		RecipientUserID: "identity-alice",
		Address:         "alice@example.com",
		EmailType:       "Newsletter",
		TemplateID:      "emails/Newsletter",
	}

	_, err := f.emails.Record(ctx, input, "identity-alice")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidationFailed))

	input.EmailType = domain.EmailTypeTest
	_, err = f.emails.Record(ctx, input, "")
	assert.True(t, apperrors.Is(err, apperrors.CodeUnauthenticated))
	assert.Zero(t, f.store.Emails.Count())
}
