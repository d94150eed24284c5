package manager

import (
	"context"
	"time"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// RecordEmailInput describes one send attempt.
type RecordEmailInput struct {
	RecipientUserID string           `validate:"required"`
	Address         string           `validate:"required,email"`
	EmailType       domain.EmailType `validate:"required"`
	TemplateID      string           `validate:"required"`
	Subject         string
	Body            string
	SentAt          time.Time
	IsSuccess       bool
	ErrorMessage    string
}

// EmailManager keeps the append-only email log.
type EmailManager struct {
	core
	emails repository.EmailRepository
}

// NewEmailManager constructs the manager.
func NewEmailManager(emails repository.EmailRepository, opts ...Option) *EmailManager {
	return &EmailManager{core: newCore(opts), emails: emails}
}

// Record stores a send attempt whether or not it succeeded.
func (m *EmailManager) Record(ctx context.Context, input RecordEmailInput, actingUserID string) (*domain.Email, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if !input.EmailType.Valid() {
		return nil, apperrors.NewValidationError("unknown email type", map[string]any{"email_type": input.EmailType})
	}
	now := m.now()
	sentAt := input.SentAt
	if sentAt.IsZero() {
		sentAt = now
	}
	email := &domain.Email{
		ID:              m.newID(),
		RecipientUserID: input.RecipientUserID,
		Address:         input.Address,
		EmailType:       input.EmailType,
		TemplateID:      input.TemplateID,
		Subject:         input.Subject,
		Body:            input.Body,
		SentAt:          sentAt,
		IsSuccess:       input.IsSuccess,
		ErrorMessage:    input.ErrorMessage,
		AuditInfo:       domain.NewAuditInfo(actingUserID, now),
	}
	if err := m.emails.Insert(ctx, email); err != nil {
		return nil, apperrors.FromStore("email", email.ID, err)
	}
	return email, nil
}

// GetByID fetches a recorded email.
func (m *EmailManager) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	email, err := m.emails.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("email", id, err)
	}
	return email, nil
}

// ListPaged returns newest emails first.
func (m *EmailManager) ListPaged(ctx context.Context, filter repository.EmailFilter, page repository.PageRequest) (repository.Page[domain.Email], error) {
	result, err := m.emails.Query(ctx, filter, page.Normalize())
	if err != nil {
		return repository.Page[domain.Email]{}, apperrors.FromStore("emails", "", err)
	}
	return result, nil
}
