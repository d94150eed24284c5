package dto

import (
	"time"

	"github.com/helpline-io/support-portal/internal/domain"
)

// SendTestEmailRequest payload.
type SendTestEmailRequest struct {
	Address   string           `json:"address"`
	EmailType domain.EmailType `json:"email_type"`
}

// EmailDTO is one recorded send attempt.
type EmailDTO struct {
	ID              string           `json:"id"`
	RecipientUserID string           `json:"recipient_user_id"`
	Address         string           `json:"address"`
	EmailType       domain.EmailType `json:"email_type"`
	TemplateID      string           `json:"template_id"`
	Subject         string           `json:"subject"`
	Body            string           `json:"body"`
	SentAt          time.Time        `json:"sent_at"`
	IsSuccess       bool             `json:"is_success"`
	ErrorMessage    string           `json:"error_message,omitempty"`
}

// EmailListQuery filters.
type EmailListQuery struct {
	RecipientUserID *string
	EmailType       *domain.EmailType
	IsSuccess       *bool
	SentFrom        *time.Time
	SentTo          *time.Time
	PageQuery
}
