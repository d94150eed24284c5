package domain

import "time"

// EmailType selects the template family used for an email.
type EmailType string

const (
	EmailTypeWelcome             EmailType = "Welcome"
	EmailTypePasswordReset       EmailType = "PasswordReset"
	EmailTypeTicketCreated       EmailType = "TicketCreated"
	EmailTypeTicketStatusChanged EmailType = "TicketStatusChanged"
	EmailTypeTest                EmailType = "Test"
)

// EmailTypes lists every supported email type.
var EmailTypes = []EmailType{
	EmailTypeWelcome,
	EmailTypePasswordReset,
	EmailTypeTicketCreated,
	EmailTypeTicketStatusChanged,
	EmailTypeTest,
}

// Valid reports whether t is a known email type.
func (t EmailType) Valid() bool {
	for _, known := range EmailTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Email records a single send attempt. Append-only.
type Email struct {
	ID              string
	RecipientUserID string
	Address         string
	EmailType       EmailType
	TemplateID      string
	Subject         string
	Body            string
	SentAt          time.Time
	IsSuccess       bool
	ErrorMessage    string
	AuditInfo
}
