package templating

import (
	"time"

	"github.com/helpline-io/support-portal/internal/domain"
)

// EmailModel is the data every email template receives.
type EmailModel struct {
	RecipientName string
	Address       string
	PortalURL     string
	ActionURL     string
	Ticket        *domain.SupportTicket
	OldStatus     domain.TicketStatus
	NewStatus     domain.TicketStatus
	Comment       string
}

// ActivityEntry is one line of a ticket activity report.
type ActivityEntry struct {
	CreatedAt  time.Time
	AuthorName string
	Body       string
}

// ReportModel is the data report templates receive.
type ReportModel struct {
	Ticket       *domain.SupportTicket
	OwnerName    string
	AssigneeName string
	Comments     []ActivityEntry
	GeneratedAt  time.Time
	StartDate    *time.Time
	EndDate      *time.Time
}
