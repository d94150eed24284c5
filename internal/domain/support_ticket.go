package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketStatuses lists all statuses in lifecycle order.
var TicketStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	for _, known := range TicketStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// SupportTicket is the aggregate root for support requests. Comments belong to it.
type SupportTicket struct {
	ID          string
	Subject     string
	Description string
	Status      TicketStatus
	OwnerID     string
	AssigneeID  *string
	ClosedAt    *time.Time
	AuditInfo
}

// Closed -> Open is the reopen transition.
var allowedTransitions = map[TicketStatus]TicketStatus{
	TicketStatusOpen:       TicketStatusInProgress,
	TicketStatusInProgress: TicketStatusResolved,
	TicketStatusResolved:   TicketStatusClosed,
	TicketStatusClosed:     TicketStatusOpen,
}

// CanTransition reports whether current -> next is a legal status change.
func CanTransition(current, next TicketStatus) bool {
	allowed, ok := allowedTransitions[current]
	return ok && allowed == next
}

// IsReopen reports whether current -> next reopens a closed ticket.
func IsReopen(current, next TicketStatus) bool {
	return current == TicketStatusClosed && next == TicketStatusOpen
}
