package domain

// TicketComment is an immutable entry in a ticket thread.
type TicketComment struct {
	ID       string
	TicketID string
	AuthorID string
	Body     string
	AuditInfo
}
