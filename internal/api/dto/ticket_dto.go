package dto

import (
	"time"

	"github.com/helpline-io/support-portal/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Subject     string `json:"subject"`
	Description string `json:"description"`
}

// UpdateTicketRequest changes status and/or appends a comment.
type UpdateTicketRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	AssigneeID string `json:"assignee_id"`
}

// TicketListQuery captures ticket filters.
type TicketListQuery struct {
	Statuses    []domain.TicketStatus
	OwnerID     *string
	AssigneeID  *string
	Search      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	PageQuery
}

// SupportTicketDTO response.
type SupportTicketDTO struct {
	ID          string              `json:"id"`
	Subject     string              `json:"subject"`
	Description string              `json:"description"`
	Status      domain.TicketStatus `json:"status"`
	OwnerID     string              `json:"owner_id"`
	AssigneeID  *string             `json:"assignee_id"`
	ClosedAt    *time.Time          `json:"closed_at"`
	AuditDTO
}

// TicketCommentDTO response.
type TicketCommentDTO struct {
	ID        string    `json:"id"`
	TicketID  string    `json:"ticket_id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
