package manager

import (
	"context"
	"strings"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

type commentInput struct {
	TicketID string `validate:"required"`
	AuthorID string `validate:"required"`
	Body     string `validate:"required,max=10000"`
}

// TicketCommentManager appends comments to tickets. Comments are never edited.
type TicketCommentManager struct {
	core
	comments repository.TicketCommentRepository
	tickets  repository.SupportTicketRepository
	users    repository.AppUserRepository
}

// NewTicketCommentManager constructs the manager.
func NewTicketCommentManager(comments repository.TicketCommentRepository, tickets repository.SupportTicketRepository, users repository.AppUserRepository, opts ...Option) *TicketCommentManager {
	return &TicketCommentManager{core: newCore(opts), comments: comments, tickets: tickets, users: users}
}

// Create appends a comment by authorID to ticketID.
func (m *TicketCommentManager) Create(ctx context.Context, ticketID, authorID, body, actingUserID string) (*domain.TicketComment, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input := commentInput{TicketID: ticketID, AuthorID: authorID, Body: strings.TrimSpace(body)}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := m.tickets.GetByID(ctx, ticketID); err != nil {
		return nil, apperrors.FromStore("support ticket", ticketID, err)
	}
	if _, err := m.users.GetByID(ctx, authorID); err != nil {
		return nil, apperrors.FromStore("author app user", authorID, err)
	}

	comment := &domain.TicketComment{
		ID:        m.newID(),
		TicketID:  ticketID,
		AuthorID:  authorID,
		Body:      input.Body,
		AuditInfo: domain.NewAuditInfo(actingUserID, m.now()),
	}
	if err := m.comments.Insert(ctx, comment); err != nil {
		return nil, apperrors.FromStore("ticket comment", comment.ID, err)
	}
	return comment, nil
}

// GetByID fetches a comment.
func (m *TicketCommentManager) GetByID(ctx context.Context, id string) (*domain.TicketComment, error) {
	comment, err := m.comments.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("ticket comment", id, err)
	}
	return comment, nil
}

// ListByTicket returns a ticket's comments oldest first.
func (m *TicketCommentManager) ListByTicket(ctx context.Context, ticketID string, page repository.PageRequest) (repository.Page[domain.TicketComment], error) {
	if _, err := m.tickets.GetByID(ctx, ticketID); err != nil {
		return repository.Page[domain.TicketComment]{}, apperrors.FromStore("support ticket", ticketID, err)
	}
	result, err := m.comments.ListByTicket(ctx, ticketID, page.Normalize())
	if err != nil {
		return repository.Page[domain.TicketComment]{}, apperrors.FromStore("ticket comments", ticketID, err)
	}
	return result, nil
}
