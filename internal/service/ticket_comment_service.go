package service

import (
	"context"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/manager"
)

// TicketCommentService is the read-only TicketComment facade. Comments are
// created through SupportTicketService.Update.
type TicketCommentService struct {
	comments *manager.TicketCommentManager
	tickets  *manager.SupportTicketManager
	users    *manager.AppUserManager
	identity IdentityProvider
}

// NewTicketCommentService builds the facade.
func NewTicketCommentService(comments *manager.TicketCommentManager, tickets *manager.SupportTicketManager, users *manager.AppUserManager, identity IdentityProvider) *TicketCommentService {
	return &TicketCommentService{comments: comments, tickets: tickets, users: users, identity: identity}
}

// Get returns one comment.
func (s *TicketCommentService) Get(ctx context.Context, id string) (*dto.TicketCommentDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, comment.TicketID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(user, ticket); err != nil {
		return nil, err
	}
	out := toTicketCommentDTO(comment)
	return &out, nil
}

// ListByTicket pages a ticket's comments, oldest first.
func (s *TicketCommentService) ListByTicket(ctx context.Context, ticketID string, q dto.PageQuery) (dto.PagedResult[dto.TicketCommentDTO], error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return dto.PagedResult[dto.TicketCommentDTO]{}, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return dto.PagedResult[dto.TicketCommentDTO]{}, err
	}
	if err := ensureCanView(user, ticket); err != nil {
		return dto.PagedResult[dto.TicketCommentDTO]{}, err
	}
	page, err := s.comments.ListByTicket(ctx, ticketID, pageRequest(q))
	if err != nil {
		return dto.PagedResult[dto.TicketCommentDTO]{}, err
	}
	return mapPage(page, toTicketCommentDTO), nil
}
