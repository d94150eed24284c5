package manager

import (
	"context"
	"strings"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// CreateTicketInput describes a new support ticket.
type CreateTicketInput struct {
	Subject     string `validate:"required,max=256"`
	Description string `validate:"required,max=10000"`
}

// StatusChange reports the outcome of a status transition.
type StatusChange struct {
	Ticket    *domain.SupportTicket
	OldStatus domain.TicketStatus
	NewStatus domain.TicketStatus
	Reopened  bool
}

// SupportTicketManager owns the SupportTicket aggregate.
type SupportTicketManager struct {
	core
	tickets repository.SupportTicketRepository
	users   repository.AppUserRepository
}

// NewSupportTicketManager constructs the manager.
func NewSupportTicketManager(tickets repository.SupportTicketRepository, users repository.AppUserRepository, opts ...Option) *SupportTicketManager {
	return &SupportTicketManager{core: newCore(opts), tickets: tickets, users: users}
}

// Create opens a ticket owned by ownerID.
func (m *SupportTicketManager) Create(ctx context.Context, input CreateTicketInput, ownerID, actingUserID string) (*domain.SupportTicket, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input.Subject = strings.TrimSpace(input.Subject)
	input.Description = strings.TrimSpace(input.Description)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if _, err := m.users.GetByID(ctx, ownerID); err != nil {
		return nil, apperrors.FromStore("owner app user", ownerID, err)
	}

	ticket := &domain.SupportTicket{
		ID:          m.newID(),
		Subject:     input.Subject,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		OwnerID:     ownerID,
		AuditInfo:   domain.NewAuditInfo(actingUserID, m.now()),
	}
	if err := m.tickets.Insert(ctx, ticket); err != nil {
		return nil, apperrors.FromStore("support ticket", ticket.ID, err)
	}
	return ticket, nil
}

// GetByID fetches a live ticket.
func (m *SupportTicketManager) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	ticket, err := m.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("support ticket", id, err)
	}
	return ticket, nil
}

// ListPaged returns newest tickets first.
func (m *SupportTicketManager) ListPaged(ctx context.Context, filter repository.SupportTicketFilter, page repository.PageRequest) (repository.Page[domain.SupportTicket], error) {
	result, err := m.tickets.Query(ctx, filter, page.Normalize())
	if err != nil {
		return repository.Page[domain.SupportTicket]{}, apperrors.FromStore("support tickets", "", err)
	}
	return result, nil
}

// ChangeStatus moves a ticket along Open -> InProgress -> Resolved -> Closed,
// or reopens a closed ticket. Only the owner or an agent/technician may do it.
func (m *SupportTicketManager) ChangeStatus(ctx context.Context, id string, target domain.TicketStatus, actor *domain.AppUser) (*StatusChange, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthenticated("")
	}
	if !target.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": target})
	}
	ticket, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.OwnerID != actor.ID && !actor.UserType.IsStaff() {
		return nil, apperrors.NewForbidden("only the ticket owner or support staff may change its status")
	}
	if !domain.CanTransition(ticket.Status, target) {
		return nil, apperrors.NewInvalidStateTransition(string(ticket.Status), string(target))
	}

	now := m.now()
	change := &StatusChange{
		Ticket:    ticket,
		OldStatus: ticket.Status,
		NewStatus: target,
		Reopened:  domain.IsReopen(ticket.Status, target),
	}
	ticket.Status = target
	if target == domain.TicketStatusClosed {
		ticket.ClosedAt = &now
	} else {
		ticket.ClosedAt = nil
	}
	ticket.Touch(actor.IdentityUserID, now)
	if err := m.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.FromStore("support ticket", id, err)
	}
	return change, nil
}

// Assign hands a ticket to an agent or technician.
func (m *SupportTicketManager) Assign(ctx context.Context, id, assigneeID, actingUserID string) (*domain.SupportTicket, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	assignee, err := m.users.GetByID(ctx, assigneeID)
	if err != nil {
		return nil, apperrors.FromStore("assignee app user", assigneeID, err)
	}
	if !assignee.UserType.IsStaff() || !assignee.Active {
		return nil, apperrors.NewValidationError("assignee must be an active agent or technician", map[string]any{
			"assignee_id": assigneeID,
			"user_type":   assignee.UserType,
		})
	}
	ticket, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket.AssigneeID = &assignee.ID
	ticket.Touch(actingUserID, m.now())
	if err := m.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.FromStore("support ticket", id, err)
	}
	return ticket, nil
}

// Delete soft-deletes a ticket.
func (m *SupportTicketManager) Delete(ctx context.Context, id, actingUserID string) error {
	if err := requireActor(actingUserID); err != nil {
		return err
	}
	if err := m.tickets.Delete(ctx, id, actingUserID, m.now()); err != nil {
		return apperrors.FromStore("support ticket", id, err)
	}
	return nil
}
