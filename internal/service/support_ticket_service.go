package service

import (
	"context"
	"strings"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/events"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// SupportTicketService is the SupportTicket facade.
type SupportTicketService struct {
	tickets    *manager.SupportTicketManager
	comments   *manager.TicketCommentManager
	users      *manager.AppUserManager
	dispatcher events.Dispatcher
	identity   IdentityProvider
}

// SupportTicketDependencies bundles the collaborators of the ticket facade.
type SupportTicketDependencies struct {
	Tickets    *manager.SupportTicketManager
	Comments   *manager.TicketCommentManager
	Users      *manager.AppUserManager
	Dispatcher events.Dispatcher
	Identity   IdentityProvider
}

// NewSupportTicketService builds the facade.
func NewSupportTicketService(deps SupportTicketDependencies) *SupportTicketService {
	return &SupportTicketService{
		tickets:    deps.Tickets,
		comments:   deps.Comments,
		users:      deps.Users,
		dispatcher: deps.Dispatcher,
		identity:   deps.Identity,
	}
}

// Create opens a ticket owned by the caller.
func (s *SupportTicketService) Create(ctx context.Context, req dto.CreateTicketRequest) (*dto.SupportTicketDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.Create(ctx, toCreateTicketInput(req), user.ID, user.IdentityUserID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventTicketCreated, ticket.ID, user.IdentityUserID, events.TicketCreatedPayload{
		OwnerID: ticket.OwnerID,
		Subject: ticket.Subject,
	}))
	out := toSupportTicketDTO(ticket)
	return &out, nil
}

// Get returns a ticket the caller may see.
func (s *SupportTicketService) Get(ctx context.Context, id string) (*dto.SupportTicketDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(user, ticket); err != nil {
		return nil, err
	}
	out := toSupportTicketDTO(ticket)
	return &out, nil
}

// List pages tickets, newest first. Customers only see their own tickets.
func (s *SupportTicketService) List(ctx context.Context, q dto.TicketListQuery) (dto.PagedResult[dto.SupportTicketDTO], error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return dto.PagedResult[dto.SupportTicketDTO]{}, err
	}
	filter := repository.SupportTicketFilter{
		OwnerID:     q.OwnerID,
		AssigneeID:  q.AssigneeID,
		Statuses:    q.Statuses,
		SearchTerm:  q.Search,
		CreatedFrom: q.CreatedFrom,
		CreatedTo:   q.CreatedTo,
	}
	if user.UserType == domain.UserTypeCustomer {
		filter.OwnerID = &user.ID
	}
	page, err := s.tickets.ListPaged(ctx, filter, pageRequest(q.PageQuery))
	if err != nil {
		return dto.PagedResult[dto.SupportTicketDTO]{}, err
	}
	return mapPage(page, toSupportTicketDTO), nil
}

// Update changes the ticket status and/or appends a comment. The steps run in
// sequence and are not atomic: a failing comment leaves the status change in
// place. A status change publishes ticket_status_changed after both steps.
func (s *SupportTicketService) Update(ctx context.Context, id string, req dto.UpdateTicketRequest) (*dto.SupportTicketDTO, error) {
	user, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	comment := strings.TrimSpace(req.Comment)
	if req.Status == "" && comment == "" {
		return nil, apperrors.NewValidationError("status or comment is required", nil)
	}

	var change *manager.StatusChange
	var ticket *domain.SupportTicket
	if req.Status != "" {
		change, err = s.tickets.ChangeStatus(ctx, id, req.Status, user)
		if err != nil {
			return nil, err
		}
		ticket = change.Ticket
	} else {
		ticket, err = s.tickets.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if ticket.OwnerID != user.ID && !user.UserType.IsStaff() {
			return nil, apperrors.NewForbidden("only the ticket owner or support staff may comment")
		}
	}

	if comment != "" {
		if _, err := s.comments.Create(ctx, ticket.ID, user.ID, comment, user.IdentityUserID); err != nil {
			return nil, err
		}
	}

	if change != nil {
		s.publish(ctx, events.New(events.EventTicketStatusChanged, ticket.ID, user.IdentityUserID, events.TicketStatusChangedPayload{
			OwnerID:   ticket.OwnerID,
			OldStatus: change.OldStatus,
			NewStatus: change.NewStatus,
			Reopened:  change.Reopened,
			Comment:   comment,
		}))
	}
	out := toSupportTicketDTO(ticket)
	return &out, nil
}

// Assign hands a ticket to an agent or technician.
func (s *SupportTicketService) Assign(ctx context.Context, id string, req dto.AssignTicketRequest) (*dto.SupportTicketDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.Assign(ctx, id, req.AssigneeID, principalID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.New(events.EventTicketAssigned, ticket.ID, principalID, events.TicketAssignedPayload{
		AssigneeID: req.AssigneeID,
	}))
	out := toSupportTicketDTO(ticket)
	return &out, nil
}

// Delete soft-deletes a ticket.
func (s *SupportTicketService) Delete(ctx context.Context, id string) error {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return err
	}
	return s.tickets.Delete(ctx, id, principalID)
}

func (s *SupportTicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}

// ensureCanView lets owners, staff and administrators read a ticket.
func ensureCanView(user *domain.AppUser, ticket *domain.SupportTicket) error {
	if ticket.OwnerID == user.ID || user.UserType != domain.UserTypeCustomer {
		return nil
	}
	return apperrors.NewForbidden("ticket belongs to another user")
}
