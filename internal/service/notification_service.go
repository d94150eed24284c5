package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/events"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/templating"
)

// NotificationService turns domain events into emails.
type NotificationService struct {
	dispatcher events.Dispatcher
	emails     *EmailDispatcher
	users      *manager.AppUserManager
	tickets    *manager.SupportTicketManager
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, emails *EmailDispatcher, users *manager.AppUserManager, tickets *manager.SupportTicketManager, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		emails:     emails,
		users:      users,
		tickets:    tickets,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventUserRegistered, n.handleUserRegistered)
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleTicketStatusChanged)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
}

func (n *NotificationService) handleUserRegistered(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.UserRegisteredPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("UserRegistered", zap.String("app_user_id", payload.AppUserID))
	_, err := n.emails.Dispatch(ctx, EmailRequest{
		RecipientUserID: payload.IdentityUserID,
		Address:         payload.Email,
		EmailType:       domain.EmailTypeWelcome,
		Model:           templating.EmailModel{RecipientName: payload.DisplayName},
	}, actorOf(event))
	return err
}

func (n *NotificationService) handleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("TicketCreated", zap.String("ticket_id", event.TicketID))
	return n.notifyOwner(ctx, event, payload.OwnerID, domain.EmailTypeTicketCreated, templating.EmailModel{})
}

func (n *NotificationService) handleTicketStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return fmt.Errorf("unexpected payload %T for %s", event.Payload, event.Type)
	}
	n.logger.Info("TicketStatusChanged",
		zap.String("ticket_id", event.TicketID),
		zap.String("old_status", string(payload.OldStatus)),
		zap.String("new_status", string(payload.NewStatus)))
	return n.notifyOwner(ctx, event, payload.OwnerID, domain.EmailTypeTicketStatusChanged, templating.EmailModel{
		OldStatus: payload.OldStatus,
		NewStatus: payload.NewStatus,
		Comment:   payload.Comment,
	})
}

func (n *NotificationService) handleTicketAssigned(_ context.Context, event events.Event) error {
	n.logger.Info("TicketAssigned", zap.String("ticket_id", event.TicketID), zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) notifyOwner(ctx context.Context, event events.Event, ownerID string, emailType domain.EmailType, model templating.EmailModel) error {
	owner, err := n.users.GetByID(ctx, ownerID)
	if err != nil {
		return err
	}
	ticket, err := n.tickets.GetByID(ctx, event.TicketID)
	if err != nil {
		return err
	}
	model.RecipientName = owner.DisplayName
	model.Ticket = ticket
	_, err = n.emails.Dispatch(ctx, EmailRequest{
		RecipientUserID: owner.IdentityUserID,
		Address:         owner.Email,
		EmailType:       emailType,
		Model:           model,
	}, actorOf(event))
	return err
}

func actorOf(event events.Event) string {
	if event.ActorID == "" {
		return manager.SystemActorID
	}
	return event.ActorID
}
