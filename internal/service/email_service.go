package service

import (
	"context"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/repository"
	"github.com/helpline-io/support-portal/internal/templating"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// EmailService is the Email facade.
type EmailService struct {
	dispatcher *EmailDispatcher
	emails     *manager.EmailManager
	users      *manager.AppUserManager
	identity   IdentityProvider
}

// NewEmailService builds the facade.
func NewEmailService(dispatcher *EmailDispatcher, emails *manager.EmailManager, users *manager.AppUserManager, identity IdentityProvider) *EmailService {
	return &EmailService{dispatcher: dispatcher, emails: emails, users: users, identity: identity}
}

// SendEmailTest renders and sends an email of the given type to address on
// behalf of the caller. A transport failure comes back as a recorded Email with
// IsSuccess false, not as an error.
func (s *EmailService) SendEmailTest(ctx context.Context, req dto.SendTestEmailRequest) (*dto.EmailDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	model := templating.EmailModel{
		ActionURL: s.dispatcher.portalURL + "/account/reset-password",
		Ticket:    &domain.SupportTicket{ID: "sample", Subject: "Sample ticket", Status: domain.TicketStatusOpen},
		OldStatus: domain.TicketStatusOpen,
		NewStatus: domain.TicketStatusInProgress,
	}
	if user, err := s.users.GetByIdentityUserID(ctx, principalID); err == nil {
		model.RecipientName = user.DisplayName
	}

	email, err := s.dispatcher.Dispatch(ctx, EmailRequest{
		RecipientUserID: principalID,
		Address:         req.Address,
		EmailType:       req.EmailType,
		Model:           model,
	}, principalID)
	if err != nil {
		return nil, err
	}
	out := toEmailDTO(email)
	return &out, nil
}

// Get returns one recorded email to its recipient or an administrator.
func (s *EmailService) Get(ctx context.Context, id string) (*dto.EmailDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	email, err := s.emails.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email.RecipientUserID != principalID && !s.isAdmin(ctx, principalID) {
		return nil, apperrors.NewForbidden("email belongs to another user")
	}
	out := toEmailDTO(email)
	return &out, nil
}

// List pages the email log, newest first. Non-administrators only see their own mail.
func (s *EmailService) List(ctx context.Context, q dto.EmailListQuery) (dto.PagedResult[dto.EmailDTO], error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return dto.PagedResult[dto.EmailDTO]{}, err
	}
	if !s.isAdmin(ctx, principalID) {
		q.RecipientUserID = &principalID
	}
	page, err := s.emails.ListPaged(ctx, repository.EmailFilter{
		RecipientUserID: q.RecipientUserID,
		EmailType:       q.EmailType,
		IsSuccess:       q.IsSuccess,
		SentFrom:        q.SentFrom,
		SentTo:          q.SentTo,
	}, pageRequest(q.PageQuery))
	if err != nil {
		return dto.PagedResult[dto.EmailDTO]{}, err
	}
	return mapPage(page, toEmailDTO), nil
}

func (s *EmailService) isAdmin(ctx context.Context, principalID string) bool {
	user, err := s.users.GetByIdentityUserID(ctx, principalID)
	return err == nil && user.UserType == domain.UserTypeAdmin
}
