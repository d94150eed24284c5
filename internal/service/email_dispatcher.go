package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/mail"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/observability"
	"github.com/helpline-io/support-portal/internal/templating"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// TemplateRenderer renders a named template with a model.
type TemplateRenderer interface {
	Render(key string, model any) (string, error)
}

// EmailRequest describes one email to render and send.
type EmailRequest struct {
	RecipientUserID string
	Address         string
	EmailType       domain.EmailType
	Model           templating.EmailModel
}

// EmailDispatcher renders, sends and records emails. A failed send is recorded
// and returned as data; a failed render is returned as DownstreamFailure.
type EmailDispatcher struct {
	renderer  TemplateRenderer
	sender    mail.Sender
	emails    *manager.EmailManager
	metrics   *observability.Metrics
	logger    *zap.Logger
	portalURL string
}

// NewEmailDispatcher builds the dispatcher. metrics and logger may be nil.
func NewEmailDispatcher(renderer TemplateRenderer, sender mail.Sender, emails *manager.EmailManager, metrics *observability.Metrics, logger *zap.Logger, portalURL string) *EmailDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EmailDispatcher{
		renderer:  renderer,
		sender:    sender,
		emails:    emails,
		metrics:   metrics,
		logger:    logger,
		portalURL: strings.TrimRight(portalURL, "/"),
	}
}

// Dispatch renders the subject and body templates of req.EmailType, sends the
// result and records the attempt as an Email.
func (d *EmailDispatcher) Dispatch(ctx context.Context, req EmailRequest, actingUserID string) (*domain.Email, error) {
	if !req.EmailType.Valid() {
		return nil, apperrors.NewValidationError("unknown email type", map[string]any{"email_type": req.EmailType})
	}
	if err := validate.Var(req.Address, "required,email"); err != nil {
		return nil, apperrors.NewValidationError("invalid email address", map[string]any{"address": req.Address})
	}
	model := req.Model
	model.Address = req.Address
	if model.PortalURL == "" {
		model.PortalURL = d.portalURL
	}
	if model.RecipientName == "" {
		model.RecipientName = req.Address
	}

	subject, err := d.renderer.Render(templating.EmailSubjectKey(string(req.EmailType)), model)
	if err != nil {
		return nil, apperrors.NewDownstreamFailure("template engine", err)
	}
	body, err := d.renderer.Render(templating.EmailBodyKey(string(req.EmailType)), model)
	if err != nil {
		return nil, apperrors.NewDownstreamFailure("template engine", err)
	}

	input := manager.RecordEmailInput{
		RecipientUserID: req.RecipientUserID,
		Address:         req.Address,
		EmailType:       req.EmailType,
		TemplateID:      "emails/" + string(req.EmailType),
		Subject:         subject,
		Body:            body,
		IsSuccess:       true,
	}
	if err := d.sender.Send(ctx, req.Address, subject, body); err != nil {
		input.IsSuccess = false
		input.ErrorMessage = err.Error()
		d.logger.Warn("email send failed",
			zap.String("email_type", string(req.EmailType)),
			zap.String("to", req.Address),
			zap.Error(err))
	} else {
		d.logger.Info("email sent",
			zap.String("email_type", string(req.EmailType)),
			zap.String("to", req.Address))
	}
	d.metrics.RecordEmail(string(req.EmailType), input.IsSuccess)

	return d.emails.Record(ctx, input, actingUserID)
}
