package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/service"
)

// EmailsHandler serves /api/emails.
type EmailsHandler struct {
	emails *service.EmailService
}

// NewEmailsHandler constructs handler.
func NewEmailsHandler(emails *service.EmailService) *EmailsHandler {
	return &EmailsHandler{emails: emails}
}

// SendTest POST /api/emails/test. A failed send still answers 200 with
// is_success=false.
func (h *EmailsHandler) SendTest(c *fiber.Ctx) error {
	var req dto.SendTestEmailRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	email, err := h.emails.SendEmailTest(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, email)
}

// Get GET /api/emails/:id.
func (h *EmailsHandler) Get(c *fiber.Ctx) error {
	email, err := h.emails.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, email)
}

// List GET /api/emails?recipient_user_id=&email_type=&is_success=&sent_from=&sent_to=.
func (h *EmailsHandler) List(c *fiber.Ctx) error {
	isSuccess, err := parseBool(c.Query("is_success"))
	if err != nil {
		return err
	}
	from, err := parseTime(c.Query("sent_from"))
	if err != nil {
		return err
	}
	to, err := parseTime(c.Query("sent_to"))
	if err != nil {
		return err
	}
	q := dto.EmailListQuery{
		RecipientUserID: optionalString(c.Query("recipient_user_id")),
		IsSuccess:       isSuccess,
		SentFrom:        from,
		SentTo:          to,
		PageQuery:       parsePage(c),
	}
	if emailType := c.Query("email_type"); emailType != "" {
		t := domain.EmailType(emailType)
		q.EmailType = &t
	}
	page, err := h.emails.List(c.UserContext(), q)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}
