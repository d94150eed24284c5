package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/service"
)

// AccountHandler exposes registration, the token endpoint and password changes.
type AccountHandler struct {
	accounts *service.AccountService
}

// NewAccountHandler constructs handler.
func NewAccountHandler(accounts *service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// Register handles POST /account/register.
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	resp, err := h.accounts.Register(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, resp)
}

// Token handles POST /connect/token. The response is the bare OAuth2 shape.
func (h *AccountHandler) Token(c *fiber.Ctx) error {
	var req dto.TokenRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	resp, err := h.accounts.Token(c.UserContext(), req)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.JSON(resp)
}

// ChangePassword handles POST /account/password/change.
func (h *AccountHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.PasswordChangeRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.accounts.ChangePassword(c.UserContext(), req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
