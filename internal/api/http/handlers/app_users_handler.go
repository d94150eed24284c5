package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/service"
)

// AppUsersHandler serves /api/app-users.
type AppUsersHandler struct {
	users *service.AppUserService
}

// NewAppUsersHandler constructs handler.
func NewAppUsersHandler(users *service.AppUserService) *AppUsersHandler {
	return &AppUsersHandler{users: users}
}

// Me GET /api/app-users/me.
func (h *AppUsersHandler) Me(c *fiber.Ctx) error {
	user, err := h.users.GetMe(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, user)
}

// Get GET /api/app-users/:id.
func (h *AppUsersHandler) Get(c *fiber.Ctx) error {
	user, err := h.users.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, user)
}

// List GET /api/app-users?user_type=AGENT,TECHNICIAN&active=true&search=.
func (h *AppUsersHandler) List(c *fiber.Ctx) error {
	active, err := parseBool(c.Query("active"))
	if err != nil {
		return err
	}
	page, err := h.users.List(c.UserContext(), dto.AppUserListQuery{
		UserTypes: splitCSV[domain.UserType](c.Query("user_type")),
		Active:    active,
		Search:    c.Query("search"),
		PageQuery: parsePage(c),
	})
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}

// Update PUT /api/app-users/:id.
func (h *AppUsersHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateAppUserRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	user, err := h.users.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, user)
}

// Delete DELETE /api/app-users/:id.
func (h *AppUsersHandler) Delete(c *fiber.Ctx) error {
	if err := h.users.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
