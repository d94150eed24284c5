package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/service"
)

// ServicePlansHandler serves /api/service-plans.
type ServicePlansHandler struct {
	plans *service.ServicePlanService
}

// NewServicePlansHandler constructs handler.
func NewServicePlansHandler(plans *service.ServicePlanService) *ServicePlansHandler {
	return &ServicePlansHandler{plans: plans}
}

// Create POST /api/service-plans.
func (h *ServicePlansHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateUpdateServicePlanRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	plan, err := h.plans.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, plan)
}

// Get GET /api/service-plans/:id.
func (h *ServicePlansHandler) Get(c *fiber.Ctx) error {
	plan, err := h.plans.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, plan)
}

// List GET /api/service-plans?search=&min_price=&max_price=.
func (h *ServicePlansHandler) List(c *fiber.Ctx) error {
	minPrice, err := parseFloat(c.Query("min_price"))
	if err != nil {
		return err
	}
	maxPrice, err := parseFloat(c.Query("max_price"))
	if err != nil {
		return err
	}
	page, err := h.plans.List(c.UserContext(), dto.ServicePlanListQuery{
		Search:    c.Query("search"),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		PageQuery: parsePage(c),
	})
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}

// Update PUT /api/service-plans/:id.
func (h *ServicePlansHandler) Update(c *fiber.Ctx) error {
	var req dto.CreateUpdateServicePlanRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	plan, err := h.plans.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, plan)
}

// Delete DELETE /api/service-plans/:id.
func (h *ServicePlansHandler) Delete(c *fiber.Ctx) error {
	if err := h.plans.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Subscribe POST /api/service-plans/:id/subscribe.
func (h *ServicePlansHandler) Subscribe(c *fiber.Ctx) error {
	sub, err := h.plans.Subscribe(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, sub)
}

// MySubscriptions GET /api/service-plans/subscriptions/me.
func (h *ServicePlansHandler) MySubscriptions(c *fiber.Ctx) error {
	subs, err := h.plans.MySubscriptions(c.UserContext())
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, subs)
}
