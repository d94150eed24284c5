package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/service"
)

// SupportTicketsHandler serves /api/support-tickets and the comment and report
// listings nested under a ticket.
type SupportTicketsHandler struct {
	tickets  *service.SupportTicketService
	comments *service.TicketCommentService
	reports  *service.ReportService
}

// NewSupportTicketsHandler constructs handler.
func NewSupportTicketsHandler(tickets *service.SupportTicketService, comments *service.TicketCommentService, reports *service.ReportService) *SupportTicketsHandler {
	return &SupportTicketsHandler{tickets: tickets, comments: comments, reports: reports}
}

// Create POST /api/support-tickets.
func (h *SupportTicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Create(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, ticket)
}

// Get GET /api/support-tickets/:id.
func (h *SupportTicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, ticket)
}

// List GET /api/support-tickets?status=OPEN,IN_PROGRESS&owner_id=&assignee_id=&search=&created_from=&created_to=.
func (h *SupportTicketsHandler) List(c *fiber.Ctx) error {
	from, err := parseTime(c.Query("created_from"))
	if err != nil {
		return err
	}
	to, err := parseTime(c.Query("created_to"))
	if err != nil {
		return err
	}
	page, err := h.tickets.List(c.UserContext(), dto.TicketListQuery{
		Statuses:    splitCSV[domain.TicketStatus](c.Query("status")),
		OwnerID:     optionalString(c.Query("owner_id")),
		AssigneeID:  optionalString(c.Query("assignee_id")),
		Search:      c.Query("search"),
		CreatedFrom: from,
		CreatedTo:   to,
		PageQuery:   parsePage(c),
	})
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}

// Update PUT /api/support-tickets/:id.
func (h *SupportTicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Update(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, ticket)
}

// Assign POST /api/support-tickets/:id/assign.
func (h *SupportTicketsHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignTicketRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	ticket, err := h.tickets.Assign(c.UserContext(), c.Params("id"), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, ticket)
}

// Delete DELETE /api/support-tickets/:id.
func (h *SupportTicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.tickets.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Comments GET /api/support-tickets/:id/comments.
func (h *SupportTicketsHandler) Comments(c *fiber.Ctx) error {
	page, err := h.comments.ListByTicket(c.UserContext(), c.Params("id"), parsePage(c))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}

// GetComment GET /api/ticket-comments/:id.
func (h *SupportTicketsHandler) GetComment(c *fiber.Ctx) error {
	comment, err := h.comments.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, comment)
}

// Reports GET /api/support-tickets/:id/reports.
func (h *SupportTicketsHandler) Reports(c *fiber.Ctx) error {
	page, err := h.reports.ListByTicket(c.UserContext(), c.Params("id"), parsePage(c))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}
