package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/service"
)

// ReportsHandler serves /api/reports and /api/report-templates.
type ReportsHandler struct {
	reports *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reports *service.ReportService) *ReportsHandler {
	return &ReportsHandler{reports: reports}
}

// Generate POST /api/reports. The stored report is read back through
// GET /api/support-tickets/:id/reports.
func (h *ReportsHandler) Generate(c *fiber.Ctx) error {
	var req dto.GenerateReportRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	if err := h.reports.GenerateReport(c.UserContext(), req); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Get GET /api/reports/:id.
func (h *ReportsHandler) Get(c *fiber.Ctx) error {
	report, err := h.reports.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, report)
}

// ListTemplates GET /api/report-templates.
func (h *ReportsHandler) ListTemplates(c *fiber.Ctx) error {
	page, err := h.reports.ListTemplates(c.UserContext(), parsePage(c))
	if err != nil {
		return err
	}
	return data(c, fiber.StatusOK, page)
}

// CreateTemplate POST /api/report-templates.
func (h *ReportsHandler) CreateTemplate(c *fiber.Ctx) error {
	var req dto.CreateReportTemplateRequest
	if err := bindBody(c, &req); err != nil {
		return err
	}
	tmpl, err := h.reports.CreateTemplate(c.UserContext(), req)
	if err != nil {
		return err
	}
	return data(c, fiber.StatusCreated, tmpl)
}
