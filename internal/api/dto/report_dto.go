package dto

import (
	"time"

	"github.com/helpline-io/support-portal/internal/domain"
)

// GenerateReportRequest payload.
type GenerateReportRequest struct {
	ReportType domain.ReportType `json:"report_type"`
	TicketID   string            `json:"ticket_id"`
	StartDate  *time.Time        `json:"start_date"`
	EndDate    *time.Time        `json:"end_date"`
}

// ReportDTO response, with the template name for display.
type ReportDTO struct {
	ID                 string            `json:"id"`
	ReportTemplateID   string            `json:"report_template_id"`
	ReportTemplateName string            `json:"report_template_name"`
	TicketID           string            `json:"ticket_id"`
	ReportType         domain.ReportType `json:"report_type"`
	Subject            string            `json:"subject"`
	Content            string            `json:"content"`
	GeneratedAt        time.Time         `json:"generated_at"`
	StartDate          *time.Time        `json:"start_date,omitempty"`
	EndDate            *time.Time        `json:"end_date,omitempty"`
}

// ReportTemplateDTO response.
type ReportTemplateDTO struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	TemplateKey  string              `json:"template_key"`
	TemplateType domain.TemplateType `json:"template_type"`
	ReportType   domain.ReportType   `json:"report_type"`
	Subject      string              `json:"subject"`
	CreatedAt    time.Time           `json:"created_at"`
}

// CreateReportTemplateRequest payload.
type CreateReportTemplateRequest struct {
	Name         string              `json:"name"`
	TemplateKey  string              `json:"template_key"`
	TemplateType domain.TemplateType `json:"template_type"`
	ReportType   domain.ReportType   `json:"report_type"`
	Subject      string              `json:"subject"`
}
