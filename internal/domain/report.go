package domain

import "time"

// TemplateType describes the output format of a report template.
type TemplateType string

const (
	TemplateTypeHTML TemplateType = "HTML"
	TemplateTypeText TemplateType = "TEXT"
)

// ReportType classifies what a report is about.
type ReportType string

const (
	ReportTypeTicketSummary  ReportType = "TICKET_SUMMARY"
	ReportTypeTicketActivity ReportType = "TICKET_ACTIVITY"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	return t == ReportTypeTicketSummary || t == ReportTypeTicketActivity
}

// ReportTemplate points a report type at a template registered with the engine.
type ReportTemplate struct {
	ID           string
	Name         string
	TemplateKey  string
	TemplateType TemplateType
	ReportType   ReportType
	Subject      string
	AuditInfo
}

// Report is generated content. Append-only.
type Report struct {
	ID               string
	ReportTemplateID string
	TicketID         string
	ReportType       ReportType
	Subject          string
	Content          string
	GeneratedAt      time.Time
	StartDate        *time.Time
	EndDate          *time.Time
	AuditInfo
}
