package manager

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// ReportTemplateInput registers a template with a report type.
type ReportTemplateInput struct {
	Name         string              `validate:"required,max=128"`
	TemplateKey  string              `validate:"required,max=128"`
	TemplateType domain.TemplateType `validate:"required,oneof=HTML TEXT"`
	ReportType   domain.ReportType   `validate:"required,oneof=TICKET_SUMMARY TICKET_ACTIVITY"`
	Subject      string              `validate:"max=256"`
}

// CreateReportInput stores rendered report content.
type CreateReportInput struct {
	ReportTemplateID string `validate:"required"`
	TicketID         string `validate:"required"`
	Subject          string
	Content          string
	StartDate        *time.Time
	EndDate          *time.Time
}

// ReportManager owns report templates and generated reports. Reports are append-only.
type ReportManager struct {
	core
	reports repository.ReportRepository
	tickets repository.SupportTicketRepository
}

// NewReportManager constructs the manager.
func NewReportManager(reports repository.ReportRepository, tickets repository.SupportTicketRepository, opts ...Option) *ReportManager {
	return &ReportManager{core: newCore(opts), reports: reports, tickets: tickets}
}

// CreateTemplate registers a report template.
func (m *ReportManager) CreateTemplate(ctx context.Context, input ReportTemplateInput, actingUserID string) (*domain.ReportTemplate, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	tmpl := &domain.ReportTemplate{
		ID:           m.newID(),
		Name:         input.Name,
		TemplateKey:  input.TemplateKey,
		TemplateType: input.TemplateType,
		ReportType:   input.ReportType,
		Subject:      input.Subject,
		AuditInfo:    domain.NewAuditInfo(actingUserID, m.now()),
	}
	if err := m.reports.InsertTemplate(ctx, tmpl); err != nil {
		return nil, apperrors.FromStore("report template", tmpl.ID, err)
	}
	return tmpl, nil
}

// GetTemplate fetches a template.
func (m *ReportManager) GetTemplate(ctx context.Context, id string) (*domain.ReportTemplate, error) {
	tmpl, err := m.reports.GetTemplate(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("report template", id, err)
	}
	return tmpl, nil
}

// ListTemplates returns newest templates first.
func (m *ReportManager) ListTemplates(ctx context.Context, page repository.PageRequest) (repository.Page[domain.ReportTemplate], error) {
	result, err := m.reports.ListTemplates(ctx, page.Normalize())
	if err != nil {
		return repository.Page[domain.ReportTemplate]{}, apperrors.FromStore("report templates", "", err)
	}
	return result, nil
}

// FindTemplateByReportType selects the template registered for reportType.
func (m *ReportManager) FindTemplateByReportType(ctx context.Context, reportType domain.ReportType) (*domain.ReportTemplate, error) {
	tmpl, err := m.reports.FindTemplateByReportType(ctx, reportType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("report template", map[string]any{"report_type": reportType})
		}
		return nil, apperrors.FromStore("report template", string(reportType), err)
	}
	return tmpl, nil
}

// EnsureTemplates registers each default whose report type has no template yet.
func (m *ReportManager) EnsureTemplates(ctx context.Context, defaults []ReportTemplateInput) error {
	for _, input := range defaults {
		_, err := m.FindTemplateByReportType(ctx, input.ReportType)
		if err == nil {
			continue
		}
		if !apperrors.Is(err, apperrors.CodeNotFound) {
			return err
		}
		if _, err := m.CreateTemplate(ctx, input, SystemActorID); err != nil {
			return err
		}
	}
	return nil
}

// CreateReport stores a generated report.
func (m *ReportManager) CreateReport(ctx context.Context, input CreateReportInput, actingUserID string) (*domain.Report, error) {
	if err := requireActor(actingUserID); err != nil {
		return nil, err
	}
	if err := validateInput(input); err != nil {
		return nil, err
	}
	tmpl, err := m.GetTemplate(ctx, input.ReportTemplateID)
	if err != nil {
		return nil, err
	}
	if _, err := m.tickets.GetByID(ctx, input.TicketID); err != nil {
		return nil, apperrors.FromStore("support ticket", input.TicketID, err)
	}
	now := m.now()
	report := &domain.Report{
		ID:               m.newID(),
		ReportTemplateID: tmpl.ID,
		TicketID:         input.TicketID,
		ReportType:       tmpl.ReportType,
		Subject:          input.Subject,
		Content:          input.Content,
		GeneratedAt:      now,
		StartDate:        input.StartDate,
		EndDate:          input.EndDate,
		AuditInfo:        domain.NewAuditInfo(actingUserID, now),
	}
	if err := m.reports.InsertReport(ctx, report); err != nil {
		return nil, apperrors.FromStore("report", report.ID, err)
	}
	return report, nil
}

// GetReport fetches a generated report.
func (m *ReportManager) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	report, err := m.reports.GetReport(ctx, id)
	if err != nil {
		return nil, apperrors.FromStore("report", id, err)
	}
	return report, nil
}

// ListReportsByTicket returns a ticket's reports, newest first.
func (m *ReportManager) ListReportsByTicket(ctx context.Context, ticketID string, page repository.PageRequest) (repository.Page[domain.Report], error) {
	result, err := m.reports.ListReportsByTicket(ctx, ticketID, page.Normalize())
	if err != nil {
		return repository.Page[domain.Report]{}, apperrors.FromStore("reports", ticketID, err)
	}
	return result, nil
}
