package service

import (
	"context"
	"fmt"
	"time"

	"github.com/helpline-io/support-portal/internal/api/dto"
	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/manager"
	"github.com/helpline-io/support-portal/internal/observability"
	"github.com/helpline-io/support-portal/internal/repository"
	"github.com/helpline-io/support-portal/internal/templating"
	apperrors "github.com/helpline-io/support-portal/pkg/util/errorutil"
)

// DefaultReportTemplates are seeded at boot for report types without a template.
func DefaultReportTemplates() []manager.ReportTemplateInput {
	return []manager.ReportTemplateInput{
		{
			Name:         "Ticket summary",
			TemplateKey:  "reports/ticket_summary",
			TemplateType: domain.TemplateTypeHTML,
			ReportType:   domain.ReportTypeTicketSummary,
			Subject:      "Ticket summary",
		},
		{
			Name:         "Ticket activity",
			TemplateKey:  "reports/ticket_activity",
			TemplateType: domain.TemplateTypeHTML,
			ReportType:   domain.ReportTypeTicketActivity,
			Subject:      "Ticket activity",
		},
	}
}

// ReportService is the report generation facade.
type ReportService struct {
	reports  *manager.ReportManager
	tickets  *manager.SupportTicketManager
	comments *manager.TicketCommentManager
	users    *manager.AppUserManager
	renderer TemplateRenderer
	metrics  *observability.Metrics
	identity IdentityProvider
	now      func() time.Time
}

// ReportDependencies bundles the collaborators of the report facade.
type ReportDependencies struct {
	Reports  *manager.ReportManager
	Tickets  *manager.SupportTicketManager
	Comments *manager.TicketCommentManager
	Users    *manager.AppUserManager
	Renderer TemplateRenderer
	Metrics  *observability.Metrics
	Identity IdentityProvider
}

// NewReportService builds the facade.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:  deps.Reports,
		tickets:  deps.Tickets,
		comments: deps.Comments,
		users:    deps.Users,
		renderer: deps.Renderer,
		metrics:  deps.Metrics,
		identity: deps.Identity,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// GenerateReport renders the template registered for req.ReportType against
// the ticket and date range and stores the result. The report is read back
// through Get or ListByTicket.
func (s *ReportService) GenerateReport(ctx context.Context, req dto.GenerateReportRequest) error {
	caller, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return err
	}
	if !req.ReportType.Valid() {
		return apperrors.NewValidationError("unknown report type", map[string]any{"report_type": req.ReportType})
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return apperrors.NewValidationError("end date precedes start date", map[string]any{
			"start_date": req.StartDate,
			"end_date":   req.EndDate,
		})
	}
	ticket, err := s.tickets.GetByID(ctx, req.TicketID)
	if err != nil {
		return err
	}
	if err := ensureCanView(caller, ticket); err != nil {
		return err
	}
	tmpl, err := s.reports.FindTemplateByReportType(ctx, req.ReportType)
	if err != nil {
		return err
	}

	model, err := s.buildModel(ctx, ticket, req.StartDate, req.EndDate)
	if err != nil {
		return err
	}
	content, err := s.renderer.Render(tmpl.TemplateKey, model)
	if err != nil {
		return apperrors.NewDownstreamFailure("template engine", err)
	}

	title := tmpl.Subject
	if title == "" {
		title = tmpl.Name
	}
	if _, err := s.reports.CreateReport(ctx, manager.CreateReportInput{
		ReportTemplateID: tmpl.ID,
		TicketID:         ticket.ID,
		Subject:          fmt.Sprintf("%s: %s", title, ticket.Subject),
		Content:          content,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
	}, caller.IdentityUserID); err != nil {
		return err
	}
	s.metrics.RecordReport(string(req.ReportType))
	return nil
}

func (s *ReportService) buildModel(ctx context.Context, ticket *domain.SupportTicket, start, end *time.Time) (templating.ReportModel, error) {
	names := map[string]string{}
	nameOf := func(appUserID string) string {
		if name, ok := names[appUserID]; ok {
			return name
		}
		name := appUserID
		if user, err := s.users.GetByID(ctx, appUserID); err == nil {
			name = user.DisplayName
		}
		names[appUserID] = name
		return name
	}

	model := templating.ReportModel{
		Ticket:      ticket,
		OwnerName:   nameOf(ticket.OwnerID),
		GeneratedAt: s.now(),
		StartDate:   start,
		EndDate:     end,
	}
	if ticket.AssigneeID != nil {
		model.AssigneeName = nameOf(*ticket.AssigneeID)
	}

	page, err := s.comments.ListByTicket(ctx, ticket.ID, repository.PageRequest{Take: 1000})
	if err != nil {
		return templating.ReportModel{}, err
	}
	for _, c := range page.Items {
		if start != nil && c.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && c.CreatedAt.After(*end) {
			continue
		}
		model.Comments = append(model.Comments, templating.ActivityEntry{
			CreatedAt:  c.CreatedAt,
			AuthorName: nameOf(c.AuthorID),
			Body:       c.Body,
		})
	}
	return model, nil
}

// Get returns one generated report. Callers must be able to view its ticket.
func (s *ReportService) Get(ctx context.Context, id string) (*dto.ReportDTO, error) {
	caller, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return nil, err
	}
	report, err := s.reports.GetReport(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket, err := s.tickets.GetByID(ctx, report.TicketID)
	if err != nil {
		return nil, err
	}
	if err := ensureCanView(caller, ticket); err != nil {
		return nil, err
	}
	out := toReportDTO(report, s.templateName(ctx, report.ReportTemplateID))
	return &out, nil
}

// ListByTicket pages the reports of a ticket, newest first.
func (s *ReportService) ListByTicket(ctx context.Context, ticketID string, q dto.PageQuery) (dto.PagedResult[dto.ReportDTO], error) {
	caller, err := currentAppUser(ctx, s.identity, s.users)
	if err != nil {
		return dto.PagedResult[dto.ReportDTO]{}, err
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return dto.PagedResult[dto.ReportDTO]{}, err
	}
	if err := ensureCanView(caller, ticket); err != nil {
		return dto.PagedResult[dto.ReportDTO]{}, err
	}
	page, err := s.reports.ListReportsByTicket(ctx, ticketID, pageRequest(q))
	if err != nil {
		return dto.PagedResult[dto.ReportDTO]{}, err
	}
	return mapPage(page, func(r *domain.Report) dto.ReportDTO {
		return toReportDTO(r, s.templateName(ctx, r.ReportTemplateID))
	}), nil
}

// ListTemplates pages the registered report templates.
func (s *ReportService) ListTemplates(ctx context.Context, q dto.PageQuery) (dto.PagedResult[dto.ReportTemplateDTO], error) {
	if _, err := currentPrincipal(ctx, s.identity); err != nil {
		return dto.PagedResult[dto.ReportTemplateDTO]{}, err
	}
	page, err := s.reports.ListTemplates(ctx, pageRequest(q))
	if err != nil {
		return dto.PagedResult[dto.ReportTemplateDTO]{}, err
	}
	return mapPage(page, toReportTemplateDTO), nil
}

// CreateTemplate registers a report template. The key must name a template the engine knows.
func (s *ReportService) CreateTemplate(ctx context.Context, req dto.CreateReportTemplateRequest) (*dto.ReportTemplateDTO, error) {
	principalID, err := currentPrincipal(ctx, s.identity)
	if err != nil {
		return nil, err
	}
	if checker, ok := s.renderer.(interface{ Has(string) bool }); ok && req.TemplateKey != "" && !checker.Has(req.TemplateKey) {
		return nil, apperrors.NewValidationError("unknown template key", map[string]any{"template_key": req.TemplateKey})
	}
	tmpl, err := s.reports.CreateTemplate(ctx, toReportTemplateInput(req), principalID)
	if err != nil {
		return nil, err
	}
	out := toReportTemplateDTO(tmpl)
	return &out, nil
}

func (s *ReportService) templateName(ctx context.Context, id string) string {
	tmpl, err := s.reports.GetTemplate(ctx, id)
	if err != nil {
		return ""
	}
	return tmpl.Name
}
