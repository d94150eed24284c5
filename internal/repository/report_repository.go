package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// ReportRepository persists report templates and generated reports.
type ReportRepository interface {
	InsertTemplate(ctx context.Context, tmpl *domain.ReportTemplate) error
	GetTemplate(ctx context.Context, id string) (*domain.ReportTemplate, error)
	FindTemplateByReportType(ctx context.Context, reportType domain.ReportType) (*domain.ReportTemplate, error)
	ListTemplates(ctx context.Context, page PageRequest) (Page[domain.ReportTemplate], error)
	InsertReport(ctx context.Context, report *domain.Report) error
	GetReport(ctx context.Context, id string) (*domain.Report, error)
	ListReportsByTicket(ctx context.Context, ticketID string, page PageRequest) (Page[domain.Report], error)
}

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository builds repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

const reportTemplateColumns = `id, name, template_key, template_type, report_type, subject, ` + auditColumns

const reportColumns = `id, report_template_id, ticket_id, report_type, subject, content, generated_at, start_date, end_date, ` + auditColumns

func (r *reportRepository) InsertTemplate(ctx context.Context, tmpl *domain.ReportTemplate) error {
	query := `INSERT INTO report_templates (` + reportTemplateColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)`
	args := append([]any{
		tmpl.ID,
		tmpl.Name,
		tmpl.TemplateKey,
		tmpl.TemplateType,
		tmpl.ReportType,
		tmpl.Subject,
	}, auditArgs(tmpl.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *reportRepository) GetTemplate(ctx context.Context, id string) (*domain.ReportTemplate, error) {
	query := `SELECT ` + reportTemplateColumns + ` FROM report_templates WHERE id=$1 AND is_deleted = FALSE`
	return scanReportTemplate(r.pool.QueryRow(ctx, query, id))
}

// FindTemplateByReportType returns the newest live template for reportType.
func (r *reportRepository) FindTemplateByReportType(ctx context.Context, reportType domain.ReportType) (*domain.ReportTemplate, error) {
	query := `SELECT ` + reportTemplateColumns + ` FROM report_templates
        WHERE report_type=$1 AND is_deleted = FALSE ORDER BY created_at DESC LIMIT 1`
	return scanReportTemplate(r.pool.QueryRow(ctx, query, reportType))
}

func (r *reportRepository) ListTemplates(ctx context.Context, page PageRequest) (Page[domain.ReportTemplate], error) {
	w := newWhere()
	total, err := countRows(ctx, r.pool, "report_templates", w)
	if err != nil {
		return Page[domain.ReportTemplate]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+reportTemplateColumns+` FROM report_templates`+w.sql()+pageSQL("created_at DESC, id", page), w.args...)
	if err != nil {
		return Page[domain.ReportTemplate]{}, err
	}
	defer rows.Close()

	items := []domain.ReportTemplate{}
	for rows.Next() {
		tmpl, err := scanReportTemplate(rows)
		if err != nil {
			return Page[domain.ReportTemplate]{}, err
		}
		items = append(items, *tmpl)
	}
	return Page[domain.ReportTemplate]{Items: items, Total: total}, rows.Err()
}

func (r *reportRepository) InsertReport(ctx context.Context, report *domain.Report) error {
	query := `INSERT INTO reports (` + reportColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`
	args := append([]any{
		report.ID,
		report.ReportTemplateID,
		report.TicketID,
		report.ReportType,
		report.Subject,
		report.Content,
		report.GeneratedAt,
		report.StartDate,
		report.EndDate,
	}, auditArgs(report.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *reportRepository) GetReport(ctx context.Context, id string) (*domain.Report, error) {
	query := `SELECT ` + reportColumns + ` FROM reports WHERE id=$1 AND is_deleted = FALSE`
	return scanReport(r.pool.QueryRow(ctx, query, id))
}

func (r *reportRepository) ListReportsByTicket(ctx context.Context, ticketID string, page PageRequest) (Page[domain.Report], error) {
	w := newWhere().add("ticket_id = ?", ticketID)
	total, err := countRows(ctx, r.pool, "reports", w)
	if err != nil {
		return Page[domain.Report]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+reportColumns+` FROM reports`+w.sql()+pageSQL("created_at DESC, id", page), w.args...)
	if err != nil {
		return Page[domain.Report]{}, err
	}
	defer rows.Close()

	items := []domain.Report{}
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return Page[domain.Report]{}, err
		}
		items = append(items, *report)
	}
	return Page[domain.Report]{Items: items, Total: total}, rows.Err()
}

func scanReportTemplate(row pgx.Row) (*domain.ReportTemplate, error) {
	var tmpl domain.ReportTemplate
	dest := append([]any{
		&tmpl.ID,
		&tmpl.Name,
		&tmpl.TemplateKey,
		&tmpl.TemplateType,
		&tmpl.ReportType,
		&tmpl.Subject,
	}, auditDest(&tmpl.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func scanReport(row pgx.Row) (*domain.Report, error) {
	var report domain.Report
	dest := append([]any{
		&report.ID,
		&report.ReportTemplateID,
		&report.TicketID,
		&report.ReportType,
		&report.Subject,
		&report.Content,
		&report.GeneratedAt,
		&report.StartDate,
		&report.EndDate,
	}, auditDest(&report.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &report, nil
}
