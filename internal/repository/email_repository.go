package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// EmailFilter narrows the email audit log.
type EmailFilter struct {
	RecipientUserID *string
	EmailType       *domain.EmailType
	IsSuccess       *bool
	SentFrom        *time.Time
	SentTo          *time.Time
}

// EmailRepository stores send attempts. The log is append-only.
type EmailRepository interface {
	Insert(ctx context.Context, email *domain.Email) error
	GetByID(ctx context.Context, id string) (*domain.Email, error)
	Query(ctx context.Context, filter EmailFilter, page PageRequest) (Page[domain.Email], error)
}

type emailRepository struct {
	pool *pgxpool.Pool
}

// NewEmailRepository builds repository.
func NewEmailRepository(pool *pgxpool.Pool) EmailRepository {
	return &emailRepository{pool: pool}
}

const emailColumns = `id, recipient_user_id, address, email_type, template_id, subject, body, sent_at, is_success, error_message, ` + auditColumns

func (r *emailRepository) Insert(ctx context.Context, email *domain.Email) error {
	query := `INSERT INTO emails (` + emailColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`
	args := append([]any{
		email.ID,
		email.RecipientUserID,
		email.Address,
		email.EmailType,
		email.TemplateID,
		email.Subject,
		email.Body,
		email.SentAt,
		email.IsSuccess,
		email.ErrorMessage,
	}, auditArgs(email.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *emailRepository) GetByID(ctx context.Context, id string) (*domain.Email, error) {
	query := `SELECT ` + emailColumns + ` FROM emails WHERE id=$1 AND is_deleted = FALSE`
	return scanEmail(r.pool.QueryRow(ctx, query, id))
}

func (r *emailRepository) Query(ctx context.Context, filter EmailFilter, page PageRequest) (Page[domain.Email], error) {
	w := newWhere()
	if filter.RecipientUserID != nil {
		w.add("recipient_user_id = ?", *filter.RecipientUserID)
	}
	if filter.EmailType != nil {
		w.add("email_type = ?", *filter.EmailType)
	}
	if filter.IsSuccess != nil {
		w.add("is_success = ?", *filter.IsSuccess)
	}
	if filter.SentFrom != nil {
		w.add("sent_at >= ?", *filter.SentFrom)
	}
	if filter.SentTo != nil {
		w.add("sent_at <= ?", *filter.SentTo)
	}

	total, err := countRows(ctx, r.pool, "emails", w)
	if err != nil {
		return Page[domain.Email]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+emailColumns+` FROM emails`+w.sql()+pageSQL("created_at DESC, id", page), w.args...)
	if err != nil {
		return Page[domain.Email]{}, err
	}
	defer rows.Close()

	items := []domain.Email{}
	for rows.Next() {
		email, err := scanEmail(rows)
		if err != nil {
			return Page[domain.Email]{}, err
		}
		items = append(items, *email)
	}
	return Page[domain.Email]{Items: items, Total: total}, rows.Err()
}

func scanEmail(row pgx.Row) (*domain.Email, error) {
	var email domain.Email
	dest := append([]any{
		&email.ID,
		&email.RecipientUserID,
		&email.Address,
		&email.EmailType,
		&email.TemplateID,
		&email.Subject,
		&email.Body,
		&email.SentAt,
		&email.IsSuccess,
		&email.ErrorMessage,
	}, auditDest(&email.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &email, nil
}
