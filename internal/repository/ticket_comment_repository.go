package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// TicketCommentRepository manages ticket thread comments. Rows are never updated.
type TicketCommentRepository interface {
	Insert(ctx context.Context, comment *domain.TicketComment) error
	GetByID(ctx context.Context, id string) (*domain.TicketComment, error)
	ListByTicket(ctx context.Context, ticketID string, page PageRequest) (Page[domain.TicketComment], error)
}

type ticketCommentRepository struct {
	pool *pgxpool.Pool
}

// NewTicketCommentRepository builds repository.
func NewTicketCommentRepository(pool *pgxpool.Pool) TicketCommentRepository {
	return &ticketCommentRepository{pool: pool}
}

const ticketCommentColumns = `id, ticket_id, author_id, body, ` + auditColumns

func (r *ticketCommentRepository) Insert(ctx context.Context, comment *domain.TicketComment) error {
	query := `INSERT INTO ticket_comments (` + ticketCommentColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	args := append([]any{comment.ID, comment.TicketID, comment.AuthorID, comment.Body}, auditArgs(comment.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *ticketCommentRepository) GetByID(ctx context.Context, id string) (*domain.TicketComment, error) {
	query := `SELECT ` + ticketCommentColumns + ` FROM ticket_comments WHERE id=$1 AND is_deleted = FALSE`
	return scanTicketComment(r.pool.QueryRow(ctx, query, id))
}

func (r *ticketCommentRepository) ListByTicket(ctx context.Context, ticketID string, page PageRequest) (Page[domain.TicketComment], error) {
	w := newWhere().add("ticket_id = ?", ticketID)
	total, err := countRows(ctx, r.pool, "ticket_comments", w)
	if err != nil {
		return Page[domain.TicketComment]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+ticketCommentColumns+` FROM ticket_comments`+w.sql()+pageSQL("created_at ASC, id", page), w.args...)
	if err != nil {
		return Page[domain.TicketComment]{}, err
	}
	defer rows.Close()

	items := []domain.TicketComment{}
	for rows.Next() {
		comment, err := scanTicketComment(rows)
		if err != nil {
			return Page[domain.TicketComment]{}, err
		}
		items = append(items, *comment)
	}
	return Page[domain.TicketComment]{Items: items, Total: total}, rows.Err()
}

func scanTicketComment(row pgx.Row) (*domain.TicketComment, error) {
	var comment domain.TicketComment
	dest := append([]any{&comment.ID, &comment.TicketID, &comment.AuthorID, &comment.Body}, auditDest(&comment.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &comment, nil
}
