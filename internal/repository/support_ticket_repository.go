package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// SupportTicketFilter captures ticket search parameters.
type SupportTicketFilter struct {
	OwnerID     *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	SearchTerm  string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// SupportTicketRepository encapsulates ticket persistence.
type SupportTicketRepository interface {
	Insert(ctx context.Context, ticket *domain.SupportTicket) error
	Update(ctx context.Context, ticket *domain.SupportTicket) error
	GetByID(ctx context.Context, id string) (*domain.SupportTicket, error)
	Query(ctx context.Context, filter SupportTicketFilter, page PageRequest) (Page[domain.SupportTicket], error)
	Delete(ctx context.Context, id, actorID string, at time.Time) error
}

type supportTicketRepository struct {
	pool *pgxpool.Pool
}

// NewSupportTicketRepository instantiates repository.
func NewSupportTicketRepository(pool *pgxpool.Pool) SupportTicketRepository {
	return &supportTicketRepository{pool: pool}
}

const supportTicketColumns = `id, subject, description, status, owner_id, assignee_id, closed_at, ` + auditColumns

func (r *supportTicketRepository) Insert(ctx context.Context, ticket *domain.SupportTicket) error {
	query := `INSERT INTO support_tickets (` + supportTicketColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)`
	args := append([]any{
		ticket.ID,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.OwnerID,
		ticket.AssigneeID,
		ticket.ClosedAt,
	}, auditArgs(ticket.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *supportTicketRepository) Update(ctx context.Context, ticket *domain.SupportTicket) error {
	const query = `
        UPDATE support_tickets SET subject=$1, description=$2, status=$3, assignee_id=$4, closed_at=$5,
            modified_at=$6, modified_by=$7
        WHERE id=$8 AND is_deleted = FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Subject,
		ticket.Description,
		ticket.Status,
		ticket.AssigneeID,
		ticket.ClosedAt,
		ticket.ModifiedAt,
		ticket.ModifiedBy,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *supportTicketRepository) GetByID(ctx context.Context, id string) (*domain.SupportTicket, error) {
	query := `SELECT ` + supportTicketColumns + ` FROM support_tickets WHERE id=$1 AND is_deleted = FALSE`
	return scanSupportTicket(r.pool.QueryRow(ctx, query, id))
}

func (r *supportTicketRepository) Query(ctx context.Context, filter SupportTicketFilter, page PageRequest) (Page[domain.SupportTicket], error) {
	w := newWhere()
	if filter.OwnerID != nil {
		w.add("owner_id = ?", *filter.OwnerID)
	}
	if filter.AssigneeID != nil {
		w.add("assignee_id = ?", *filter.AssigneeID)
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]any, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = s
		}
		w.in("status", statuses)
	}
	if filter.SearchTerm != "" {
		pattern := likePattern(filter.SearchTerm)
		w.add("(LOWER(subject) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.CreatedFrom != nil {
		w.add("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		w.add("created_at <= ?", *filter.CreatedTo)
	}

	total, err := countRows(ctx, r.pool, "support_tickets", w)
	if err != nil {
		return Page[domain.SupportTicket]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+supportTicketColumns+` FROM support_tickets`+w.sql()+pageSQL("created_at DESC, id", page), w.args...)
	if err != nil {
		return Page[domain.SupportTicket]{}, err
	}
	defer rows.Close()

	items := []domain.SupportTicket{}
	for rows.Next() {
		ticket, err := scanSupportTicket(rows)
		if err != nil {
			return Page[domain.SupportTicket]{}, err
		}
		items = append(items, *ticket)
	}
	return Page[domain.SupportTicket]{Items: items, Total: total}, rows.Err()
}

func (r *supportTicketRepository) Delete(ctx context.Context, id, actorID string, at time.Time) error {
	return softDelete(ctx, r.pool, "support_tickets", id, actorID, at)
}

func scanSupportTicket(row pgx.Row) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket
	dest := append([]any{
		&ticket.ID,
		&ticket.Subject,
		&ticket.Description,
		&ticket.Status,
		&ticket.OwnerID,
		&ticket.AssigneeID,
		&ticket.ClosedAt,
	}, auditDest(&ticket.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &ticket, nil
}
