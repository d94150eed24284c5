package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

const (
	defaultTake = 10
	maxTake     = 1000
)

// PageRequest windows a listing.
type PageRequest struct {
	Skip int
	Take int
}

// Normalize clamps skip and take into usable bounds.
func (p PageRequest) Normalize() PageRequest {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Take <= 0 {
		p.Take = defaultTake
	}
	if p.Take > maxTake {
		p.Take = maxTake
	}
	return p
}

// Page holds one window of results and the total count ignoring paging.
type Page[T any] struct {
	Items []T
	Total int
}

// auditColumns is the column list matching auditDest.
const auditColumns = `created_at, created_by, modified_at, modified_by, is_deleted, deleted_at, deleted_by`

func auditDest(a *domain.AuditInfo) []any {
	return []any{&a.CreatedAt, &a.CreatedBy, &a.ModifiedAt, &a.ModifiedBy, &a.IsDeleted, &a.DeletedAt, &a.DeletedBy}
}

func auditArgs(a domain.AuditInfo) []any {
	return []any{a.CreatedAt, a.CreatedBy, a.ModifiedAt, a.ModifiedBy, a.IsDeleted, a.DeletedAt, a.DeletedBy}
}

// whereBuilder accumulates positional predicates. Soft-deleted rows are
// excluded unless includeDeleted is called.
type whereBuilder struct {
	clauses        []string
	args           []any
	includeDeleted bool
}

func newWhere() *whereBuilder {
	return &whereBuilder{}
}

func (w *whereBuilder) withDeleted() *whereBuilder {
	w.includeDeleted = true
	return w
}

// add appends a clause; every "?" is replaced by the next placeholder.
func (w *whereBuilder) add(clause string, args ...any) *whereBuilder {
	for _, arg := range args {
		w.args = append(w.args, arg)
		clause = strings.Replace(clause, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.clauses = append(w.clauses, clause)
	return w
}

// in appends "column IN (...)" for a non-empty value list.
func (w *whereBuilder) in(column string, values []any) *whereBuilder {
	if len(values) == 0 {
		return w
	}
	placeholders := make([]string, len(values))
	for i, v := range values {
		w.args = append(w.args, v)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.clauses = append(w.clauses, fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")))
	return w
}

func (w *whereBuilder) sql() string {
	clauses := w.clauses
	if !w.includeDeleted {
		clauses = append([]string{"is_deleted = FALSE"}, clauses...)
	}
	if len(clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(clauses, " AND ")
}

func pageSQL(orderBy string, page PageRequest) string {
	page = page.Normalize()
	return fmt.Sprintf(" ORDER BY %s LIMIT %d OFFSET %d", orderBy, page.Take, page.Skip)
}

func likePattern(term string) string {
	return "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
}

func countRows(ctx context.Context, pool *pgxpool.Pool, table string, w *whereBuilder) (int, error) {
	var total int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+table+w.sql(), w.args...).Scan(&total)
	return total, err
}

// softDelete flags a live row as deleted; a missing or already deleted row yields pgx.ErrNoRows.
func softDelete(ctx context.Context, pool *pgxpool.Pool, table, id, actorID string, at time.Time) error {
	query := `UPDATE ` + table + ` SET is_deleted = TRUE, deleted_at = $1, deleted_by = $2, modified_at = $1, modified_by = $2
        WHERE id = $3 AND is_deleted = FALSE`
	cmd, err := pool.Exec(ctx, query, at, actorID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
