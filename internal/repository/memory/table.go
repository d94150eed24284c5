// Package memory is an in-process Entity Store used when no database is
// configured and by tests. It honours the same soft-delete and paging rules
// as the Postgres repositories.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpline-io/support-portal/internal/domain"
	"github.com/helpline-io/support-portal/internal/repository"
)

type table[T any] struct {
	mu    sync.RWMutex
	rows  map[string]T
	audit func(*T) *domain.AuditInfo
}

func newTable[T any](audit func(*T) *domain.AuditInfo) *table[T] {
	return &table[T]{rows: make(map[string]T), audit: audit}
}

func (t *table[T]) insert(id string, row T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.rows[id] = row
}

// get returns a live row or pgx.ErrNoRows.
func (t *table[T]) get(id string) (T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	row, ok := t.rows[id]
	if !ok || t.audit(&row).IsDeleted {
		var zero T
		return zero, pgx.ErrNoRows
	}
	return row, nil
}

// update replaces a live row; the mutate callback copies mutable fields.
func (t *table[T]) update(id string, mutate func(stored *T)) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.rows[id]
	if !ok || t.audit(&row).IsDeleted {
		return pgx.ErrNoRows
	}
	mutate(&row)
	t.rows[id] = row
	return nil
}

func (t *table[T]) softDelete(id, actorID string, at time.Time) error {
	return t.update(id, func(stored *T) {
		t.audit(stored).MarkDeleted(actorID, at)
	})
}

func (t *table[T]) find(match func(*T) bool) (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, row := range t.rows {
		if t.audit(&row).IsDeleted {
			continue
		}
		if match(&row) {
			return row, true
		}
	}
	var zero T
	return zero, false
}

// query filters live rows, orders them by creation time (then id) and pages them.
func (t *table[T]) query(match func(*T) bool, id func(*T) string, ascending bool, page repository.PageRequest) repository.Page[T] {
	t.mu.RLock()
	matched := make([]T, 0, len(t.rows))
	for _, row := range t.rows {
		if t.audit(&row).IsDeleted {
			continue
		}
		if match == nil || match(&row) {
			matched = append(matched, row)
		}
	}
	t.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		ai, aj := t.audit(&matched[i]).CreatedAt, t.audit(&matched[j]).CreatedAt
		if !ai.Equal(aj) {
			if ascending {
				return ai.Before(aj)
			}
			return ai.After(aj)
		}
		return id(&matched[i]) < id(&matched[j])
	})

	page = page.Normalize()
	total := len(matched)
	start := page.Skip
	if start > total {
		start = total
	}
	end := start + page.Take
	if end > total {
		end = total
	}
	items := make([]T, end-start)
	copy(items, matched[start:end])
	return repository.Page[T]{Items: items, Total: total}
}
