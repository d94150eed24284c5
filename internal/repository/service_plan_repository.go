package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// ServicePlanFilter narrows plan listings.
type ServicePlanFilter struct {
	SearchTerm string
	MinPrice   *float64
	MaxPrice   *float64
}

// ServicePlanRepository persists plans and their subscriptions.
type ServicePlanRepository interface {
	Insert(ctx context.Context, plan *domain.ServicePlan) error
	Update(ctx context.Context, plan *domain.ServicePlan) error
	GetByID(ctx context.Context, id string) (*domain.ServicePlan, error)
	ExistsByName(ctx context.Context, name, excludeID string) (bool, error)
	Query(ctx context.Context, filter ServicePlanFilter, page PageRequest) (Page[domain.ServicePlan], error)
	Delete(ctx context.Context, id, actorID string, at time.Time) error
	// Subscribe stores the subscription and bumps the plan usage count together.
	Subscribe(ctx context.Context, sub *domain.UserServicePlan) error
	HasSubscription(ctx context.Context, appUserID, planID string) (bool, error)
	ListSubscriptions(ctx context.Context, appUserID string) ([]domain.UserServicePlan, error)
}

type servicePlanRepository struct {
	pool *pgxpool.Pool
}

// NewServicePlanRepository returns a Postgres-backed implementation.
func NewServicePlanRepository(pool *pgxpool.Pool) ServicePlanRepository {
	return &servicePlanRepository{pool: pool}
}

const servicePlanColumns = `id, name, description, price, usage_count, ` + auditColumns

const subscriptionColumns = `id, app_user_id, service_plan_id, subscribed_at, ` + auditColumns

func (r *servicePlanRepository) Insert(ctx context.Context, plan *domain.ServicePlan) error {
	query := `INSERT INTO service_plans (` + servicePlanColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`
	args := append([]any{plan.ID, plan.Name, plan.Description, plan.Price, plan.UsageCount}, auditArgs(plan.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *servicePlanRepository) Update(ctx context.Context, plan *domain.ServicePlan) error {
	const query = `
        UPDATE service_plans SET name=$1, description=$2, price=$3, modified_at=$4, modified_by=$5
        WHERE id=$6 AND is_deleted = FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		plan.Name,
		plan.Description,
		plan.Price,
		plan.ModifiedAt,
		plan.ModifiedBy,
		plan.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *servicePlanRepository) GetByID(ctx context.Context, id string) (*domain.ServicePlan, error) {
	query := `SELECT ` + servicePlanColumns + ` FROM service_plans WHERE id=$1 AND is_deleted = FALSE`
	return scanServicePlan(r.pool.QueryRow(ctx, query, id))
}

func (r *servicePlanRepository) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM service_plans
            WHERE LOWER(name)=LOWER($1) AND id::text <> $2 AND is_deleted = FALSE)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, name, excludeID).Scan(&exists)
	return exists, err
}

func (r *servicePlanRepository) Query(ctx context.Context, filter ServicePlanFilter, page PageRequest) (Page[domain.ServicePlan], error) {
	w := newWhere()
	if filter.SearchTerm != "" {
		pattern := likePattern(filter.SearchTerm)
		w.add("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.MinPrice != nil {
		w.add("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		w.add("price <= ?", *filter.MaxPrice)
	}

	total, err := countRows(ctx, r.pool, "service_plans", w)
	if err != nil {
		return Page[domain.ServicePlan]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+servicePlanColumns+` FROM service_plans`+w.sql()+pageSQL("created_at DESC, id", page), w.args...)
	if err != nil {
		return Page[domain.ServicePlan]{}, err
	}
	defer rows.Close()

	items := []domain.ServicePlan{}
	for rows.Next() {
		plan, err := scanServicePlan(rows)
		if err != nil {
			return Page[domain.ServicePlan]{}, err
		}
		items = append(items, *plan)
	}
	return Page[domain.ServicePlan]{Items: items, Total: total}, rows.Err()
}

func (r *servicePlanRepository) Delete(ctx context.Context, id, actorID string, at time.Time) error {
	return softDelete(ctx, r.pool, "service_plans", id, actorID, at)
}

func (r *servicePlanRepository) Subscribe(ctx context.Context, sub *domain.UserServicePlan) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		cmd, err := tx.Exec(ctx, `UPDATE service_plans SET usage_count = usage_count + 1 WHERE id=$1 AND is_deleted = FALSE`, sub.ServicePlanID)
		if err != nil {
			return err
		}
		if cmd.RowsAffected() == 0 {
			return pgx.ErrNoRows
		}
		query := `INSERT INTO user_service_plans (` + subscriptionColumns + `)
            VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
		args := append([]any{sub.ID, sub.AppUserID, sub.ServicePlanID, sub.SubscribedAt}, auditArgs(sub.AuditInfo)...)
		_, err = tx.Exec(ctx, query, args...)
		return err
	})
}

func (r *servicePlanRepository) HasSubscription(ctx context.Context, appUserID, planID string) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM user_service_plans
            WHERE app_user_id=$1 AND service_plan_id=$2 AND is_deleted = FALSE)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, appUserID, planID).Scan(&exists)
	return exists, err
}

func (r *servicePlanRepository) ListSubscriptions(ctx context.Context, appUserID string) ([]domain.UserServicePlan, error) {
	w := newWhere().add("app_user_id = ?", appUserID)
	rows, err := r.pool.Query(ctx, `SELECT `+subscriptionColumns+` FROM user_service_plans`+w.sql()+` ORDER BY subscribed_at DESC`, w.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.UserServicePlan{}
	for rows.Next() {
		var sub domain.UserServicePlan
		dest := append([]any{&sub.ID, &sub.AppUserID, &sub.ServicePlanID, &sub.SubscribedAt}, auditDest(&sub.AuditInfo)...)
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		result = append(result, sub)
	}
	return result, rows.Err()
}

func scanServicePlan(row pgx.Row) (*domain.ServicePlan, error) {
	var plan domain.ServicePlan
	dest := append([]any{&plan.ID, &plan.Name, &plan.Description, &plan.Price, &plan.UsageCount}, auditDest(&plan.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &plan, nil
}
