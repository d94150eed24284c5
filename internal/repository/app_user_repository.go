package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// AppUserFilter narrows AppUser listings.
type AppUserFilter struct {
	UserTypes  []domain.UserType
	Active     *bool
	SearchTerm string
}

// AppUserRepository persists AppUser rows.
type AppUserRepository interface {
	Insert(ctx context.Context, user *domain.AppUser) error
	Update(ctx context.Context, user *domain.AppUser) error
	GetByID(ctx context.Context, id string) (*domain.AppUser, error)
	GetByIdentityUserID(ctx context.Context, identityUserID string) (*domain.AppUser, error)
	Query(ctx context.Context, filter AppUserFilter, page PageRequest) (Page[domain.AppUser], error)
	Delete(ctx context.Context, id, actorID string, at time.Time) error
}

type appUserRepository struct {
	pool *pgxpool.Pool
}

// NewAppUserRepository returns a Postgres-backed implementation.
func NewAppUserRepository(pool *pgxpool.Pool) AppUserRepository {
	return &appUserRepository{pool: pool}
}

const appUserColumns = `id, identity_user_id, display_name, username, email, phone, user_type, active, ` + auditColumns

func (r *appUserRepository) Insert(ctx context.Context, user *domain.AppUser) error {
	query := `INSERT INTO app_users (` + appUserColumns + `)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	args := append([]any{
		user.ID,
		user.IdentityUserID,
		user.DisplayName,
		user.Username,
		user.Email,
		user.Phone,
		user.UserType,
		user.Active,
	}, auditArgs(user.AuditInfo)...)
	_, err := r.pool.Exec(ctx, query, args...)
	return err
}

func (r *appUserRepository) Update(ctx context.Context, user *domain.AppUser) error {
	const query = `
        UPDATE app_users SET display_name=$1, email=$2, phone=$3, user_type=$4, active=$5,
            modified_at=$6, modified_by=$7
        WHERE id=$8 AND is_deleted = FALSE`
	cmd, err := r.pool.Exec(ctx, query,
		user.DisplayName,
		user.Email,
		user.Phone,
		user.UserType,
		user.Active,
		user.ModifiedAt,
		user.ModifiedBy,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *appUserRepository) GetByID(ctx context.Context, id string) (*domain.AppUser, error) {
	query := `SELECT ` + appUserColumns + ` FROM app_users WHERE id=$1 AND is_deleted = FALSE`
	return scanAppUser(r.pool.QueryRow(ctx, query, id))
}

func (r *appUserRepository) GetByIdentityUserID(ctx context.Context, identityUserID string) (*domain.AppUser, error) {
	query := `SELECT ` + appUserColumns + ` FROM app_users WHERE identity_user_id=$1 AND is_deleted = FALSE`
	return scanAppUser(r.pool.QueryRow(ctx, query, identityUserID))
}

func (r *appUserRepository) Query(ctx context.Context, filter AppUserFilter, page PageRequest) (Page[domain.AppUser], error) {
	w := newWhere()
	if len(filter.UserTypes) > 0 {
		types := make([]any, len(filter.UserTypes))
		for i, t := range filter.UserTypes {
			types[i] = t
		}
		w.in("user_type", types)
	}
	if filter.Active != nil {
		w.add("active = ?", *filter.Active)
	}
	if filter.SearchTerm != "" {
		pattern := likePattern(filter.SearchTerm)
		w.add("(LOWER(display_name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern, pattern)
	}

	total, err := countRows(ctx, r.pool, "app_users", w)
	if err != nil {
		return Page[domain.AppUser]{}, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+appUserColumns+` FROM app_users`+w.sql()+pageSQL("created_at DESC, id", page), w.args...)
	if err != nil {
		return Page[domain.AppUser]{}, err
	}
	defer rows.Close()

	items := []domain.AppUser{}
	for rows.Next() {
		user, err := scanAppUser(rows)
		if err != nil {
			return Page[domain.AppUser]{}, err
		}
		items = append(items, *user)
	}
	return Page[domain.AppUser]{Items: items, Total: total}, rows.Err()
}

func (r *appUserRepository) Delete(ctx context.Context, id, actorID string, at time.Time) error {
	return softDelete(ctx, r.pool, "app_users", id, actorID, at)
}

func scanAppUser(row pgx.Row) (*domain.AppUser, error) {
	var user domain.AppUser
	dest := append([]any{
		&user.ID,
		&user.IdentityUserID,
		&user.DisplayName,
		&user.Username,
		&user.Email,
		&user.Phone,
		&user.UserType,
		&user.Active,
	}, auditDest(&user.AuditInfo)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &user, nil
}
