package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/helpline-io/support-portal/internal/domain"
)

// IdentityRepository persists identity provider accounts.
type IdentityRepository interface {
	Create(ctx context.Context, user *domain.IdentityUser) error
	GetByID(ctx context.Context, id string) (*domain.IdentityUser, error)
	GetByUsernameOrEmail(ctx context.Context, login string) (*domain.IdentityUser, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type identityRepository struct {
	pool *pgxpool.Pool
}

// NewIdentityRepository returns a Postgres-backed implementation.
func NewIdentityRepository(pool *pgxpool.Pool) IdentityRepository {
	return &identityRepository{pool: pool}
}

func (r *identityRepository) Create(ctx context.Context, user *domain.IdentityUser) error {
	const query = `
        INSERT INTO identity_users (id, username, email, password_hash, active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.Active,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
}

func (r *identityRepository) GetByID(ctx context.Context, id string) (*domain.IdentityUser, error) {
	const query = `
        SELECT id, username, email, password_hash, active, created_at, updated_at
        FROM identity_users WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *identityRepository) GetByUsernameOrEmail(ctx context.Context, login string) (*domain.IdentityUser, error) {
	const query = `
        SELECT id, username, email, password_hash, active, created_at, updated_at
        FROM identity_users WHERE LOWER(username)=LOWER($1) OR LOWER(email)=LOWER($1)
        LIMIT 1`
	return r.fetchSingle(ctx, query, login)
}

func (r *identityRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	const query = `
        SELECT EXISTS (SELECT 1 FROM identity_users WHERE LOWER(username)=LOWER($1) OR LOWER(email)=LOWER($2))`
	var exists bool
	err := r.pool.QueryRow(ctx, query, username, email).Scan(&exists)
	return exists, err
}

func (r *identityRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const query = `
        UPDATE identity_users SET password_hash=$2, updated_at=NOW()
        WHERE id=$1`
	tag, err := r.pool.Exec(ctx, query, id, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *identityRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.IdentityUser, error) {
	var user domain.IdentityUser
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Active,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}
