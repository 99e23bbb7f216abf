// Package pg implementa los repositorios de dominio sobre PostgreSQL.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
)

// userRepo implementa repository.UserRepository.
type userRepo struct {
	pool *pgxpool.Pool
}

// NewUserRepo crea un nuevo repositorio de usuarios.
func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

const userColumns = `id, email, display_name, password_hash, google_id, avatar,
	is_creator, email_confirmed, created_at, last_login_at`

func scanUser(row pgx.Row) (*repository.User, error) {
	var u repository.User
	err := row.Scan(
		&u.ID, &u.Email, &u.DisplayName, &u.PasswordHash, &u.GoogleID, &u.Avatar,
		&u.IsCreator, &u.EmailConfirmed, &u.CreatedAt, &u.LastLoginAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.pool.QueryRow(ctx, query, email))
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, userID))
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	const query = `
		INSERT INTO users (
			id, email, display_name, password_hash, google_id, avatar,
			is_creator, email_confirmed, created_at, last_login_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), $9)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		u.ID, u.Email, u.DisplayName, u.PasswordHash, u.GoogleID, u.Avatar,
		u.IsCreator, u.EmailConfirmed, u.LastLoginAt,
	).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return repository.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *repository.User) error {
	const query = `
		UPDATE users SET
			display_name = $2, google_id = $3, avatar = $4,
			is_creator = $5, email_confirmed = $6, last_login_at = $7
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		u.ID, u.DisplayName, u.GoogleID, u.Avatar,
		u.IsCreator, u.EmailConfirmed, u.LastLoginAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}
