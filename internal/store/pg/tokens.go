package pg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
)

// tokenRepo implementa repository.TokenRepository.
type tokenRepo struct {
	pool *pgxpool.Pool
}

// NewTokenRepo crea un nuevo repositorio de refresh tokens.
func NewTokenRepo(pool *pgxpool.Pool) repository.TokenRepository {
	return &tokenRepo{pool: pool}
}

func (r *tokenRepo) Create(ctx context.Context, t *repository.RefreshToken) error {
	const query = `
		INSERT INTO refresh_tokens (
			id, user_id, token,
			google_access_token, google_refresh_token,
			youtube_access_token, youtube_refresh_token,
			expires_at, created_at, revoked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), false)
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		t.ID, t.UserID, t.Token,
		t.GoogleAccessToken, t.GoogleRefreshToken,
		t.YoutubeAccessToken, t.YoutubeRefreshToken,
		t.ExpiresAt,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("create refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepo) GetActiveByToken(ctx context.Context, ciphertext string, now time.Time) (*repository.RefreshToken, error) {
	const query = `
		SELECT id, user_id, token,
			google_access_token, google_refresh_token,
			youtube_access_token, youtube_refresh_token,
			expires_at, created_at, revoked
		FROM refresh_tokens
		WHERE token = $1 AND NOT revoked AND expires_at > $2
	`
	var t repository.RefreshToken
	err := r.pool.QueryRow(ctx, query, ciphertext, now).Scan(
		&t.ID, &t.UserID, &t.Token,
		&t.GoogleAccessToken, &t.GoogleRefreshToken,
		&t.YoutubeAccessToken, &t.YoutubeRefreshToken,
		&t.ExpiresAt, &t.CreatedAt, &t.Revoked,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		// Revocado, expirado o inexistente: indistinguibles para el caller.
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get refresh token: %w", err)
	}
	return &t, nil
}

func (r *tokenRepo) RevokeByToken(ctx context.Context, ciphertext string) error {
	const query = `UPDATE refresh_tokens SET revoked = true WHERE token = $1 AND NOT revoked`
	if _, err := r.pool.Exec(ctx, query, ciphertext); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *tokenRepo) RevokeAllByUser(ctx context.Context, userID string) (int, error) {
	const query = `UPDATE refresh_tokens SET revoked = true WHERE user_id = $1 AND NOT revoked`
	tag, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user tokens: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
