package repository

import (
	"context"
	"time"
)

// RefreshToken representa un refresh token persistido.
//
// Token y los slots de provider guardan SIEMPRE ciphertext; el plaintext
// nunca toca el store. Los cuatro slots de provider son independientes
// y anulables.
type RefreshToken struct {
	ID                  string
	UserID              string
	Token               string // ciphertext del secreto primario
	GoogleAccessToken   *string
	GoogleRefreshToken  *string
	YoutubeAccessToken  *string
	YoutubeRefreshToken *string
	ExpiresAt           time.Time
	CreatedAt           time.Time
	Revoked             bool
}

// TokenRepository define operaciones sobre refresh tokens.
type TokenRepository interface {
	// Create persiste un refresh token nuevo.
	Create(ctx context.Context, t *RefreshToken) error

	// GetActiveByToken busca por ciphertext un token activo
	// (no revocado y no expirado respecto de now).
	// Revocado, expirado o inexistente son indistinguibles: ErrNotFound.
	GetActiveByToken(ctx context.Context, ciphertext string, now time.Time) (*RefreshToken, error)

	// RevokeByToken marca como revocado el token con ese ciphertext.
	// Idempotente: revocar un token ya revocado o inexistente no es error.
	RevokeByToken(ctx context.Context, ciphertext string) error

	// RevokeAllByUser revoca todos los tokens activos de un usuario.
	// Retorna el número de tokens revocados.
	RevokeAllByUser(ctx context.Context, userID string) (int, error)
}
