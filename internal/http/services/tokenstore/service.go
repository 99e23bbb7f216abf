// Package tokenstore implementa el vault de refresh tokens: cifrado,
// persistencia, lookup por plaintext y revocación.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
	"github.com/dropDatabas3/openfund/internal/metrics"
	"github.com/dropDatabas3/openfund/internal/observability/logger"
	"github.com/dropDatabas3/openfund/internal/security/tokencrypt"
)

// ErrEncryption indica que una operación de cifrado/descifrado no pudo
// completarse (clave incorrecta, ciphertext corrupto).
var ErrEncryption = errors.New("tokenstore: encryption failure")

// DefaultRefreshTTL es la ventana de validez si no se configura otra.
const DefaultRefreshTTL = 30 * 24 * time.Hour

// Deps contiene las dependencias del vault.
type Deps struct {
	Tokens     repository.TokenRepository
	Box        *tokencrypt.Box
	RefreshTTL time.Duration
}

// Service es el vault de refresh tokens.
// Todo secreto se cifra antes de tocar el store; el lookup usa el mismo
// cifrado determinístico e iguala por ciphertext.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.RefreshTTL <= 0 {
		deps.RefreshTTL = DefaultRefreshTTL
	}
	return &Service{deps: deps}
}

// ProviderTokens son los tokens de terceros que acompañan a un refresh
// token. Cada slot es independiente y anulable; los slots ajenos al
// provider del callback quedan en nil.
type ProviderTokens struct {
	GoogleAccessToken   *string
	GoogleRefreshToken  *string
	YoutubeAccessToken  *string
	YoutubeRefreshToken *string
}

// CreateRefreshToken cifra cada secreto no-nil de forma independiente y
// persiste el registro con una ventana de validez fija desde ahora.
// El cifrado ocurre completo antes del write: si algo falla no se
// persiste ningún registro parcial.
func (s *Service) CreateRefreshToken(ctx context.Context, userID, primarySecret string, pt ProviderTokens) (*repository.RefreshToken, error) {
	if primarySecret == "" {
		return nil, fmt.Errorf("tokenstore: empty primary secret")
	}

	ct, err := s.Encrypt(primarySecret)
	if err != nil {
		return nil, err
	}

	rec := &repository.RefreshToken{
		ID:        uuid.NewString(),
		UserID:    userID,
		Token:     ct,
		ExpiresAt: time.Now().UTC().Add(s.deps.RefreshTTL),
	}

	if rec.GoogleAccessToken, err = s.encryptOpt(pt.GoogleAccessToken); err != nil {
		return nil, err
	}
	if rec.GoogleRefreshToken, err = s.encryptOpt(pt.GoogleRefreshToken); err != nil {
		return nil, err
	}
	if rec.YoutubeAccessToken, err = s.encryptOpt(pt.YoutubeAccessToken); err != nil {
		return nil, err
	}
	if rec.YoutubeRefreshToken, err = s.encryptOpt(pt.YoutubeRefreshToken); err != nil {
		return nil, err
	}

	if err := s.deps.Tokens.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("tokenstore: persist: %w", err)
	}

	metrics.RefreshTokensIssued.Inc()
	logger.From(ctx).Debug("refresh token issued",
		logger.Component("tokenstore"), logger.UserID(userID), logger.TokenID(rec.ID))
	return rec, nil
}

// GetActiveRefreshToken busca por plaintext un token activo.
// Cifra la key de búsqueda con el mismo esquema determinístico y matchea
// por igualdad de ciphertext. Revocado, expirado e inexistente son
// indistinguibles: (nil, nil).
func (s *Service) GetActiveRefreshToken(ctx context.Context, plaintextToken string) (*repository.RefreshToken, error) {
	ct, err := s.Encrypt(plaintextToken)
	if err != nil {
		return nil, err
	}
	rec, err := s.deps.Tokens.GetActiveByToken(ctx, ct, time.Now().UTC())
	if repository.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("tokenstore: lookup: %w", err)
	}
	return rec, nil
}

// RevokeRefreshToken revoca el token presentado en plaintext.
// Idempotente: revocar un token ya revocado o inexistente no es error.
func (s *Service) RevokeRefreshToken(ctx context.Context, plaintextToken string) error {
	ct, err := s.Encrypt(plaintextToken)
	if err != nil {
		return err
	}
	if err := s.deps.Tokens.RevokeByToken(ctx, ct); err != nil {
		return fmt.Errorf("tokenstore: revoke: %w", err)
	}
	metrics.RefreshTokensRevoked.Inc()
	return nil
}

// RevokeAllUserTokens revoca todos los tokens activos del usuario en una
// operación lógica; los ya revocados quedan como están.
func (s *Service) RevokeAllUserTokens(ctx context.Context, userID string) error {
	n, err := s.deps.Tokens.RevokeAllByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("tokenstore: revoke all: %w", err)
	}
	metrics.RefreshTokensRevoked.Add(float64(n))
	logger.From(ctx).Info("user tokens revoked",
		logger.Component("tokenstore"), logger.UserID(userID), logger.Count(n))
	return nil
}

// Encrypt cifra un token con la clave del vault.
func (s *Service) Encrypt(token string) (string, error) {
	ct, err := s.deps.Box.Encrypt(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return ct, nil
}

// Decrypt descifra un ciphertext del vault.
func (s *Service) Decrypt(ciphertext string) (string, error) {
	pt, err := s.deps.Box.Decrypt(ciphertext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}
	return pt, nil
}

func (s *Service) encryptOpt(v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	ct, err := s.Encrypt(*v)
	if err != nil {
		return nil, err
	}
	return &ct, nil
}
