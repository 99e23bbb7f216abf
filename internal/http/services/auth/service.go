// Package auth contiene el service de autenticación con credenciales:
// registro, login, refresh y logout.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
	"github.com/dropDatabas3/openfund/internal/http/services/tokenstore"
	jwtx "github.com/dropDatabas3/openfund/internal/jwt"
	"github.com/dropDatabas3/openfund/internal/metrics"
	"github.com/dropDatabas3/openfund/internal/observability/logger"
	"github.com/dropDatabas3/openfund/internal/security/password"
	"github.com/dropDatabas3/openfund/internal/util"
)

// Errores de autenticación.
var (
	ErrMissingFields       = fmt.Errorf("missing required fields")
	ErrInvalidEmail        = fmt.Errorf("invalid email address")
	ErrWeakPassword        = fmt.Errorf("password must be at least 8 characters")
	ErrDuplicateAccount    = fmt.Errorf("an account with this email already exists")
	ErrInvalidCredentials  = fmt.Errorf("invalid credentials")
	ErrInvalidRefreshToken = fmt.Errorf("invalid refresh token")
	ErrTokenIssueFailed    = fmt.Errorf("failed to issue token")
)

const minPasswordLen = 8

// Deps contiene las dependencias del service.
type Deps struct {
	Users      repository.UserRepository
	Vault      *tokenstore.Service
	Issuer     *jwtx.Provider
	HashParams password.Params
}

// Service implementa registro y login con credenciales locales.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.HashParams == (password.Params{}) {
		deps.HashParams = password.Default
	}
	return &Service{deps: deps}
}

// Session es el resultado de un login/registro/refresh exitoso.
type Session struct {
	User            *repository.User
	AccessToken     string
	AccessExpiresAt time.Time
	RefreshToken    string // secreto opaco en claro, solo viaja una vez
}

// NormalizeEmail canonicaliza un email para búsqueda y almacenamiento.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register crea una cuenta con credenciales locales y abre sesión.
// Un email ya registrado (en cualquier casing) produce ErrDuplicateAccount
// sin escribir nada.
func (s *Service) Register(ctx context.Context, email, plainPassword, displayName string) (*Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Register"),
	)

	email = NormalizeEmail(email)
	displayName = strings.TrimSpace(displayName)

	if email == "" || plainPassword == "" {
		return nil, ErrMissingFields
	}
	if !looksLikeEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(plainPassword) < minPasswordLen {
		return nil, ErrWeakPassword
	}
	if displayName == "" {
		displayName = email[:strings.IndexByte(email, '@')]
	}

	// Pre-chequeo de duplicado. El store igual garantiza unicidad por
	// constraint, esto solo evita el costo del hash en el caso común.
	if _, err := s.deps.Users.GetByEmail(ctx, email); err == nil {
		log.Debug("duplicate email", logger.Email(util.MaskEmail(email)))
		metrics.Registrations.WithLabelValues("duplicate").Inc()
		return nil, ErrDuplicateAccount
	} else if !repository.IsNotFound(err) {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: lookup email: %w", err)
	}

	phc, err := password.Hash(s.deps.HashParams, plainPassword)
	if err != nil {
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}

	u := &repository.User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: &phc,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.deps.Users.Create(ctx, u); err != nil {
		if repository.IsConflict(err) {
			metrics.Registrations.WithLabelValues("duplicate").Inc()
			return nil, ErrDuplicateAccount
		}
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: create user: %w", err)
	}

	log = log.With(logger.UserID(u.ID))
	sess, err := s.issueSession(ctx, u, tokenstore.ProviderTokens{})
	if err != nil {
		log.Error("failed to issue session", logger.Err(err))
		metrics.Registrations.WithLabelValues("error").Inc()
		return nil, ErrTokenIssueFailed
	}

	metrics.Registrations.WithLabelValues("ok").Inc()
	log.Info("user registered")
	return sess, nil
}

// Login valida credenciales y abre sesión.
// Usuario inexistente, cuenta sin password (solo OAuth) y password
// incorrecto producen el mismo ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, plainPassword string) (*Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Login"),
	)

	email = NormalizeEmail(email)
	if email == "" || plainPassword == "" {
		return nil, ErrMissingFields
	}

	u, err := s.deps.Users.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsNotFound(err) {
			log.Debug("user not found", logger.Email(util.MaskEmail(email)))
			metrics.Logins.WithLabelValues("invalid_credentials").Inc()
			return nil, ErrInvalidCredentials
		}
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("auth: lookup email: %w", err)
	}

	log = log.With(logger.UserID(u.ID))

	if u.PasswordHash == nil || *u.PasswordHash == "" {
		log.Debug("no password identity")
		metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(plainPassword, *u.PasswordHash) {
		log.Debug("password check failed")
		metrics.Logins.WithLabelValues("invalid_credentials").Inc()
		return nil, ErrInvalidCredentials
	}

	now := time.Now().UTC()
	u.LastLoginAt = &now
	if err := s.deps.Users.Update(ctx, u); err != nil {
		// No bloquea el login, solo se pierde el timestamp.
		log.Warn("failed to update last login", logger.Err(err))
	}

	sess, err := s.issueSession(ctx, u, tokenstore.ProviderTokens{})
	if err != nil {
		log.Error("failed to issue session", logger.Err(err))
		metrics.Logins.WithLabelValues("error").Inc()
		return nil, ErrTokenIssueFailed
	}

	metrics.Logins.WithLabelValues("ok").Inc()
	log.Info("login successful")
	return sess, nil
}

// Refresh rota un refresh token: revoca el presentado y emite una sesión
// nueva preservando los tokens de provider del registro anterior.
// Token revocado, expirado o desconocido producen ErrInvalidRefreshToken.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("auth"),
		logger.Op("Refresh"),
	)

	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	rec, err := s.deps.Vault.GetActiveRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth: refresh lookup: %w", err)
	}
	if rec == nil {
		log.Debug("refresh token not active")
		return nil, ErrInvalidRefreshToken
	}

	u, err := s.deps.Users.GetByID(ctx, rec.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("auth: lookup user: %w", err)
	}

	log = log.With(logger.UserID(u.ID), logger.TokenID(rec.ID))

	pt, err := s.decryptProviderSlots(rec)
	if err != nil {
		log.Error("failed to carry provider tokens", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	if err := s.deps.Vault.RevokeRefreshToken(ctx, refreshToken); err != nil {
		log.Error("failed to revoke rotated token", logger.Err(err))
		return nil, fmt.Errorf("auth: revoke rotated token: %w", err)
	}

	sess, err := s.issueSession(ctx, u, pt)
	if err != nil {
		log.Error("failed to issue session", logger.Err(err))
		return nil, ErrTokenIssueFailed
	}

	log.Info("refresh token rotated")
	return sess, nil
}

// Logout revoca el refresh token presentado. Idempotente.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.deps.Vault.RevokeRefreshToken(ctx, refreshToken)
}

// LogoutAll revoca todos los refresh tokens activos del usuario.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingFields
	}
	return s.deps.Vault.RevokeAllUserTokens(ctx, userID)
}

// GetUser expone el lookup por ID para el endpoint /me.
func (s *Service) GetUser(ctx context.Context, userID string) (*repository.User, error) {
	return s.deps.Users.GetByID(ctx, userID)
}

// issueSession emite el par access/refresh para el usuario.
func (s *Service) issueSession(ctx context.Context, u *repository.User, pt tokenstore.ProviderTokens) (*Session, error) {
	access, exp, err := s.deps.Issuer.Create(u)
	if err != nil {
		return nil, err
	}
	rawRefresh, err := s.deps.Issuer.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}
	if _, err := s.deps.Vault.CreateRefreshToken(ctx, u.ID, rawRefresh, pt); err != nil {
		return nil, err
	}
	return &Session{
		User:            u,
		AccessToken:     access,
		AccessExpiresAt: exp,
		RefreshToken:    rawRefresh,
	}, nil
}

func (s *Service) decryptProviderSlots(rec *repository.RefreshToken) (tokenstore.ProviderTokens, error) {
	var pt tokenstore.ProviderTokens
	var err error
	if pt.GoogleAccessToken, err = s.decryptOpt(rec.GoogleAccessToken); err != nil {
		return pt, err
	}
	if pt.GoogleRefreshToken, err = s.decryptOpt(rec.GoogleRefreshToken); err != nil {
		return pt, err
	}
	if pt.YoutubeAccessToken, err = s.decryptOpt(rec.YoutubeAccessToken); err != nil {
		return pt, err
	}
	if pt.YoutubeRefreshToken, err = s.decryptOpt(rec.YoutubeRefreshToken); err != nil {
		return pt, err
	}
	return pt, nil
}

func (s *Service) decryptOpt(ct *string) (*string, error) {
	if ct == nil {
		return nil, nil
	}
	plain, err := s.deps.Vault.Decrypt(*ct)
	if err != nil {
		return nil, err
	}
	return &plain, nil
}

func looksLikeEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	if at <= 0 || at == len(s)-1 {
		return false
	}
	return !strings.ContainsAny(s, " \t")
}
