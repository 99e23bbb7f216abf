// Package social contiene el service de login social (Google y YouTube).
//
// Ambos providers comparten la misma máquina de estados de callback; la
// diferencia entre ellos se expresa como una Policy (qué hace con un
// usuario nuevo, qué flags otorga, en qué slots guarda los tokens).
package social

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
	"github.com/dropDatabas3/openfund/internal/util"
)

// Razones de rechazo expuestas al frontend. Texto estable: el cliente
// las matchea.
const (
	ReasonAuthFailed       = "Authentication failed"
	ReasonMissingClaims    = "Missing required claims"
	ReasonUserWriteFailed  = "Failed to create or update user"
	ReasonSignInWithGoogle = "User not found. Please sign in with Google first."
)

// UserInfo es la identidad verificada que retorna el intercambio OAuth.
type UserInfo struct {
	ProviderID string
	Email      string
	Name       string
	Avatar     string

	// Tokens del provider, viajan cifrados al vault.
	AccessToken  string
	RefreshToken string
}

// Exchanger canjea el authorization code del callback por la identidad
// del usuario y sus tokens de provider.
type Exchanger interface {
	Exchange(ctx context.Context, code string) (*UserInfo, error)
}

// AuthCodeURLBuilder arma la URL de autorización para iniciar el flujo.
type AuthCodeURLBuilder interface {
	AuthCodeURL(state string) string
}

// Policy parametriza la máquina de estados del callback por provider.
type Policy struct {
	Provider string // "google" | "youtube"

	// GrantsCreator otorga IsCreator al usuario. Nunca se revoca: un
	// login posterior por otro provider no degrada el flag.
	GrantsCreator bool

	// MissingUserReason es la razón de rechazo cuando el usuario no
	// existe y el store rechaza la creación.
	MissingUserReason string
}

// Result es el desenlace de un callback. Con Success=false solo Reason
// es significativo.
type Result struct {
	Success      bool
	Reason       string
	User         *repository.User
	AccessToken  string
	RefreshToken string
}

// Deps contiene las dependencias del service.
type Deps struct {
	Users     repository.UserRepository
	Vault     *tokenstore.Service
	Issuer    *jwtx.Provider
	Exchanger Exchanger
}

// Service ejecuta el flujo de callback para un provider concreto.
type Service struct {
	deps   Deps
	policy Policy
}

// NewGoogleService crea el service del flujo Google: provider primario,
// crea la cuenta si no existe y la deja con email confirmado.
func NewGoogleService(deps Deps) *Service {
	return &Service{deps: deps, policy: Policy{
		Provider:          "google",
		MissingUserReason: ReasonUserWriteFailed,
	}}
}

// NewYouTubeService crea el service del flujo YouTube: otorga IsCreator
// y exige que la cuenta exista o pueda crearse; si el store rechaza la
// creación el usuario debe pasar primero por Google.
func NewYouTubeService(deps Deps) *Service {
	return &Service{deps: deps, policy: Policy{
		Provider:          "youtube",
		GrantsCreator:     true,
		MissingUserReason: ReasonSignInWithGoogle,
	}}
}

// HandleCallback procesa el authorization code del provider y cierra el
// flujo con una sesión o un rechazo con razón estable.
func (s *Service) HandleCallback(ctx context.Context, code string) (*Result, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("social"),
		logger.Provider(s.policy.Provider),
	)

	info, err := s.deps.Exchanger.Exchange(ctx, code)
	if err != nil {
		log.Info("oauth exchange failed", logger.Err(err))
		metrics.OAuthCallbacks.WithLabelValues(s.policy.Provider, "auth_failed").Inc()
		return &Result{Reason: ReasonAuthFailed}, nil
	}

	if info.ProviderID == "" || info.Email == "" {
		log.Info("oauth identity incomplete")
		metrics.OAuthCallbacks.WithLabelValues(s.policy.Provider, "missing_claims").Inc()
		return &Result{Reason: ReasonMissingClaims}, nil
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	log = log.With(logger.Email(util.MaskEmail(email)))

	u, err := s.deps.Users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if err := s.updateExisting(ctx, u, info); err != nil {
			log.Error("failed to update user", logger.Err(err))
			metrics.OAuthCallbacks.WithLabelValues(s.policy.Provider, "user_write_failed").Inc()
			return &Result{Reason: ReasonUserWriteFailed}, nil
		}
	case repository.IsNotFound(err):
		u, err = s.createNew(ctx, email, info)
		if err != nil {
			log.Info("failed to create user", logger.Err(err))
			metrics.OAuthCallbacks.WithLabelValues(s.policy.Provider, "user_missing").Inc()
			return &Result{Reason: s.policy.MissingUserReason}, nil
		}
	default:
		return nil, fmt.Errorf("social: lookup email: %w", err)
	}

	sess, err := s.issueSession(ctx, u, info)
	if err != nil {
		log.Error("failed to issue session", logger.Err(err), logger.UserID(u.ID))
		metrics.OAuthCallbacks.WithLabelValues(s.policy.Provider, "error").Inc()
		return nil, err
	}

	metrics.OAuthCallbacks.WithLabelValues(s.policy.Provider, "ok").Inc()
	log.Info("oauth login successful", logger.UserID(u.ID))
	return sess, nil
}

// updateExisting sincroniza el perfil del provider sobre la cuenta.
// El claim gana: google_id y nombre se pisan con lo que trae el
// provider; el nombre local solo queda si el claim no trae uno.
func (s *Service) updateExisting(ctx context.Context, u *repository.User, info *UserInfo) error {
	id := info.ProviderID
	u.GoogleID = &id
	if info.Avatar != "" {
		av := info.Avatar
		u.Avatar = &av
	}
	if info.Name != "" {
		u.DisplayName = info.Name
	}
	if s.policy.GrantsCreator {
		u.IsCreator = true
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	return s.deps.Users.Update(ctx, u)
}

func (s *Service) createNew(ctx context.Context, email string, info *UserInfo) (*repository.User, error) {
	id := info.ProviderID
	now := time.Now().UTC()
	u := &repository.User{
		ID:             uuid.NewString(),
		Email:          email,
		DisplayName:    info.Name,
		GoogleID:       &id,
		IsCreator:      s.policy.GrantsCreator,
		EmailConfirmed: true,
		CreatedAt:      now,
		LastLoginAt:    &now,
	}
	if info.Avatar != "" {
		av := info.Avatar
		u.Avatar = &av
	}
	if err := s.deps.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// issueSession emite access/refresh y guarda los tokens del provider en
// los slots que le corresponden.
func (s *Service) issueSession(ctx context.Context, u *repository.User, info *UserInfo) (*Result, error) {
	access, _, err := s.deps.Issuer.Create(u)
	if err != nil {
		return nil, err
	}
	rawRefresh, err := s.deps.Issuer.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	var pt tokenstore.ProviderTokens
	switch s.policy.Provider {
	case "youtube":
		pt.YoutubeAccessToken = optStr(info.AccessToken)
		pt.YoutubeRefreshToken = optStr(info.RefreshToken)
	default:
		pt.GoogleAccessToken = optStr(info.AccessToken)
		pt.GoogleRefreshToken = optStr(info.RefreshToken)
	}

	if _, err := s.deps.Vault.CreateRefreshToken(ctx, u.ID, rawRefresh, pt); err != nil {
		return nil, err
	}

	return &Result{
		Success:      true,
		User:         u,
		AccessToken:  access,
		RefreshToken: rawRefresh,
	}, nil
}

func optStr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
