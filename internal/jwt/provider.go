// Package jwt emite y valida access tokens firmados con HS256.
package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
	tokens "github.com/dropDatabas3/openfund/internal/security/token"
)

// Options configura el provider. Inmutable después de construcción.
type Options struct {
	Issuer    string
	Audience  string
	Key       string // clave simétrica HS256
	AccessTTL time.Duration
}

// Provider firma access tokens con una clave simétrica.
// Es puro dado Options: sin estado, seguro para uso concurrente.
type Provider struct {
	opts Options
	key  []byte
}

// Errores de validación de tokens.
var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

func NewProvider(opts Options) (*Provider, error) {
	if opts.Key == "" {
		return nil, fmt.Errorf("jwt: signing key required")
	}
	// Solo el cero toma el default; un TTL negativo es intencional
	// (emite tokens ya vencidos, útil en tests de expiración).
	if opts.AccessTTL == 0 {
		opts.AccessTTL = 60 * time.Minute
	}
	return &Provider{opts: opts, key: []byte(opts.Key)}, nil
}

// Claims son los claims embebidos en cada access token.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwtv5.RegisteredClaims
}

// Create emite un access token para el usuario y retorna el token
// junto con su instante absoluto de expiración en UTC.
func (p *Provider) Create(u *repository.User) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(p.opts.AccessTTL)

	claims := Claims{
		Email: u.Email,
		Name:  u.DisplayName,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    p.opts.Issuer,
			Audience:  jwtv5.ClaimStrings{p.opts.Audience},
			IssuedAt:  jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}

	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	signed, err := tk.SignedString(p.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Decode valida firma, issuer, audience y vigencia, y retorna los claims.
func (p *Provider) Decode(tokenString string) (*Claims, error) {
	var claims Claims
	tk, err := jwtv5.ParseWithClaims(tokenString, &claims,
		func(t *jwtv5.Token) (any, error) {
			if _, ok := t.Method.(*jwtv5.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
			}
			return p.key, nil
		},
		jwtv5.WithIssuer(p.opts.Issuer),
		jwtv5.WithAudience(p.opts.Audience),
		jwtv5.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwtv5.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tk.Valid {
		return nil, ErrTokenInvalid
	}
	return &claims, nil
}

// GenerateRefreshToken produce un secreto opaco (32 bytes, base64url).
// El vault lo cifra antes de persistir; el caller lo trata como bearer secret.
func (p *Provider) GenerateRefreshToken() (string, error) {
	return tokens.GenerateOpaqueToken(tokens.MinEntropyBytes)
}
