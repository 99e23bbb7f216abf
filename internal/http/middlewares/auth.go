package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dropDatabas3/openfund/internal/http/helpers"
	jwtx "github.com/dropDatabas3/openfund/internal/jwt"
)

// WithAuth valida el bearer token y deja user ID y claims en el contexto.
func WithAuth(provider *jwtx.Provider) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				w.Header().Set("WWW-Authenticate", "Bearer")
				helpers.WriteErrorJSON(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := provider.Decode(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				msg := "invalid token"
				if errors.Is(err, jwtx.ErrTokenExpired) {
					msg = "token expired"
				}
				w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
				helpers.WriteErrorJSON(w, http.StatusUnauthorized, msg)
				return
			}

			ctx := WithUserID(r.Context(), claims.Subject)
			ctx = withClaims(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
