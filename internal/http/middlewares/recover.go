package middlewares

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dropDatabas3/openfund/internal/http/helpers"
	"github.com/dropDatabas3/openfund/internal/observability/logger"
)

// WithRecover captura panics y devuelve 500 en lugar de crashear.
func WithRecover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.From(r.Context()).Error("panic recovered",
						logger.Op("recover"),
						zap.Any("panic", rec),
					)
					helpers.WriteErrorJSON(w, http.StatusInternalServerError, "internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
