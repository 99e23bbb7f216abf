package middlewares

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/openfund/internal/observability/logger"
)

// statusWriter captura el status code para el log de acceso.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// WithRequestLogger asigna un request ID, lo propaga en el contexto y el
// header X-Request-ID, e inyecta un logger con campos del request. Al
// terminar emite la línea de acceso.
func WithRequestLogger() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set("X-Request-ID", reqID)

			log := logger.L().With(
				logger.RequestID(reqID),
				logger.Method(r.Method),
				logger.Path(r.URL.Path),
			)

			ctx := setRequestID(r.Context(), reqID)
			ctx = logger.ToContext(ctx, log)

			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			start := time.Now()
			next.ServeHTTP(sw, r.WithContext(ctx))

			log.Info("request",
				logger.Status(sw.status),
				logger.Duration(time.Since(start)),
			)
		})
	}
}
