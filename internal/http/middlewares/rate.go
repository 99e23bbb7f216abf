package middlewares

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/openfund/internal/http/helpers"
	"github.com/dropDatabas3/openfund/internal/observability/logger"
	"github.com/dropDatabas3/openfund/internal/rate"
)

// clientIP extrae la IP del cliente, considerando proxies.
func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

// extractJSONField lee hasta max bytes del body para extraer un campo y
// repone el body para el handler.
func extractJSONField(r *http.Request, field string, max int64) string {
	if r.Method != http.MethodPost ||
		!strings.Contains(strings.ToLower(r.Header.Get("Content-Type")), "application/json") {
		return ""
	}
	var buf bytes.Buffer
	_, _ = io.CopyN(&buf, r.Body, max)
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(buf.Bytes()))

	var tmp map[string]any
	if err := json.Unmarshal(buf.Bytes(), &tmp); err == nil {
		if s, ok := tmp[field].(string); ok {
			return s
		}
	}
	return ""
}

// credentialRateKey combina path, IP y email (si viene en el body) para
// que un atacante no consuma la ventana de otra cuenta ni una IP entera.
func credentialRateKey(r *http.Request) string {
	key := r.URL.Path + "|" + clientIP(r)
	if email := extractJSONField(r, "email", 4<<10); email != "" {
		key += "|" + strings.ToLower(strings.TrimSpace(email))
	}
	return key
}

// WithRateLimit aplica rate limiting de ventana fija sobre los endpoints
// de credenciales. Limiter nil desactiva el middleware.
func WithRateLimit(limiter rate.Limiter) Middleware {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), credentialRateKey(r))
			if err != nil {
				// Limiter caído no debe tumbar el login.
				logger.From(r.Context()).Warn("rate limiter unavailable", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !res.Allowed {
				retry := int(res.RetryAfter.Seconds())
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				helpers.WriteErrorJSON(w, http.StatusTooManyRequests,
					fmt.Sprintf("too many attempts, retry in %ds", retry))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
