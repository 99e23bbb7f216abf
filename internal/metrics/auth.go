package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas Prometheus de autenticación. Viven en un paquete propio para
// evitar ciclos de import entre services y paquetes HTTP.

var (
	Logins = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Intentos de login por resultado (ok|invalid_credentials|error)",
	}, []string{"result"})

	Registrations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Registros por resultado (ok|duplicate|error)",
	}, []string{"result"})

	OAuthCallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_oauth_callbacks_total",
		Help: "Callbacks OAuth por provider y resultado",
	}, []string{"provider", "result"})

	RefreshTokensIssued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_refresh_tokens_issued_total",
		Help: "Refresh tokens emitidos",
	})

	RefreshTokensRevoked = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_refresh_tokens_revoked_total",
		Help: "Refresh tokens revocados",
	})
)

// RegisterAuth registra las métricas de auth en el registry dado (nil usa
// el default). Tolera registros repetidos.
func RegisterAuth(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		Logins, Registrations, OAuthCallbacks, RefreshTokensIssued, RefreshTokensRevoked,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
