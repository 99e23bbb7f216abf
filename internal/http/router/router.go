// Package router arma el árbol de rutas del servicio.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authctrl "github.com/dropDatabas3/openfund/internal/http/controllers/auth"
	socialctrl "github.com/dropDatabas3/openfund/internal/http/controllers/social"
	"github.com/dropDatabas3/openfund/internal/http/helpers"
	mw "github.com/dropDatabas3/openfund/internal/http/middlewares"
	"github.com/dropDatabas3/openfund/internal/rate"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	AuthControllers  *authctrl.Controllers
	SocialController *socialctrl.Controller

	AuthMiddleware mw.Middleware // validación JWT

	// Limiters por endpoint de credenciales. Nil desactiva.
	LoginLimiter    rate.Limiter
	RegisterLimiter rate.Limiter

	CORSAllowedOrigins []string
}

// New arma el router con el stack de middlewares y todas las rutas.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(mw.WithRecover())
	r.Use(mw.WithRequestLogger())
	r.Use(mw.WithCORS(d.CORSAllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.With(mw.WithRateLimit(d.RegisterLimiter)).
			Post("/register", d.AuthControllers.Register.Handle)
		r.With(mw.WithRateLimit(d.LoginLimiter)).
			Post("/login", d.AuthControllers.Login.Handle)

		r.Post("/refresh", d.AuthControllers.Refresh.Handle)
		r.Post("/logout", d.AuthControllers.Logout.Handle)
		r.With(d.AuthMiddleware).
			Post("/logout-all", d.AuthControllers.LogoutAll.Handle)

		if d.SocialController != nil {
			r.Get("/google", d.SocialController.GoogleLogin)
			r.Get("/google/callback", d.SocialController.GoogleCallback)
			r.Get("/youtube", d.SocialController.YouTubeLogin)
			r.Get("/youtube/callback", d.SocialController.YouTubeCallback)
		}
	})

	r.With(d.AuthMiddleware).
		Get("/me", d.AuthControllers.Me.Handle)

	return r
}
