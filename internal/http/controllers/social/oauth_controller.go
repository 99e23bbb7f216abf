// Package social contiene los controllers del login social.
package social

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	svc "github.com/dropDatabas3/openfund/internal/http/services/social"
	"github.com/dropDatabas3/openfund/internal/observability/logger"
)

const stateCookie = "oauth_state"

// Provider agrupa lo necesario para un flujo social completo.
type Provider struct {
	Service *svc.Service
	AuthURL svc.AuthCodeURLBuilder
}

// Controller maneja los flujos GET /auth/{provider} y su callback, y
// cierra redirigiendo al frontend con los tokens o la razón del rechazo.
type Controller struct {
	google      Provider
	youtube     Provider
	frontendURL string
}

func NewController(google, youtube Provider, frontendURL string) *Controller {
	return &Controller{google: google, youtube: youtube, frontendURL: frontendURL}
}

func (c *Controller) GoogleLogin(w http.ResponseWriter, r *http.Request)  { c.login(w, r, c.google) }
func (c *Controller) YouTubeLogin(w http.ResponseWriter, r *http.Request) { c.login(w, r, c.youtube) }

func (c *Controller) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	c.callback(w, r, c.google)
}

func (c *Controller) YouTubeCallback(w http.ResponseWriter, r *http.Request) {
	c.callback(w, r, c.youtube)
}

// login genera el state anti-CSRF, lo deja en una cookie corta y manda
// al usuario al consent screen del provider.
func (c *Controller) login(w http.ResponseWriter, r *http.Request, p Provider) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, p.AuthURL.AuthCodeURL(state), http.StatusFound)
}

func (c *Controller) callback(w http.ResponseWriter, r *http.Request, p Provider) {
	if !c.validState(r) {
		logger.From(r.Context()).Info("oauth state mismatch")
		c.redirectError(w, r, svc.ReasonAuthFailed)
		return
	}

	res, err := p.Service.HandleCallback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		logger.From(r.Context()).Error("oauth callback failed", logger.Err(err))
		c.redirectError(w, r, svc.ReasonAuthFailed)
		return
	}
	if !res.Success {
		c.redirectError(w, r, res.Reason)
		return
	}

	q := url.Values{
		"accessToken":  {res.AccessToken},
		"refreshToken": {res.RefreshToken},
	}
	http.Redirect(w, r, c.frontendURL+"/auth/success?"+q.Encode(), http.StatusFound)
}

func (c *Controller) validState(r *http.Request) bool {
	state := r.URL.Query().Get("state")
	if state == "" {
		return false
	}
	ck, err := r.Cookie(stateCookie)
	if err != nil {
		return false
	}
	return ck.Value == state
}

func (c *Controller) redirectError(w http.ResponseWriter, r *http.Request, reason string) {
	q := url.Values{"message": {reason}}
	http.Redirect(w, r, c.frontendURL+"/auth/error?"+q.Encode(), http.StatusFound)
}
