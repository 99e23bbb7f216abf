package auth

import (
	"net/http"

	dto "github.com/dropDatabas3/openfund/internal/http/dto/auth"
	"github.com/dropDatabas3/openfund/internal/http/helpers"
	"github.com/dropDatabas3/openfund/internal/http/middlewares"
	svc "github.com/dropDatabas3/openfund/internal/http/services/auth"
)

// LogoutController maneja POST /auth/logout. Idempotente: un token ya
// revocado o desconocido responde 204 igual.
type LogoutController struct {
	service *svc.Service
}

func NewLogoutController(s *svc.Service) *LogoutController {
	return &LogoutController{service: s}
}

func (c *LogoutController) Handle(w http.ResponseWriter, r *http.Request) {
	var req dto.LogoutRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if err := c.service.Logout(r.Context(), req.RefreshToken); err != nil {
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LogoutAllController maneja POST /auth/logout-all. Requiere bearer
// token: revoca todos los refresh tokens del usuario autenticado.
type LogoutAllController struct {
	service *svc.Service
}

func NewLogoutAllController(s *svc.Service) *LogoutAllController {
	return &LogoutAllController{service: s}
}

func (c *LogoutAllController) Handle(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	if userID == "" {
		helpers.WriteErrorJSON(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := c.service.LogoutAll(r.Context(), userID); err != nil {
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "logout failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
