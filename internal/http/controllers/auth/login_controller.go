package auth

import (
	"errors"
	"net/http"
	"time"

	dto "github.com/dropDatabas3/openfund/internal/http/dto/auth"
	"github.com/dropDatabas3/openfund/internal/http/helpers"
	svc "github.com/dropDatabas3/openfund/internal/http/services/auth"
)

// LoginController maneja POST /auth/login.
type LoginController struct {
	service *svc.Service
}

func NewLoginController(s *svc.Service) *LoginController {
	return &LoginController{service: s}
}

func (c *LoginController) Handle(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	sess, err := c.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrMissingFields):
			helpers.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, svc.ErrInvalidCredentials):
			helpers.WriteErrorJSON(w, http.StatusUnauthorized, err.Error())
		default:
			helpers.WriteErrorJSON(w, http.StatusInternalServerError, "login failed")
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, tokenResponse(sess))
}

func tokenResponse(sess *svc.Session) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken:  sess.AccessToken,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(sess.AccessExpiresAt).Seconds()),
		RefreshToken: sess.RefreshToken,
	}
}
