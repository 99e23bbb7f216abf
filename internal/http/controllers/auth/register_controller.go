package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/openfund/internal/http/dto/auth"
	"github.com/dropDatabas3/openfund/internal/http/helpers"
	svc "github.com/dropDatabas3/openfund/internal/http/services/auth"
)

// RegisterController maneja POST /auth/register.
type RegisterController struct {
	service *svc.Service
}

func NewRegisterController(s *svc.Service) *RegisterController {
	return &RegisterController{service: s}
}

func (c *RegisterController) Handle(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	sess, err := c.service.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, svc.ErrMissingFields),
			errors.Is(err, svc.ErrInvalidEmail),
			errors.Is(err, svc.ErrWeakPassword):
			helpers.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, svc.ErrDuplicateAccount):
			helpers.WriteErrorJSON(w, http.StatusConflict, err.Error())
		default:
			helpers.WriteErrorJSON(w, http.StatusInternalServerError, "registration failed")
		}
		return
	}

	helpers.WriteJSON(w, http.StatusCreated, tokenResponse(sess))
}
