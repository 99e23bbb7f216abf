package auth

import (
	"errors"
	"net/http"

	dto "github.com/dropDatabas3/openfund/internal/http/dto/auth"
	"github.com/dropDatabas3/openfund/internal/http/helpers"
	svc "github.com/dropDatabas3/openfund/internal/http/services/auth"
)

// RefreshController maneja POST /auth/refresh.
type RefreshController struct {
	service *svc.Service
}

func NewRefreshController(s *svc.Service) *RefreshController {
	return &RefreshController{service: s}
}

func (c *RefreshController) Handle(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}

	sess, err := c.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, svc.ErrInvalidRefreshToken) {
			helpers.WriteErrorJSON(w, http.StatusUnauthorized, err.Error())
			return
		}
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "refresh failed")
		return
	}

	helpers.WriteJSON(w, http.StatusOK, tokenResponse(sess))
}
