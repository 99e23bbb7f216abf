package auth

import (
	"net/http"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
	dto "github.com/dropDatabas3/openfund/internal/http/dto/auth"
	"github.com/dropDatabas3/openfund/internal/http/helpers"
	"github.com/dropDatabas3/openfund/internal/http/middlewares"
	svc "github.com/dropDatabas3/openfund/internal/http/services/auth"
)

// MeController maneja GET /me.
type MeController struct {
	service *svc.Service
}

func NewMeController(s *svc.Service) *MeController {
	return &MeController{service: s}
}

func (c *MeController) Handle(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.GetUserID(r.Context())
	if userID == "" {
		helpers.WriteErrorJSON(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	u, err := c.service.GetUser(r.Context(), userID)
	if err != nil {
		if repository.IsNotFound(err) {
			helpers.WriteErrorJSON(w, http.StatusNotFound, "user not found")
			return
		}
		helpers.WriteErrorJSON(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	helpers.WriteJSON(w, http.StatusOK, dto.MeResponse{
		ID:             u.ID,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Avatar:         u.Avatar,
		IsCreator:      u.IsCreator,
		EmailConfirmed: u.EmailConfirmed,
		CreatedAt:      u.CreatedAt,
		LastLoginAt:    u.LastLoginAt,
	})
}
