// Package auth contiene los controllers de autenticación con credenciales.
package auth

import svc "github.com/dropDatabas3/openfund/internal/http/services/auth"

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Register  *RegisterController
	Login     *LoginController
	Refresh   *RefreshController
	Logout    *LogoutController
	LogoutAll *LogoutAllController
	Me        *MeController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(s *svc.Service) *Controllers {
	return &Controllers{
		Register:  NewRegisterController(s),
		Login:     NewLoginController(s),
		Refresh:   NewRefreshController(s),
		Logout:    NewLogoutController(s),
		LogoutAll: NewLogoutAllController(s),
		Me:        NewMeController(s),
	}
}
