package auth

import "time"

// MeResponse es el perfil del usuario autenticado.
type MeResponse struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	DisplayName    string     `json:"display_name"`
	Avatar         *string    `json:"avatar,omitempty"`
	IsCreator      bool       `json:"is_creator"`
	EmailConfirmed bool       `json:"email_confirmed"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLoginAt    *time.Time `json:"last_login_at,omitempty"`
}
