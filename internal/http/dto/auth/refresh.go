package auth

// RefreshRequest rota un refresh token vigente.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// LogoutRequest revoca el refresh token presentado.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}
