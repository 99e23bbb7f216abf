// Package auth contiene los DTOs de los endpoints de autenticación.
package auth

// LoginRequest es la solicitud de login con credenciales locales.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse es la respuesta exitosa de login/registro/refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"` // "Bearer"
	ExpiresIn    int64  `json:"expires_in"` // segundos
	RefreshToken string `json:"refresh_token"`
}
