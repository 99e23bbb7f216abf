package auth

// RegisterRequest es la solicitud de registro con credenciales locales.
type RegisterRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}
