package repository

import (
	"context"
	"time"
)

// User representa una cuenta del sistema.
//
// PasswordHash es nil para cuentas creadas solo por OAuth.
// GoogleID, cuando existe, es único entre usuarios.
type User struct {
	ID             string
	Email          string // normalizado (trim + lowercase), único
	DisplayName    string
	PasswordHash   *string
	GoogleID       *string
	Avatar         *string
	IsCreator      bool
	EmailConfirmed bool
	CreatedAt      time.Time
	LastLoginAt    *time.Time
}

// UserRepository define operaciones sobre usuarios.
type UserRepository interface {
	// GetByEmail busca un usuario por email normalizado.
	// Retorna ErrNotFound si no existe.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// GetByID busca un usuario por ID.
	// Retorna ErrNotFound si no existe.
	GetByID(ctx context.Context, userID string) (*User, error)

	// Create persiste un usuario nuevo.
	// Retorna ErrConflict si el email o google_id ya existen; el constraint
	// del store resuelve la carrera de registros simultáneos.
	Create(ctx context.Context, u *User) error

	// Update persiste los campos mutables de un usuario existente
	// (google_id, avatar, display_name, is_creator, last_login_at).
	Update(ctx context.Context, u *User) error
}
