// Package memory implementa los repositorios de dominio en memoria.
//
// Pensado para desarrollo y tests de services. Replica la semántica del
// adapter de PostgreSQL: ErrConflict por unicidad de email/google_id,
// ErrNotFound para tokens revocados/expirados/inexistentes.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
)

// Store agrupa ambos repos sobre el mismo mutex.
type Store struct {
	mu     sync.RWMutex
	users  map[string]*repository.User         // por ID
	emails map[string]string                   // email normalizado -> ID
	google map[string]string                   // google_id -> ID
	tokens map[string]*repository.RefreshToken // por ID

	// FailCreateUser fuerza el fallo del próximo Create (solo tests:
	// simula el rechazo del store en el flujo creator).
	FailCreateUser bool
}

func New() *Store {
	return &Store{
		users:  map[string]*repository.User{},
		emails: map[string]string{},
		google: map[string]string{},
		tokens: map[string]*repository.RefreshToken{},
	}
}

// Users retorna la vista UserRepository del store.
func (s *Store) Users() repository.UserRepository { return (*userRepo)(s) }

// Tokens retorna la vista TokenRepository del store.
func (s *Store) Tokens() repository.TokenRepository { return (*tokenRepo)(s) }

func cloneUser(u *repository.User) *repository.User {
	c := *u
	return &c
}

func cloneToken(t *repository.RefreshToken) *repository.RefreshToken {
	c := *t
	return &c
}

// ─── UserRepository ───

type userRepo Store

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(r.users[id]), nil
}

func (r *userRepo) GetByID(ctx context.Context, userID string) (*repository.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) Create(ctx context.Context, u *repository.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreateUser {
		r.FailCreateUser = false
		return repository.ErrConflict
	}
	if _, dup := r.emails[u.Email]; dup {
		return repository.ErrConflict
	}
	if u.GoogleID != nil {
		if _, dup := r.google[*u.GoogleID]; dup {
			return repository.ErrConflict
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	r.users[u.ID] = cloneUser(u)
	r.emails[u.Email] = u.ID
	if u.GoogleID != nil {
		r.google[*u.GoogleID] = u.ID
	}
	return nil
}

func (r *userRepo) Update(ctx context.Context, u *repository.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, ok := r.users[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if u.GoogleID != nil {
		if owner, dup := r.google[*u.GoogleID]; dup && owner != u.ID {
			return repository.ErrConflict
		}
	}
	if prev.GoogleID != nil {
		delete(r.google, *prev.GoogleID)
	}
	r.users[u.ID] = cloneUser(u)
	if u.GoogleID != nil {
		r.google[*u.GoogleID] = u.ID
	}
	return nil
}

// ─── TokenRepository ───

type tokenRepo Store

func (r *tokenRepo) Create(ctx context.Context, t *repository.RefreshToken) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	r.tokens[t.ID] = cloneToken(t)
	return nil
}

func (r *tokenRepo) GetActiveByToken(ctx context.Context, ciphertext string, now time.Time) (*repository.RefreshToken, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.tokens {
		if t.Token == ciphertext && !t.Revoked && t.ExpiresAt.After(now) {
			return cloneToken(t), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *tokenRepo) RevokeByToken(ctx context.Context, ciphertext string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tokens {
		if t.Token == ciphertext {
			t.Revoked = true
		}
	}
	return nil
}

func (r *tokenRepo) RevokeAllByUser(ctx context.Context, userID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.tokens {
		if t.UserID == userID && !t.Revoked {
			t.Revoked = true
			n++
		}
	}
	return n, nil
}
