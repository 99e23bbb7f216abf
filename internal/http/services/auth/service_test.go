package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
	"github.com/dropDatabas3/openfund/internal/http/services/tokenstore"
	jwtx "github.com/dropDatabas3/openfund/internal/jwt"
	"github.com/dropDatabas3/openfund/internal/security/password"
	"github.com/dropDatabas3/openfund/internal/security/tokencrypt"
	"github.com/dropDatabas3/openfund/internal/store/memory"
)

var testHashParams = password.Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

func newTestService(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	box, err := tokencrypt.New(strings.Repeat("v", 32))
	if err != nil {
		t.Fatal(err)
	}
	issuer, err := jwtx.NewProvider(jwtx.Options{
		Issuer:    "openfund-test",
		Audience:  "openfund-app",
		Key:       "test-signing-key-please-rotate",
		AccessTTL: time.Minute,
	})
	if err != nil {
		t.Fatal(err)
	}
	st := memory.New()
	vault := tokenstore.NewService(tokenstore.Deps{Tokens: st.Tokens(), Box: box, RefreshTTL: time.Hour})
	svc := NewService(Deps{
		Users:      st.Users(),
		Vault:      vault,
		Issuer:     issuer,
		HashParams: testHashParams,
	})
	return svc, st
}

func TestRegister_RoundTrip(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "  Alice@Mail.COM ", "P@ssw0rd1", "Alice")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if sess.User.Email != "alice@mail.com" {
		t.Fatalf("email must be normalized, got %q", sess.User.Email)
	}
	if sess.User.PasswordHash == nil || *sess.User.PasswordHash == "P@ssw0rd1" {
		t.Fatal("password must be stored hashed")
	}
	if sess.RefreshToken == "" {
		t.Fatal("session must carry a refresh token")
	}

	// El access token emitido se decodifica con el mismo provider.
	claims, err := svc.deps.Issuer.Decode(sess.AccessToken)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if claims.Subject != sess.User.ID || claims.Email != "alice@mail.com" || claims.Name != "Alice" {
		t.Fatalf("unexpected claims %+v", claims)
	}

	// El login inmediato con las mismas credenciales funciona.
	if _, err := svc.Login(ctx, "alice@mail.com", "P@ssw0rd1"); err != nil {
		t.Fatalf("Login after Register: %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		name, email, pass string
		want              error
	}{
		{"empty email", "", "P@ssw0rd1", ErrMissingFields},
		{"empty password", "a@b.com", "", ErrMissingFields},
		{"no at sign", "nomail", "P@ssw0rd1", ErrInvalidEmail},
		{"short password", "a@b.com", "short", ErrWeakPassword},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.email, tc.pass, "X"); err != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestRegister_DuplicateNoWrite(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, "dup@mail.com", "P@ssw0rd1", "First")
	if err != nil {
		t.Fatal(err)
	}

	// Mismo email con casing distinto.
	if _, err := svc.Register(ctx, "DUP@mail.com", "0therPass!", "Second"); err != ErrDuplicateAccount {
		t.Fatalf("duplicate register: got %v, want ErrDuplicateAccount", err)
	}

	// El usuario original queda intacto.
	u, err := st.Users().GetByEmail(ctx, "dup@mail.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != first.User.ID || u.DisplayName != "First" {
		t.Fatalf("original user must be untouched, got %+v", u)
	}
}

func TestLogin_Indistinguishable(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "carol@mail.com", "P@ssw0rd1", "Carol"); err != nil {
		t.Fatal(err)
	}
	// Cuenta solo-OAuth sin password.
	gid := "g-777"
	if err := st.Users().Create(ctx, &repository.User{
		ID:             "u-oauth",
		Email:          "oauth@mail.com",
		DisplayName:    "OAuth Only",
		GoogleID:       &gid,
		EmailConfirmed: true,
	}); err != nil {
		t.Fatal(err)
	}

	// Usuario inexistente, password incorrecto y cuenta sin password:
	// todos el mismo error.
	for _, tc := range []struct{ email, pass string }{
		{"ghost@mail.com", "P@ssw0rd1"},
		{"carol@mail.com", "wrong-pass"},
		{"oauth@mail.com", "P@ssw0rd1"},
	} {
		if _, err := svc.Login(ctx, tc.email, tc.pass); err != ErrInvalidCredentials {
			t.Errorf("Login(%q): got %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}

func TestLogin_SetsLastLogin(t *testing.T) {
	t.Parallel()
	svc, st := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dave@mail.com", "P@ssw0rd1", "Dave"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Login(ctx, "dave@mail.com", "P@ssw0rd1"); err != nil {
		t.Fatal(err)
	}
	u, err := st.Users().GetByEmail(ctx, "dave@mail.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.LastLoginAt == nil {
		t.Fatal("LastLoginAt must be set after login")
	}
}

func TestRefresh_RotatesToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	sess, err := svc.Register(ctx, "erin@mail.com", "P@ssw0rd1", "Erin")
	if err != nil {
		t.Fatal(err)
	}

	next, err := svc.Refresh(ctx, sess.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == sess.RefreshToken {
		t.Fatal("rotation must issue a new refresh token")
	}
	if next.User.ID != sess.User.ID {
		t.Fatal("rotated session must belong to the same user")
	}

	// El token anterior queda revocado.
	if _, err := svc.Refresh(ctx, sess.RefreshToken); err != ErrInvalidRefreshToken {
		t.Fatalf("reused token: got %v, want ErrInvalidRefreshToken", err)
	}
	// El nuevo sigue vivo.
	if _, err := svc.Refresh(ctx, next.RefreshToken); err != nil {
		t.Fatalf("fresh token must refresh: %v", err)
	}
}

func TestRefresh_UnknownToken(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, tok := range []string{"", "never-issued"} {
		if _, err := svc.Refresh(ctx, tok); err != ErrInvalidRefreshToken {
			t.Errorf("Refresh(%q): got %v, want ErrInvalidRefreshToken", tok, err)
		}
	}
}

func TestLogoutAll(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	s1, err := svc.Register(ctx, "frank@mail.com", "P@ssw0rd1", "Frank")
	if err != nil {
		t.Fatal(err)
	}
	s2, err := svc.Login(ctx, "frank@mail.com", "P@ssw0rd1")
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.LogoutAll(ctx, s1.User.ID); err != nil {
		t.Fatalf("LogoutAll: %v", err)
	}
	for _, tok := range []string{s1.RefreshToken, s2.RefreshToken} {
		if _, err := svc.Refresh(ctx, tok); err != ErrInvalidRefreshToken {
			t.Errorf("token after LogoutAll: got %v, want ErrInvalidRefreshToken", err)
		}
	}

	// Logout individual es idempotente.
	if err := svc.Logout(ctx, s1.RefreshToken); err != nil {
		t.Fatalf("Logout on revoked token must be a no-op, got %v", err)
	}
}
