package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
)

func testProvider(t *testing.T, ttl time.Duration) *Provider {
	t.Helper()
	p, err := NewProvider(Options{
		Issuer:    "https://auth.openfund.test",
		Audience:  "openfund-web",
		Key:       "una-clave-simetrica-de-prueba-larga",
		AccessTTL: ttl,
	})
	if err != nil {
		t.Fatalf("NewProvider err: %v", err)
	}
	return p
}

func testUser() *repository.User {
	return &repository.User{
		ID:          "7f9c24e5-2f14-4b35-9c2b-b3f2f8f0c001",
		Email:       "alice@mail.com",
		DisplayName: "Alice",
	}
}

func TestCreateDecode_RoundTrip(t *testing.T) {
	t.Parallel()
	p := testProvider(t, time.Hour)

	token, exp, err := p.Create(testUser())
	if err != nil {
		t.Fatalf("Create err: %v", err)
	}
	if got := time.Until(exp); got < 59*time.Minute || got > 61*time.Minute {
		t.Fatalf("expiry not ~1h out: %v", got)
	}

	claims, err := p.Decode(token)
	if err != nil {
		t.Fatalf("Decode err: %v", err)
	}
	if claims.Subject != testUser().ID {
		t.Fatalf("sub mismatch: %q", claims.Subject)
	}
	if claims.Email != "alice@mail.com" || claims.Name != "Alice" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestDecode_WrongKey(t *testing.T) {
	t.Parallel()
	p := testProvider(t, time.Hour)
	other, _ := NewProvider(Options{
		Issuer:    "https://auth.openfund.test",
		Audience:  "openfund-web",
		Key:       "otra-clave-distinta-a-la-original!",
		AccessTTL: time.Hour,
	})

	token, _, err := p.Create(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := other.Decode(token); err == nil {
		t.Fatalf("expected signature validation failure")
	}
}

func TestDecode_WrongIssuerOrAudience(t *testing.T) {
	t.Parallel()
	p := testProvider(t, time.Hour)
	other, _ := NewProvider(Options{
		Issuer:    "https://evil.test",
		Audience:  "openfund-web",
		Key:       "una-clave-simetrica-de-prueba-larga",
		AccessTTL: time.Hour,
	})

	token, _, err := other.Create(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Decode(token); err == nil {
		t.Fatalf("expected issuer validation failure")
	}
}

func TestNewProvider_ZeroTTLDefaults(t *testing.T) {
	t.Parallel()
	p := testProvider(t, 0)

	_, exp, err := p.Create(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if got := time.Until(exp); got < 59*time.Minute || got > 61*time.Minute {
		t.Fatalf("zero TTL must default to 60m, got %v", got)
	}
}

func TestDecode_Expired(t *testing.T) {
	t.Parallel()
	p := testProvider(t, -time.Minute)

	token, _, err := p.Create(testUser())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Decode(token); err != ErrTokenExpired {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestDecode_Garbage(t *testing.T) {
	t.Parallel()
	p := testProvider(t, time.Hour)
	if _, err := p.Decode("ni.siquiera.jwt"); err == nil {
		t.Fatalf("expected error for garbage token")
	}
}

func TestGenerateRefreshToken_Opaque(t *testing.T) {
	t.Parallel()
	p := testProvider(t, time.Hour)

	a, err := p.GenerateRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.GenerateRefreshToken()
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("refresh tokens must never repeat")
	}
	if strings.Contains(a, ".") {
		t.Fatalf("refresh token must be opaque, got JWT-looking string")
	}
}
