package social

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dropDatabas3/openfund/internal/domain/repository"
	"github.com/dropDatabas3/openfund/internal/http/services/tokenstore"
	jwtx "github.com/dropDatabas3/openfund/internal/jwt"
	"github.com/dropDatabas3/openfund/internal/security/tokencrypt"
	"github.com/dropDatabas3/openfund/internal/store/memory"
)

// fakeExchanger devuelve una identidad fija o un error.
type fakeExchanger struct {
	info *UserInfo
	err  error
}

func (f *fakeExchanger) Exchange(_ context.Context, _ string) (*UserInfo, error) {
	return f.info, f.err
}

func newDeps(t *testing.T, ex Exchanger) (Deps, *memory.Store, *tokenstore.Service) {
	t.Helper()
	box, err := tokencrypt.New(strings.Repeat("s", 32))
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
	return Deps{Users: st.Users(), Vault: vault, Issuer: issuer, Exchanger: ex}, st, vault
}

func TestGoogle_CreatesConfirmedUser(t *testing.T) {
	t.Parallel()
	deps, st, vault := newDeps(t, &fakeExchanger{info: &UserInfo{
		ProviderID:   "g-1",
		Email:        "Bob@Mail.com",
		Name:         "Bob",
		Avatar:       "https://img/avatar.png",
		AccessToken:  "g-access",
		RefreshToken: "g-refresh",
	}})
	svc := NewGoogleService(deps)
	ctx := context.Background()

	res, err := svc.HandleCallback(ctx, "code-1")
	if err != nil {
		t.Fatalf("HandleCallback: %v", err)
	}
	if !res.Success {
		t.Fatalf("callback rejected: %q", res.Reason)
	}

	u, err := st.Users().GetByEmail(ctx, "bob@mail.com")
	if err != nil {
		t.Fatalf("user not created: %v", err)
	}
	if !u.EmailConfirmed {
		t.Fatal("google-created user must have confirmed email")
	}
	if u.GoogleID == nil || *u.GoogleID != "g-1" {
		t.Fatalf("google id not linked: %+v", u.GoogleID)
	}
	if u.IsCreator {
		t.Fatal("google flow must not grant creator")
	}
	if u.Avatar == nil || *u.Avatar != "https://img/avatar.png" {
		t.Fatal("avatar not stored")
	}
	if u.PasswordHash != nil {
		t.Fatal("oauth-created user must have no password")
	}

	// El refresh token quedó en el vault con los slots de Google llenos
	// y cifrados.
	rec, err := vault.GetActiveRefreshToken(ctx, res.RefreshToken)
	if err != nil || rec == nil {
		t.Fatalf("refresh token not in vault: %v %v", rec, err)
	}
	if rec.GoogleAccessToken == nil || *rec.GoogleAccessToken == "g-access" {
		t.Fatal("google access token must be stored encrypted")
	}
	if rec.YoutubeAccessToken != nil || rec.YoutubeRefreshToken != nil {
		t.Fatal("youtube slots must stay nil in google flow")
	}
	got, err := vault.Decrypt(*rec.GoogleAccessToken)
	if err != nil || got != "g-access" {
		t.Fatalf("decrypt google slot: %q %v", got, err)
	}
}

func TestGoogle_UpdatesExistingUser(t *testing.T) {
	t.Parallel()
	deps, st, _ := newDeps(t, &fakeExchanger{info: &UserInfo{
		ProviderID: "g-2",
		Email:      "carol@mail.com",
		Name:       "Provider Name",
		Avatar:     "https://img/new.png",
	}})
	svc := NewGoogleService(deps)
	ctx := context.Background()

	phc := "$argon2id$..."
	oldID := "g-old"
	if err := st.Users().Create(ctx, &repository.User{
		ID:           "u-carol",
		Email:        "carol@mail.com",
		DisplayName:  "Local Name",
		GoogleID:     &oldID,
		PasswordHash: &phc,
	}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.HandleCallback(ctx, "code-2")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("callback rejected: %q", res.Reason)
	}

	u, _ := st.Users().GetByID(ctx, "u-carol")
	// El claim pisa el id externo anterior.
	if u.GoogleID == nil || *u.GoogleID != "g-2" {
		t.Fatalf("google id must be updated from the claim, got %v", u.GoogleID)
	}
	// El nombre del provider gana cuando el claim trae uno.
	if u.DisplayName != "Provider Name" {
		t.Fatalf("provider name must win when present, got %q", u.DisplayName)
	}
	if u.Avatar == nil || *u.Avatar != "https://img/new.png" {
		t.Fatal("avatar must be refreshed")
	}
	if u.LastLoginAt == nil {
		t.Fatal("LastLoginAt must be set")
	}
	// El update no confirma email por sí solo.
	if u.EmailConfirmed {
		t.Fatal("update must not flip EmailConfirmed")
	}
	// La cuenta conserva su password.
	if u.PasswordHash == nil || *u.PasswordHash != phc {
		t.Fatal("password must be untouched")
	}
}

func TestGoogle_KeepsLocalNameWhenClaimOmitsIt(t *testing.T) {
	t.Parallel()
	deps, st, _ := newDeps(t, &fakeExchanger{info: &UserInfo{
		ProviderID: "g-3",
		Email:      "named@mail.com",
	}})
	svc := NewGoogleService(deps)
	ctx := context.Background()

	if err := st.Users().Create(ctx, &repository.User{
		ID:          "u-named",
		Email:       "named@mail.com",
		DisplayName: "Keep Me",
	}); err != nil {
		t.Fatal(err)
	}

	if res, err := svc.HandleCallback(ctx, "code-3"); err != nil || !res.Success {
		t.Fatalf("callback: %+v %v", res, err)
	}
	u, _ := st.Users().GetByID(ctx, "u-named")
	if u.DisplayName != "Keep Me" {
		t.Fatalf("local name must survive a claim without name, got %q", u.DisplayName)
	}
}

func TestGoogle_RejectionReasons(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	// Intercambio fallido.
	deps, _, _ := newDeps(t, &fakeExchanger{err: fmt.Errorf("provider says no")})
	res, err := NewGoogleService(deps).HandleCallback(ctx, "bad-code")
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.Reason != ReasonAuthFailed {
		t.Fatalf("got %+v, want %q", res, ReasonAuthFailed)
	}

	// Identidad sin email.
	deps2, _, _ := newDeps(t, &fakeExchanger{info: &UserInfo{ProviderID: "g-4"}})
	res, err = NewGoogleService(deps2).HandleCallback(ctx, "code")
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.Reason != ReasonMissingClaims {
		t.Fatalf("got %+v, want %q", res, ReasonMissingClaims)
	}
}

func TestYouTube_GrantsCreator(t *testing.T) {
	t.Parallel()
	deps, st, vault := newDeps(t, &fakeExchanger{info: &UserInfo{
		ProviderID:   "g-5",
		Email:        "creator@mail.com",
		Name:         "Creator",
		AccessToken:  "yt-access",
		RefreshToken: "yt-refresh",
	}})
	svc := NewYouTubeService(deps)
	ctx := context.Background()

	if err := st.Users().Create(ctx, &repository.User{
		ID:          "u-creator",
		Email:       "creator@mail.com",
		DisplayName: "Creator",
	}); err != nil {
		t.Fatal(err)
	}

	res, err := svc.HandleCallback(ctx, "code-5")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Fatalf("callback rejected: %q", res.Reason)
	}

	u, _ := st.Users().GetByID(ctx, "u-creator")
	if !u.IsCreator {
		t.Fatal("youtube flow must grant creator")
	}

	// Tokens del provider en los slots de YouTube.
	rec, err := vault.GetActiveRefreshToken(ctx, res.RefreshToken)
	if err != nil || rec == nil {
		t.Fatalf("refresh token not in vault: %v %v", rec, err)
	}
	if rec.YoutubeAccessToken == nil || rec.YoutubeRefreshToken == nil {
		t.Fatal("youtube slots must be filled")
	}
	if rec.GoogleAccessToken != nil || rec.GoogleRefreshToken != nil {
		t.Fatal("google slots must stay nil in youtube flow")
	}
}

func TestYouTube_CreateRejectedNeedsGoogleFirst(t *testing.T) {
	t.Parallel()
	deps, st, _ := newDeps(t, &fakeExchanger{info: &UserInfo{
		ProviderID: "g-6",
		Email:      "newcomer@mail.com",
		Name:       "Newcomer",
	}})
	svc := NewYouTubeService(deps)
	ctx := context.Background()

	// El store rechaza la creación.
	st.FailCreateUser = true

	res, err := svc.HandleCallback(ctx, "code-6")
	if err != nil {
		t.Fatal(err)
	}
	if res.Success || res.Reason != ReasonSignInWithGoogle {
		t.Fatalf("got %+v, want %q", res, ReasonSignInWithGoogle)
	}
}

func TestGoogle_DoesNotDowngradeCreator(t *testing.T) {
	t.Parallel()
	deps, st, _ := newDeps(t, &fakeExchanger{info: &UserInfo{
		ProviderID: "g-7",
		Email:      "both@mail.com",
		Name:       "Both",
	}})
	ctx := context.Background()

	if err := st.Users().Create(ctx, &repository.User{
		ID:          "u-both",
		Email:       "both@mail.com",
		DisplayName: "Both",
		IsCreator:   true,
	}); err != nil {
		t.Fatal(err)
	}

	if res, err := NewGoogleService(deps).HandleCallback(ctx, "code-7"); err != nil || !res.Success {
		t.Fatalf("callback: %+v %v", res, err)
	}
	u, _ := st.Users().GetByID(ctx, "u-both")
	if !u.IsCreator {
		t.Fatal("google login must not revoke creator")
	}
}
