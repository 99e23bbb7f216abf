package social

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Endpoints de Google. YouTube usa la misma cuenta Google con scopes
// adicionales, por eso comparten exchanger.
const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// Scopes por provider.
var (
	GoogleScopes  = []string{"openid", "email", "profile"}
	YouTubeScopes = []string{"openid", "email", "profile",
		"https://www.googleapis.com/auth/youtube.readonly"}
)

// OAuthConfig son las credenciales del client OAuth registrado en Google.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// CodeExchanger implementa Exchanger contra los endpoints reales de
// Google: canjea el code por tokens y lee el perfil del userinfo.
type CodeExchanger struct {
	cfg    OAuthConfig
	client *http.Client
}

func NewCodeExchanger(cfg OAuthConfig) *CodeExchanger {
	return &CodeExchanger{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL arma la URL de autorización para iniciar el flujo.
// access_type=offline y prompt=consent fuerzan el refresh token.
func (e *CodeExchanger) AuthCodeURL(state string) string {
	q := url.Values{
		"client_id":     {e.cfg.ClientID},
		"redirect_uri":  {e.cfg.RedirectURL},
		"response_type": {"code"},
		"scope":         {strings.Join(e.cfg.Scopes, " ")},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return googleAuthURL + "?" + q.Encode()
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

type userInfoResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (e *CodeExchanger) Exchange(ctx context.Context, code string) (*UserInfo, error) {
	if code == "" {
		return nil, fmt.Errorf("social: empty authorization code")
	}

	form := url.Values{
		"code":          {code},
		"client_id":     {e.cfg.ClientID},
		"client_secret": {e.cfg.ClientSecret},
		"redirect_uri":  {e.cfg.RedirectURL},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("social: token exchange: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("social: token exchange: status %d", resp.StatusCode)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, fmt.Errorf("social: decode token response: %w", err)
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("social: token response without access token")
	}

	info, err := e.fetchUserInfo(ctx, tok.AccessToken)
	if err != nil {
		return nil, err
	}

	return &UserInfo{
		ProviderID:   info.ID,
		Email:        info.Email,
		Name:         info.Name,
		Avatar:       info.Picture,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}, nil
}

func (e *CodeExchanger) fetchUserInfo(ctx context.Context, accessToken string) (*userInfoResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("social: fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("social: fetch userinfo: status %d", resp.StatusCode)
	}

	var info userInfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("social: decode userinfo: %w", err)
	}
	return &info, nil
}
