package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | staging | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxConns        int    `yaml:"max_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	JWT struct {
		Issuer    string `yaml:"issuer"`
		Audience  string `yaml:"audience"`
		Key       string `yaml:"key"` // clave simétrica HS256
		AccessTTL string `yaml:"access_ttl"`
	} `yaml:"jwt"`

	Vault struct {
		// EncryptionKey cifra los refresh tokens en reposo (32 bytes, base64 o raw).
		EncryptionKey string `yaml:"encryption_key"`
		RefreshTTL    string `yaml:"refresh_ttl"`
	} `yaml:"vault"`

	Rate struct {
		Enabled bool `yaml:"enabled"`
		// memory | redis
		Backend string `yaml:"backend"`
		Redis   struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
		Login struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"login"`
		Register struct {
			Limit  int    `yaml:"limit"`
			Window string `yaml:"window"`
		} `yaml:"register"`
	} `yaml:"rate"`

	OAuth struct {
		Google struct {
			ClientID     string `yaml:"client_id"`
			ClientSecret string `yaml:"client_secret"`
			// RedirectBase es la URL pública del servicio; los callbacks
			// se arman como {base}/auth/{provider}/callback.
			RedirectBase string `yaml:"redirect_base"`
		} `yaml:"google"`
	} `yaml:"oauth"`

	Frontend struct {
		// BaseURL al que redirigen los callbacks OAuth (success/error).
		BaseURL string `yaml:"base_url"`
	} `yaml:"frontend"`
}

// SocialEnabled indica si el login social está configurado.
func (c *Config) SocialEnabled() bool {
	return strings.TrimSpace(c.OAuth.Google.ClientID) != ""
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	// sane defaults
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "memory"
	}
	if c.Storage.Postgres.MaxConns == 0 {
		c.Storage.Postgres.MaxConns = 10
	}
	if c.JWT.AccessTTL == "" {
		c.JWT.AccessTTL = "60m"
	}
	if c.Vault.RefreshTTL == "" {
		c.Vault.RefreshTTL = "720h" // 30d
	}
	if c.Rate.Backend == "" {
		c.Rate.Backend = "memory"
	}
	if c.Rate.Login.Limit == 0 {
		c.Rate.Login.Limit = 10
	}
	if c.Rate.Login.Window == "" {
		c.Rate.Login.Window = "1m"
	}
	if c.Rate.Register.Limit == 0 {
		c.Rate.Register.Limit = 5
	}
	if c.Rate.Register.Window == "" {
		c.Rate.Register.Window = "10m"
	}

	// validate string durations
	for _, d := range []string{
		c.JWT.AccessTTL, c.Vault.RefreshTTL,
		c.Rate.Login.Window, c.Rate.Register.Window,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			return nil, err
		}
	}
	if c.Storage.Postgres.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(c.Storage.Postgres.ConnMaxLifetime); err != nil {
			return nil, err
		}
	}

	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// AccessTTL retorna la duración ya parseada del access token.
func (c *Config) AccessTTL() time.Duration {
	d, _ := time.ParseDuration(c.JWT.AccessTTL)
	return d
}

// RefreshTTL retorna la duración ya parseada del refresh token.
func (c *Config) RefreshTTL() time.Duration {
	d, _ := time.ParseDuration(c.Vault.RefreshTTL)
	return d
}

// LoginWindow retorna la ventana de rate limit de login ya parseada.
func (c *Config) LoginWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Login.Window)
	return d
}

// RegisterWindow retorna la ventana de rate limit de registro ya parseada.
func (c *Config) RegisterWindow() time.Duration {
	d, _ := time.ParseDuration(c.Rate.Register.Window)
	return d
}

// Validate chequea la configuración mínima para arrancar.
// Una clave de firma o cifrado ausente es fatal: el servicio no debe
// arrancar con tokens imposibles de firmar o descifrar.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.JWT.Key) == "" {
		return fmt.Errorf("config: jwt.key requerido (env OPENFUND_JWT_KEY)")
	}
	if strings.TrimSpace(c.JWT.Issuer) == "" {
		return fmt.Errorf("config: jwt.issuer requerido")
	}
	if strings.TrimSpace(c.JWT.Audience) == "" {
		return fmt.Errorf("config: jwt.audience requerido")
	}
	if strings.TrimSpace(c.Vault.EncryptionKey) == "" {
		return fmt.Errorf("config: vault.encryption_key requerida (env OPENFUND_VAULT_KEY)")
	}
	if c.Storage.Driver == "postgres" && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("config: storage.dsn requerido con driver postgres")
	}
	return nil
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := os.Getenv(key)
	return v, v != ""
}

func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return i, true
		}
	}
	return 0, false
}

func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return false, false
}

func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}

// applyEnvOverrides: pisa config.yaml con variables de entorno OPENFUND_*.
func (c *Config) applyEnvOverrides() {
	if v, ok := getEnvStr("OPENFUND_APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("OPENFUND_LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}
	if v, ok := getEnvStr("OPENFUND_SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("OPENFUND_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}
	if v, ok := getEnvStr("OPENFUND_STORAGE_DRIVER"); ok {
		c.Storage.Driver = v
	}
	if v, ok := getEnvStr("OPENFUND_STORAGE_DSN"); ok {
		c.Storage.DSN = v
	}
	if v, ok := getEnvStr("OPENFUND_JWT_ISSUER"); ok {
		c.JWT.Issuer = v
	}
	if v, ok := getEnvStr("OPENFUND_JWT_AUDIENCE"); ok {
		c.JWT.Audience = v
	}
	if v, ok := getEnvStr("OPENFUND_JWT_KEY"); ok {
		c.JWT.Key = v
	}
	if v, ok := getEnvStr("OPENFUND_JWT_ACCESS_TTL"); ok {
		c.JWT.AccessTTL = v
	}
	if v, ok := getEnvStr("OPENFUND_VAULT_KEY"); ok {
		c.Vault.EncryptionKey = v
	}
	if v, ok := getEnvStr("OPENFUND_VAULT_REFRESH_TTL"); ok {
		c.Vault.RefreshTTL = v
	}
	if v, ok := getEnvBool("OPENFUND_RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("OPENFUND_RATE_BACKEND"); ok {
		c.Rate.Backend = v
	}
	if v, ok := getEnvStr("OPENFUND_RATE_REDIS_ADDR"); ok {
		c.Rate.Redis.Addr = v
	}
	if v, ok := getEnvInt("OPENFUND_RATE_REDIS_DB"); ok {
		c.Rate.Redis.DB = v
	}
	if v, ok := getEnvStr("OPENFUND_GOOGLE_CLIENT_ID"); ok {
		c.OAuth.Google.ClientID = v
	}
	if v, ok := getEnvStr("OPENFUND_GOOGLE_CLIENT_SECRET"); ok {
		c.OAuth.Google.ClientSecret = v
	}
	if v, ok := getEnvStr("OPENFUND_OAUTH_REDIRECT_BASE"); ok {
		c.OAuth.Google.RedirectBase = v
	}
	if v, ok := getEnvStr("OPENFUND_FRONTEND_URL"); ok {
		c.Frontend.BaseURL = v
	}
}
