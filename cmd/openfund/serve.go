package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	rdb "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/openfund/internal/config"
	"github.com/dropDatabas3/openfund/internal/domain/repository"
	authctrl "github.com/dropDatabas3/openfund/internal/http/controllers/auth"
	socialctrl "github.com/dropDatabas3/openfund/internal/http/controllers/social"
	mw "github.com/dropDatabas3/openfund/internal/http/middlewares"
	"github.com/dropDatabas3/openfund/internal/http/router"
	authsvc "github.com/dropDatabas3/openfund/internal/http/services/auth"
	socialsvc "github.com/dropDatabas3/openfund/internal/http/services/social"
	"github.com/dropDatabas3/openfund/internal/http/services/tokenstore"
	jwtx "github.com/dropDatabas3/openfund/internal/jwt"
	"github.com/dropDatabas3/openfund/internal/metrics"
	"github.com/dropDatabas3/openfund/internal/observability/logger"
	"github.com/dropDatabas3/openfund/internal/rate"
	"github.com/dropDatabas3/openfund/internal/security/password"
	"github.com/dropDatabas3/openfund/internal/security/tokencrypt"
	"github.com/dropDatabas3/openfund/internal/store/memory"
	"github.com/dropDatabas3/openfund/internal/store/pg"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Levanta el servidor HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return fmt.Errorf("config load: %w", err)
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.App.LogLevel,
		ServiceName: "openfund",
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	if err := metrics.RegisterAuth(nil); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// Crypto y emisión de tokens
	box, err := tokencrypt.New(cfg.Vault.EncryptionKey)
	if err != nil {
		return err
	}
	issuer, err := jwtx.NewProvider(jwtx.Options{
		Issuer:    cfg.JWT.Issuer,
		Audience:  cfg.JWT.Audience,
		Key:       cfg.JWT.Key,
		AccessTTL: cfg.AccessTTL(),
	})
	if err != nil {
		return err
	}

	// Storage
	var (
		users  repository.UserRepository
		tokens repository.TokenRepository
	)
	switch cfg.Storage.Driver {
	case "postgres":
		pool, perr := newPool(ctx, cfg)
		if perr != nil {
			return perr
		}
		defer pool.Close()
		users = pg.NewUserRepo(pool)
		tokens = pg.NewTokenRepo(pool)
		log.Info("storage ready", logger.Component("pg"))
	default:
		st := memory.New()
		users = st.Users()
		tokens = st.Tokens()
		log.Warn("using in-memory storage, data is volatile")
	}

	// Services
	vault := tokenstore.NewService(tokenstore.Deps{
		Tokens:     tokens,
		Box:        box,
		RefreshTTL: cfg.RefreshTTL(),
	})
	auth := authsvc.NewService(authsvc.Deps{
		Users:      users,
		Vault:      vault,
		Issuer:     issuer,
		HashParams: password.Default,
	})

	var social *socialctrl.Controller
	if cfg.SocialEnabled() {
		mkProvider := func(path string, scopes []string, ctor func(socialsvc.Deps) *socialsvc.Service) socialctrl.Provider {
			ex := socialsvc.NewCodeExchanger(socialsvc.OAuthConfig{
				ClientID:     cfg.OAuth.Google.ClientID,
				ClientSecret: cfg.OAuth.Google.ClientSecret,
				RedirectURL:  cfg.OAuth.Google.RedirectBase + path,
				Scopes:       scopes,
			})
			return socialctrl.Provider{
				Service: ctor(socialsvc.Deps{
					Users:     users,
					Vault:     vault,
					Issuer:    issuer,
					Exchanger: ex,
				}),
				AuthURL: ex,
			}
		}
		social = socialctrl.NewController(
			mkProvider("/auth/google/callback", socialsvc.GoogleScopes, socialsvc.NewGoogleService),
			mkProvider("/auth/youtube/callback", socialsvc.YouTubeScopes, socialsvc.NewYouTubeService),
			cfg.Frontend.BaseURL,
		)
	} else {
		log.Info("social login disabled, no google client configured")
	}

	// Rate limiting
	var loginLimiter, registerLimiter rate.Limiter
	if cfg.Rate.Enabled {
		if cfg.Rate.Backend == "redis" {
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			loginLimiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.Login.Limit, cfg.LoginWindow())
			registerLimiter = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.Register.Limit, cfg.RegisterWindow())
		} else {
			loginLimiter = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, cfg.LoginWindow())
			registerLimiter = rate.NewMemoryLimiter(cfg.Rate.Register.Limit, cfg.RegisterWindow())
		}
	}

	handler := router.New(router.Deps{
		AuthControllers:    authctrl.NewControllers(auth),
		SocialController:   social,
		AuthMiddleware:     mw.WithAuth(issuer),
		LoginLimiter:       loginLimiter,
		RegisterLimiter:    registerLimiter,
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", logger.Path(cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pcfg.MaxConns = int32(cfg.Storage.Postgres.MaxConns)
	if cfg.Storage.Postgres.ConnMaxLifetime != "" {
		d, _ := time.ParseDuration(cfg.Storage.Postgres.ConnMaxLifetime)
		pcfg.MaxConnLifetime = d
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return pool, nil
}
