package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/ldaehi0205/go-board-backend/internal/app"
	"github.com/ldaehi0205/go-board-backend/internal/config"
	"github.com/ldaehi0205/go-board-backend/internal/database"
	"github.com/ldaehi0205/go-board-backend/internal/http/handler"
	"github.com/ldaehi0205/go-board-backend/internal/http/middleware"
	"github.com/ldaehi0205/go-board-backend/internal/http/router"
	"github.com/ldaehi0205/go-board-backend/internal/observability"
	"github.com/ldaehi0205/go-board-backend/internal/repository"
	"github.com/ldaehi0205/go-board-backend/internal/security"
	"github.com/ldaehi0205/go-board-backend/internal/service"
)

var ConfigSet = wire.NewSet(provideConfig)

var ObservabilitySet = wire.NewSet(provideLogger, provideObservabilityRuntime)

var RuntimeInfraSet = wire.NewSet(provideOpenDB)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewRefreshTokenRepository,
)

var SecuritySet = wire.NewSet(provideTokenCodec, provideCookieManager)

var ServiceSet = wire.NewSet(provideAuthService)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	provideAuthLimiter,
	provideRouterDependencies,
	router.New,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

func provideConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func provideLogger(cfg *config.Config) *slog.Logger {
	return observability.NewLogger(cfg)
}

func provideObservabilityRuntime(cfg *config.Config, logger *slog.Logger) (*observability.Runtime, error) {
	return observability.InitRuntime(context.Background(), cfg, logger)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideTokenCodec(cfg *config.Config) *security.TokenCodec {
	return security.NewTokenCodec(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL)
}

func provideCookieManager(cfg *config.Config) *security.CookieManager {
	return security.NewCookieManager(cfg.CookieSecure, cfg.CookieSameSite)
}

func provideAuthService(
	users repository.UserRepository,
	tokens repository.RefreshTokenRepository,
	codec *security.TokenCodec,
	cfg *config.Config,
) *service.AuthService {
	return service.NewAuthService(users, tokens, codec, cfg.RefreshIdleWindow, cfg.RefreshAbsoluteWindow)
}

// provideAuthLimiter picks the distributed limiter when Redis is
// configured and falls back to the in-process one otherwise. The Redis
// path fails open: a dead broker must not take logins down with it.
func provideAuthLimiter(cfg *config.Config) (middleware.Limiter, middleware.FailureMode) {
	if cfg.RedisAddr == "" {
		return middleware.NewLocalFixedWindowLimiter(), middleware.FailClosed
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	return middleware.NewRedisFixedWindowLimiter(client, "go-board:rl"), middleware.FailOpen
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	codec *security.TokenCodec,
	limiter middleware.Limiter,
	mode middleware.FailureMode,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		TokenCodec:       codec,
		AuthLimiter:      limiter,
		AuthRateLimitRPM: cfg.AuthRateLimitPerMin,
		LimiterMode:      mode,
	}
}

func provideHTTPServer(cfg *config.Config, h *chi.Mux) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

// MigrationRunner applies the schema and exits; used by the migrate
// subcommand so deploys can run migrations separately from serving.
type MigrationRunner struct {
	db *gorm.DB
}

func NewMigrationRunner(db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

func (m *MigrationRunner) Run() error {
	return database.Migrate(m.db)
}
