package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/feedbackboard/internal/dependencies/clock"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/storage"
	"github.com/mcoot/feedbackboard/internal/storage/memory"
	"github.com/mcoot/feedbackboard/internal/storage/sqlstore"
	"github.com/mcoot/feedbackboard/internal/web"
	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// Storage type constants
const (
	StorageTypeMemory   = "memory"
	StorageTypeSQLite   = "sqlite"
	StorageTypePostgres = "postgres"
)

// Flash store type constants
const (
	FlashStoreCookie = "cookie"
	FlashStoreRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock clock.Clock

	// Services
	AuthService     *auth.Service
	FeedbackService *feedback.Service

	// Web state
	Sessions   *session.Manager
	FlashStore flash.Store

	logger  *slog.Logger
	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "sqlite" or "postgres")
	// If empty, defaults to "memory"
	StorageType string
	// SQLConfig holds database settings (required for sqlite and postgres)
	// The driver is taken from StorageType.
	SQLConfig sqlstore.Config
	// AutoMigrate creates the schema when a SQL store is opened
	AutoMigrate bool
	// SessionConfig holds session cookie settings. The secret is required.
	SessionConfig session.Config
	// FlashStoreType selects where flash messages are kept ("cookie" or "redis")
	// If empty, defaults to "cookie"
	FlashStoreType string
	// RedisConfig holds Redis settings (required if FlashStoreType is "redis")
	RedisConfig flash.RedisConfig
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	flashStore, err := openFlashStore(cfg)
	if err != nil {
		return nil, errors.Join(err, store.Close())
	}

	app, err := newWithDependencies(store, clock.New(), flashStore, cfg.AuthConfig, cfg.SessionConfig, logger)
	if err != nil {
		return nil, errors.Join(err, closeIfCloser(flashStore), store.Close())
	}
	if c, ok := flashStore.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}
	return app, nil
}

// OpenStorage opens only the configured store. Used by maintenance commands
// that do not serve requests.
func OpenStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return openStorage(ctx, cfg, logger)
}

func openStorage(ctx context.Context, cfg Config, logger *slog.Logger) (storage.Storage, error) {
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeSQLite, StorageTypePostgres:
		sqlCfg := cfg.SQLConfig
		sqlCfg.Driver = storageType
		sqlCfg.Logger = logger
		if sqlCfg.DSN == "" {
			return nil, fmt.Errorf("a database DSN is required when StorageType is %s", storageType)
		}
		store, err := sqlstore.New(sqlCfg)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, errors.Join(err, store.Close())
			}
			logger.Info("database schema migrated", slog.String("driver", storageType))
		}
		return store, nil
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'sqlite' or 'postgres'")
	}
}

func openFlashStore(cfg Config) (flash.Store, error) {
	switch cfg.FlashStoreType {
	case "", FlashStoreCookie:
		return flash.NewCookieStore(cfg.SessionConfig.Secure), nil
	case FlashStoreRedis:
		return flash.NewRedisStore(cfg.RedisConfig)
	default:
		return nil, errors.New("invalid FlashStoreType: must be 'cookie' or 'redis'")
	}
}

func closeIfCloser(v any) error {
	if c, ok := v.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	flashStore flash.Store,
	authCfg auth.Config,
	sessionCfg session.Config,
	logger *slog.Logger,
) (*App, error) {
	sessions, err := session.NewManager(sessionCfg, clk)
	if err != nil {
		return nil, err
	}

	return &App{
		Storage:         store,
		Clock:           clk,
		AuthService:     auth.New(store, clk, authCfg, logger),
		FeedbackService: feedback.New(store, clk, logger),
		Sessions:        sessions,
		FlashStore:      flashStore,
		logger:          logger,
	}, nil
}

// Handler returns the web router for the app. staticDir may be empty.
func (a *App) Handler(staticDir string) http.Handler {
	return web.NewRouter(web.RouterConfig{
		Logger:          a.logger,
		AuthService:     a.AuthService,
		FeedbackService: a.FeedbackService,
		Sessions:        a.Sessions,
		FlashStore:      a.FlashStore,
		StaticDir:       staticDir,
	})
}

// Close releases the flash store and storage connections
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	errs = append(errs, a.Storage.Close())
	return errors.Join(errs...)
}
