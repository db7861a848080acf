package sqlstore

import (
	"log/slog"
	"time"
)

// Supported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds relational database connection settings
type Config struct {
	// Driver selects the gorm dialector ("sqlite" or "postgres")
	Driver string

	// DSN is the driver-specific connection string, e.g.
	// "file:feedback.db?_foreign_keys=on" or "postgres://localhost/feedback"
	DSN string

	// Pool settings
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// LogQueries enables gorm's query log at info level
	LogQueries bool

	// Logger receives gorm's log output. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns sensible defaults for a local PostgreSQL database
func DefaultConfig() Config {
	return Config{
		Driver:          DriverPostgres,
		DSN:             "postgres://localhost:5432/feedback?sslmode=disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	}
}
