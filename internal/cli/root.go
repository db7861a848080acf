// Package cli implements the feedbackboard command line: serve, migrate, seed
// and health.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mcoot/feedbackboard/internal/config"
	"github.com/mcoot/feedbackboard/internal/factory"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/session"
	"github.com/mcoot/feedbackboard/internal/storage/sqlstore"
	"github.com/mcoot/feedbackboard/internal/web/flash"
)

// env is the state shared by all subcommands once the config is loaded
type env struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	logger     *slog.Logger
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	e := &env{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "feedbackboard",
		Short: "A small feedback board web application",
		Long: `feedbackboard serves a web application where registered users post,
edit and delete feedback. Configuration comes from flags, FEEDBACK_*
environment variables and an optional feedbackboard.yaml file.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.v, e.configFile)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = newLogger(cmd.OutOrStdout(), cfg.LogLevel, cfg.LogFormat)
			slog.SetDefault(e.logger)
			return nil
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&e.configFile, "config", "", "Config file path (default ./feedbackboard.yaml)")
	flags.String("env", "development", "Environment name (env: FEEDBACK_ENV)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error (env: FEEDBACK_LOG_LEVEL)")
	flags.String("log-format", "json", "Log format: json, text (env: FEEDBACK_LOG_FORMAT)")
	flags.String("storage", "memory", "Storage backend: memory, sqlite, postgres (env: FEEDBACK_STORAGE)")
	flags.String("database-url", "", "Database DSN for sqlite or postgres (env: FEEDBACK_DATABASE_URL)")
	bindFlags(e.v, flags, map[string]string{
		"env":          "env",
		"log_level":    "log-level",
		"log_format":   "log-format",
		"storage":      "storage",
		"database_url": "database-url",
	})

	// Add subcommands
	rootCmd.AddCommand(newServeCmd(e))
	rootCmd.AddCommand(newMigrateCmd(e))
	rootCmd.AddCommand(newSeedCmd(e))
	rootCmd.AddCommand(newHealthCmd(e))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// factoryConfig maps the loaded configuration onto the application factory
func (e *env) factoryConfig() factory.Config {
	sqlCfg := sqlstore.DefaultConfig()
	sqlCfg.DSN = e.cfg.DatabaseURL
	sqlCfg.LogQueries = e.cfg.LogLevel == "debug"

	sessionCfg := session.DefaultConfig()
	sessionCfg.Secret = e.cfg.SessionSecret
	sessionCfg.TTL = e.cfg.SessionTTL
	sessionCfg.Secure = e.cfg.SecureCookies

	redisCfg := flash.DefaultRedisConfig()
	redisCfg.URL = e.cfg.RedisURL
	redisCfg.Secure = e.cfg.SecureCookies

	return factory.Config{
		Logger:         e.logger,
		StorageType:    e.cfg.Storage,
		SQLConfig:      sqlCfg,
		AutoMigrate:    e.cfg.AutoMigrate,
		SessionConfig:  sessionCfg,
		FlashStoreType: e.cfg.FlashStore,
		RedisConfig:    redisCfg,
		AuthConfig:     auth.Config{BcryptCost: e.cfg.BcryptCost},
	}
}
