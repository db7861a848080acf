package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mcoot/feedbackboard/internal/factory"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Storage == factory.StorageTypeMemory {
				return fmt.Errorf("nothing to migrate: storage is %s", e.cfg.Storage)
			}

			fcfg := e.factoryConfig()
			fcfg.AutoMigrate = true
			store, err := factory.OpenStorage(cmd.Context(), fcfg)
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				e.logger.Warn("failed to close storage", slog.String("error", err.Error()))
			}
			return nil
		},
	}
}
