package cli

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/mcoot/feedbackboard/internal/dependencies/clock"
	"github.com/mcoot/feedbackboard/internal/factory"
	"github.com/mcoot/feedbackboard/internal/seed"
	"github.com/mcoot/feedbackboard/internal/services/auth"
	"github.com/mcoot/feedbackboard/internal/services/feedback"
)

func newSeedCmd(e *env) *cobra.Command {
	var (
		users    int
		perUser  int
		seedFlag int64
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the database with demo users and feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.cfg.Storage == factory.StorageTypeMemory {
				return fmt.Errorf("refusing to seed %s storage: data would be lost on exit", e.cfg.Storage)
			}

			fcfg := e.factoryConfig()
			store, err := factory.OpenStorage(cmd.Context(), fcfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					e.logger.Warn("failed to close storage", slog.String("error", err.Error()))
				}
			}()

			clk := clock.New()
			seeder := seed.New(
				auth.New(store, clk, fcfg.AuthConfig, e.logger),
				feedback.New(store, clk, e.logger),
				seedFlag,
				e.logger,
			)

			res, err := seeder.Run(cmd.Context(), users, perUser)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, username := range res.Users {
				fmt.Fprintf(out, "%s\t%s\n", username, seed.DemoPassword)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&users, "users", 5, "Number of demo users to create")
	cmd.Flags().IntVar(&perUser, "feedback", 3, "Feedback entries per user")
	cmd.Flags().Int64Var(&seedFlag, "seed", time.Now().UnixNano(), "Random seed for repeatable data")

	return cmd
}
