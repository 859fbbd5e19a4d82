package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/repo"
)

func migrateCmd() *cobra.Command {
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and tasks tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			stores, err := repo.Open(ctx, cfg.Driver, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer stores.Close()

			if down {
				if err := stores.Rollback(ctx); err != nil {
					return err
				}
				logger.Info("schema dropped", zap.String("driver", cfg.Driver))
				return nil
			}

			if err := stores.Migrate(ctx); err != nil {
				return err
			}
			logger.Info("schema applied", zap.String("driver", cfg.Driver))
			return nil
		},
	}
	cmd.Flags().BoolVar(&down, "down", false, "drop the tables instead")
	return cmd
}
