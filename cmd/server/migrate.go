package main

import (
	"commercial-file-service/pkg/database/postgres"
	"commercial-file-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			version, err := postgres.Migrate(cfg.Postgres)
			if err != nil {
				return err
			}
			logger.GetLogger(cmd.Context()).Info("database migrated", zap.Uint("version", version))
			return nil
		},
	}
}
