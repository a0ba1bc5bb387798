package main

import (
	"fmt"

	"commercial-file-service/internal/service/schedulerService"

	"github.com/spf13/cobra"
)

func runTaskCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "run-task <" + schedulerService.ExpirySweepName + "|" + schedulerService.NotificationCleanupName + ">",
		Short:     "Run one scheduled task immediately and exit",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{schedulerService.ExpirySweepName, schedulerService.NotificationCleanupName},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.runner.RunOnce(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("task %s: %w", args[0], err)
			}
			return nil
		},
	}
}
