package main

import (
	"context"
	"fmt"
	"os"

	"commercial-file-service/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	ctx, err := logger.New(context.Background())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.GetLogger(ctx).Sync() }()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "commercial-file-service",
		Short:         "Commercial file management backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return nil
			}
			if err := godotenv.Load(envFile); err != nil {
				return fmt.Errorf("failed to load %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file first")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(runTaskCmd())
	root.AddCommand(createUserCmd())
	return root
}
