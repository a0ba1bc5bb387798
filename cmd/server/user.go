package main

import (
	"fmt"

	"commercial-file-service/internal/model/user"
	"commercial-file-service/internal/service/authService"
	"commercial-file-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func createUserCmd() *cobra.Command {
	var (
		req  authService.RegisterRequest
		role string
	)
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user directly, typically the first admin",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := user.ParseRole(role)
			if err != nil {
				return err
			}
			req.Role = r

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			id, err := a.auth.Register(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}
			logger.GetLogger(cmd.Context()).Info("user created",
				zap.Uint32("user_id", id), zap.String("role", string(r)))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "login name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email address")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&req.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&role, "role", string(user.RoleAdmin), "ADMIN, USER or SITE_ACQUISITION")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
