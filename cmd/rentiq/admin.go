package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/adapter/auth"
	"github.com/neomorfeo/rentiq/internal/adapter/sqlite"
	"github.com/neomorfeo/rentiq/internal/app"
	"github.com/neomorfeo/rentiq/internal/config"
	"github.com/neomorfeo/rentiq/internal/domain"
)

// withStore runs fn against a migrated store and closes it afterwards.
func withStore(load loader, fn func(cfg *config.Config, logger *zap.Logger, store *sqlite.Store) error) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	store, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer store.Close()
	return fn(cfg, logger, store)
}

func newMigrateCmd(load loader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(*cobra.Command, []string) error {
			return withStore(load, func(cfg *config.Config, logger *zap.Logger, _ *sqlite.Store) error {
				logger.Info("database migrated", zap.String("path", cfg.DB.Path))
				return nil
			})
		},
	}
}

func newCreateAdminCmd(load loader) *cobra.Command {
	var in app.UserInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(load, func(_ *config.Config, logger *zap.Logger, store *sqlite.Store) error {
				in.Role = domain.RoleAdmin
				u, err := app.NewUserService(store, logger).Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), u.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Email, "email", "", "login email")
	cmd.Flags().StringVar(&in.Password, "password", "", "password")
	cmd.Flags().StringVar(&in.FullName, "name", "Administrator", "full name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newTokenCmd(load loader) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Print an access token for an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStore(load, func(cfg *config.Config, _ *zap.Logger, store *sqlite.Store) error {
				if cfg.Auth.JWTSecret == "" {
					return errors.New("JWT_SECRET is required")
				}
				tokens, err := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
				if err != nil {
					return err
				}
				u, err := store.Users().FindByEmail(cmd.Context(), email)
				if err != nil {
					return err
				}
				token, _, err := tokens.Issue(u.Principal())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "login email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
