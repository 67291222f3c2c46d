package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/neomorfeo/rentiq/internal/config"
	"github.com/neomorfeo/rentiq/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newRootCmd builds the rentiq command tree.
func newRootCmd() *cobra.Command {
	var envFiles []string

	root := &cobra.Command{
		Use:           "rentiq",
		Short:         "Boarding-house tenancy lifecycle engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env)")

	load := func() (*config.Config, *zap.Logger, error) {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return nil, nil, err
		}
		logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, cfg.OTel.ServiceName)
		if err != nil {
			return nil, nil, fmt.Errorf("creating logger: %w", err)
		}
		return cfg, logger, nil
	}

	root.AddCommand(
		newServeCmd(load),
		newMigrateCmd(load),
		newCreateAdminCmd(load),
		newTokenCmd(load),
	)
	return root
}

// loader reads configuration and builds the logger for a subcommand.
type loader func() (*config.Config, *zap.Logger, error)
