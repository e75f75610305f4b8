// Package cli implements helpdeskctl, the admin command line for the helpdesk
// service.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// NewRootCommand assembles helpdeskctl and its subcommands.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "helpdeskctl",
		Short: "Administer the helpdesk service",
		Long:  `helpdeskctl applies database migrations, manages users and runs the priority classifier outside the HTTP service.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newMigrateCmd(),
		newClassifyCmd(),
		newHashPasswordCmd(),
		newCreateUserCmd(),
	)
	return root
}

type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return &runtime{cfg: cfg, logger: logger}, nil
}

// openPostgres connects and fails when no DSN is configured.
func (r *runtime) openPostgres(ctx context.Context) (*persistence.Postgres, error) {
	pg, err := persistence.NewPostgres(ctx, r.cfg.Postgres, r.logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if !pg.Enabled() {
		return nil, fmt.Errorf("POSTGRES_DSN is required for this command")
	}
	return pg, nil
}
