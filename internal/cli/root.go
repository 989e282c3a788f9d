// Package cli implements the outing command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ashureev/outing-planner/internal/app"
	"github.com/ashureev/outing-planner/internal/config"
	"github.com/ashureev/outing-planner/internal/tui"
)

// Opener builds the application for a command run.
type Opener func() (*app.App, error)

// DefaultOpener loads .env and the environment configuration.
func DefaultOpener() (*app.App, error) {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	// Keep the terminal clean; warnings and errors still go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return app.Build(cfg, logger)
}

// NewRootCmd builds the command tree. Without a subcommand it starts the TUI.
func NewRootCmd(open Opener) *cobra.Command {
	var planOpts planFlags

	root := &cobra.Command{
		Use:           "outing",
		Short:         "Plan an outing: activity, meal, cafe and drinks",
		Long:          `Outing plans a multi-stop outing from a free-text request, asks a few questions along the way, and prints a timed itinerary.`,
		Version:       "0.1.0",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app.App) error {
				opts, err := planOpts.options()
				if err != nil {
					return err
				}
				return tui.Run(cmd.Context(), a.Orchestrator, opts)
			})
		},
	}
	planOpts.register(root)

	root.AddCommand(
		newPlanCmd(open),
		newResumeCmd(open),
		newShowCmd(open),
		newSessionsCmd(open),
	)
	return root
}

// Execute runs the command line against the environment configuration.
func Execute(ctx context.Context) error {
	return NewRootCmd(DefaultOpener).ExecuteContext(ctx)
}

func withApp(open Opener, fn func(*app.App) error) error {
	a, err := open()
	if err != nil {
		return fmt.Errorf("failed to start: %w", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			slog.Warn("Failed to close application", "error", cerr)
		}
	}()
	return fn(a)
}
