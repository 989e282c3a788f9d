package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashureev/outing-planner/internal/app"
	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/workflow"
)

type planFlags struct {
	start string
	hours int
	theme string
	mood  string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.start, "start", "", "start time as HH:MM; enables the timed schedule")
	cmd.Flags().IntVar(&f.hours, "hours", 0, "planned duration in hours")
	cmd.Flags().StringVar(&f.theme, "theme", "", "activity theme (culture, active, healing, shopping)")
	cmd.Flags().StringVar(&f.mood, "mood", "", "atmosphere (romantic, quiet, trendy, casual)")
}

func (f *planFlags) options() (workflow.Options, error) {
	var opts workflow.Options
	if f.start != "" {
		if _, err := time.Parse("15:04", f.start); err != nil {
			return opts, fmt.Errorf("invalid --start %q: want HH:MM", f.start)
		}
		opts.TimeSettings = &domain.TimeSettings{Enabled: true, StartTime: f.start, DurationHours: f.hours}
	}
	if f.theme != "" || f.mood != "" {
		opts.Theme = &domain.DateTheme{Theme: f.theme, Atmosphere: f.mood}
	}
	return opts, nil
}

func newPlanCmd(open Opener) *cobra.Command {
	var (
		flags     planFlags
		sessionID string
	)
	cmd := &cobra.Command{
		Use:   "plan <request>",
		Short: "Start planning an outing",
		Long:  `Start a planning session. The command stops at the first question; answer it with "outing resume".`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			return withApp(open, func(a *app.App) error {
				out, err := a.Orchestrator.Start(cmd.Context(), strings.Join(args, " "), sessionID, opts)
				if out != nil {
					printOutcome(cmd.OutOrStdout(), out)
				}
				return err
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&sessionID, "session", "", "session ID (generated when empty)")
	return cmd
}

func newResumeCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "resume <session-id> [answer...]",
		Short: "Answer the pending question of a session",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app.App) error {
				out, err := a.Orchestrator.Resume(cmd.Context(), args[0], strings.Join(args[1:], " "))
				if out != nil {
					printOutcome(cmd.OutOrStdout(), out)
				}
				return err
			})
		},
	}
}

func newShowCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "show <session-id>",
		Short: "Show the stored state of a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(open, func(a *app.App) error {
				out, err := a.Orchestrator.Snapshot(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printOutcome(cmd.OutOrStdout(), out)
				return nil
			})
		},
	}
}
