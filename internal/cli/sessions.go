package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ashureev/outing-planner/internal/app"
)

func newSessionsCmd(open Opener) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List stored planning sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(open, func(a *app.App) error {
				sessions, err := a.Store.List(cmd.Context(), limit)
				if err != nil {
					return fmt.Errorf("failed to list sessions: %w", err)
				}

				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions.")
					return nil
				}

				w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "SESSION\tSTATUS\tWAITING ON\tREQUEST\tUPDATED")
				for _, s := range sessions {
					waiting := s.PendingCheckpoint
					if waiting == "" {
						waiting = "-"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
						s.SessionID,
						s.Status,
						waiting,
						truncate(s.Request, 40),
						formatAge(s.UpdatedAt),
					)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum sessions to list")
	return cmd
}

// formatAge returns a human-readable relative time string.
func formatAge(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return "just now"
	}

	minutes := int(duration.Minutes())
	if minutes < 60 {
		return fmt.Sprintf("%dm ago", minutes)
	}

	hours := int(duration.Hours())
	if hours < 24 {
		return fmt.Sprintf("%dh ago", hours)
	}

	return fmt.Sprintf("%dd ago", hours/24)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
