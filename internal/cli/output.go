package cli

import (
	"fmt"
	"io"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/itinerary"
	"github.com/ashureev/outing-planner/internal/tui"
	"github.com/ashureev/outing-planner/internal/workflow"
)

func printOutcome(w io.Writer, out *workflow.Outcome) {
	fmt.Fprintln(w, tui.TitleStyle.Render("Session "+out.SessionID))
	for _, line := range out.Progress {
		fmt.Fprintln(w, tui.SubtleStyle.Render(line))
	}
	if it := out.Itinerary; it != nil && len(it.Schedule) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, tui.BoxStyle.Render(itinerary.Summarize(it.Schedule)))
	}

	fmt.Fprintln(w)
	switch out.Status {
	case domain.StatusPaused:
		fmt.Fprintln(w, tui.PromptStyle.Render(out.Prompt))
		fmt.Fprintf(w, "Answer with: outing resume %s <answer>\n", out.SessionID)
	case domain.StatusCompleted:
		fmt.Fprintln(w, tui.SuccessStyle.Render("Itinerary complete."))
	case domain.StatusFailed:
		fmt.Fprintln(w, tui.ErrorStyle.Render("Planning failed: "+out.Message))
	default:
		fmt.Fprintf(w, "Status: %s\n", out.Status)
	}
}
