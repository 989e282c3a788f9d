package itinerary

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/ashureev/outing-planner/internal/domain"
)

// Summarize renders entries as the multi-line text appended to the progress log.
func Summarize(entries []domain.ScheduleEntry) string {
	if len(entries) == 0 {
		return "Itinerary: no venues found"
	}

	var b strings.Builder
	timed := entries[0].StartTime != ""
	if timed {
		fmt.Fprintf(&b, "Itinerary (%s - %s):\n", entries[0].StartTime, entries[len(entries)-1].EndTime)
	} else {
		b.WriteString("Itinerary:\n")
	}

	for _, e := range entries {
		if timed {
			fmt.Fprintf(&b, "%d. [%s-%s] %s\n", e.Order, e.StartTime, e.EndTime, e.Venue.Name)
		} else {
			fmt.Fprintf(&b, "%d. %s (%s)\n", e.Order, e.Venue.Name, e.Venue.Category)
		}
		if e.Venue.Address != "" {
			fmt.Fprintf(&b, "   at %s\n", e.Venue.Address)
		}
		if e.TravelToNext != nil {
			fmt.Fprintf(&b, "   next: %s\n", e.TravelToNext.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func outline(entries []domain.ScheduleEntry) []string {
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s: %s\n", e.Order, e.Stage, e.Venue.Name))
	}
	return lines
}

// Diff renders a unified diff between two itineraries. It returns an empty
// string when the venue sequence did not change.
func Diff(prev, next []domain.ScheduleEntry) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        outline(prev),
		B:        outline(next),
		FromFile: "previous",
		ToFile:   "revised",
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff itinerary: %w", err)
	}
	return strings.TrimRight(text, "\n"), nil
}
