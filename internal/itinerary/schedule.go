package itinerary

import (
	"fmt"
	"time"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/travel"
)

const (
	clockLayout       = "15:04"
	fallbackStart     = "14:00"
	genericDuration   = "1-2 hours"
	overrunNoteSuffix = " (runs past planned end)"
)

// Schedule turns an ordered sequence of stops into itinerary entries. With
// time settings disabled or absent, entries carry only a generic duration.
func Schedule(stops []Stop, ts *domain.TimeSettings) []domain.ScheduleEntry {
	if len(stops) == 0 {
		return nil
	}
	if ts == nil || !ts.Enabled {
		return untimed(stops)
	}
	return timed(stops, ts)
}

func untimed(stops []Stop) []domain.ScheduleEntry {
	entries := make([]domain.ScheduleEntry, 0, len(stops))
	for i, s := range stops {
		entries = append(entries, domain.ScheduleEntry{
			Order:         i + 1,
			Stage:         s.Stage,
			Venue:         s.Venue,
			EstimatedTime: genericDuration,
			Notes:         note(s.Stage),
		})
	}
	return entries
}

func timed(stops []Stop, ts *domain.TimeSettings) []domain.ScheduleEntry {
	start := ParseClock(ts.StartTime)
	current := start
	var plannedEnd time.Time
	if ts.DurationHours > 0 {
		plannedEnd = start.Add(time.Duration(ts.DurationHours) * time.Hour)
	}

	entries := make([]domain.ScheduleEntry, 0, len(stops))
	for i, s := range stops {
		duration := s.Stage.DefaultDuration()
		end := current.Add(time.Duration(duration) * time.Minute)

		entry := domain.ScheduleEntry{
			Order:           i + 1,
			Stage:           s.Stage,
			StartTime:       current.Format(clockLayout),
			EndTime:         end.Format(clockLayout),
			DurationMinutes: duration,
			Venue:           s.Venue,
			EstimatedTime:   travel.FormatDuration(duration),
			Notes:           note(s.Stage),
		}
		if !plannedEnd.IsZero() && end.After(plannedEnd) {
			entry.Notes += overrunNoteSuffix
		}

		next := end
		if i < len(stops)-1 {
			seg := travel.Estimate(s.Venue, stops[i+1].Venue)
			entry.TravelToNext = &seg
			next = end.Add(time.Duration(seg.DurationMinutes) * time.Minute)
		}
		entries = append(entries, entry)
		current = next
	}
	return entries
}

// ParseClock parses an HH:MM clock time. Unparsable input yields 14:00.
func ParseClock(s string) time.Time {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		t, _ = time.Parse(clockLayout, fallbackStart)
	}
	return t
}

func note(s domain.Stage) string {
	return fmt.Sprintf("%s pick", s)
}
