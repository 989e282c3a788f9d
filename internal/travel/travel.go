// Package travel estimates the hop between two venues.
package travel

import (
	"fmt"
	"math"

	"github.com/ashureev/outing-planner/internal/domain"
)

const earthRadiusMeters = 6371000.0

// Mode thresholds, in meters.
const (
	walkingMaxMeters = 1200
	transitMinMeters = 5000
	adjacentMeters   = 100
)

// Distance returns the great-circle distance between a and b in whole meters.
func Distance(a, b domain.Point) int {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return int(earthRadiusMeters * c)
}

// Estimate returns the travel segment from one venue to another.
func Estimate(from, to domain.Venue) domain.TravelSegment {
	d := Distance(from.Point(), to.Point())
	seg := domain.TravelSegment{DistanceMeters: d}

	switch {
	case d <= walkingMaxMeters:
		seg.Mode = domain.TravelWalking
		seg.DurationMinutes = max(1, d/60)
	case d < transitMinMeters:
		seg.Mode = domain.TravelTaxi
		seg.DurationMinutes = d/500 + 5
	default:
		seg.Mode = domain.TravelTransit
		seg.DurationMinutes = d/500 + 15
	}
	seg.Description = Describe(seg)
	return seg
}

// Describe renders a short human-readable description of a segment.
func Describe(seg domain.TravelSegment) string {
	switch seg.Mode {
	case domain.TravelWalking:
		if seg.DistanceMeters < adjacentMeters {
			return fmt.Sprintf("adjacent, %d min walk", seg.DurationMinutes)
		}
		return fmt.Sprintf("%d min walk (%dm)", seg.DurationMinutes, seg.DistanceMeters)
	case domain.TravelTaxi:
		return fmt.Sprintf("taxi, %d min", seg.DurationMinutes)
	default:
		return fmt.Sprintf("transit, %d min", seg.DurationMinutes)
	}
}

// FormatDuration renders minutes as "40 min", "1 hr" or "1 hr 30 min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d min", minutes)
	}
	h, m := minutes/60, minutes%60
	if m == 0 {
		return fmt.Sprintf("%d hr", h)
	}
	return fmt.Sprintf("%d hr %d min", h, m)
}
