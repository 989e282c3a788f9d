package travel

import (
	"testing"

	"github.com/ashureev/outing-planner/internal/domain"
)

func venueAt(name string, lat, lon float64) domain.Venue {
	return domain.Venue{Name: name, Latitude: lat, Longitude: lon}
}

func TestDistanceSymmetricAndZero(t *testing.T) {
	t.Parallel()

	a := domain.Point{Latitude: 37.5665, Longitude: 126.9780}
	b := domain.Point{Latitude: 37.5547, Longitude: 126.9707}

	if got := Distance(a, a); got != 0 {
		t.Errorf("Expected 0 for identical points, got %d", got)
	}
	ab, ba := Distance(a, b), Distance(b, a)
	if ab != ba {
		t.Errorf("Expected symmetric distance, got %d and %d", ab, ba)
	}
	if ab < 1400 || ab > 1500 {
		t.Errorf("Expected roughly 1.45km, got %d", ab)
	}
}

func TestDistanceOneDegreeLatitude(t *testing.T) {
	t.Parallel()

	got := Distance(domain.Point{Latitude: 0}, domain.Point{Latitude: 1})
	// 6371000 * pi / 180 = 111194.9
	if got != 111194 {
		t.Errorf("Expected 111194, got %d", got)
	}
}

func TestEstimateModes(t *testing.T) {
	t.Parallel()

	origin := venueAt("origin", 0, 0)
	// One degree of latitude is 111194m, so small offsets give predictable distances.
	perMeter := 1.0 / 111194.9

	tests := []struct {
		name     string
		meters   float64
		wantMode domain.TravelMode
		wantMin  int
	}{
		{"same spot", 0, domain.TravelWalking, 1},
		{"short walk", 600.5, domain.TravelWalking, 10},
		{"walking boundary", 1200.5, domain.TravelWalking, 20},
		{"taxi", 3000.5, domain.TravelTaxi, 11},
		{"transit boundary", 5000.5, domain.TravelTransit, 25},
		{"far transit", 10000.5, domain.TravelTransit, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := Estimate(origin, venueAt("dest", tt.meters*perMeter, 0))
			if seg.Mode != tt.wantMode {
				t.Errorf("Expected mode %s, got %s (distance %d)", tt.wantMode, seg.Mode, seg.DistanceMeters)
			}
			if seg.DurationMinutes != tt.wantMin {
				t.Errorf("Expected %d minutes, got %d (distance %d)", tt.wantMin, seg.DurationMinutes, seg.DistanceMeters)
			}
		})
	}
}

func TestEstimateDeterministic(t *testing.T) {
	t.Parallel()

	a := venueAt("a", 37.5665, 126.9780)
	b := venueAt("b", 37.5796, 126.9770)
	first := Estimate(a, b)
	for i := 0; i < 5; i++ {
		if got := Estimate(a, b); got != first {
			t.Fatalf("Expected identical estimates, got %+v and %+v", first, got)
		}
	}
	if back := Estimate(b, a); back.DistanceMeters != first.DistanceMeters || back.Mode != first.Mode {
		t.Errorf("Expected symmetric estimate, got %+v and %+v", first, back)
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seg  domain.TravelSegment
		want string
	}{
		{domain.TravelSegment{Mode: domain.TravelWalking, DurationMinutes: 1, DistanceMeters: 40}, "adjacent, 1 min walk"},
		{domain.TravelSegment{Mode: domain.TravelWalking, DurationMinutes: 10, DistanceMeters: 600}, "10 min walk (600m)"},
		{domain.TravelSegment{Mode: domain.TravelTaxi, DurationMinutes: 11, DistanceMeters: 3000}, "taxi, 11 min"},
		{domain.TravelSegment{Mode: domain.TravelTransit, DurationMinutes: 35, DistanceMeters: 10000}, "transit, 35 min"},
	}
	for _, tt := range tests {
		if got := Describe(tt.seg); got != tt.want {
			t.Errorf("Expected %q, got %q", tt.want, got)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := map[int]string{
		40:  "40 min",
		60:  "1 hr",
		90:  "1 hr 30 min",
		120: "2 hr",
	}
	for in, want := range cases {
		if got := FormatDuration(in); got != want {
			t.Errorf("FormatDuration(%d): expected %q, got %q", in, want, got)
		}
	}
}
