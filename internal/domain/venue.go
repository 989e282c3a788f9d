// Package domain contains core domain types for the outing planner.
package domain

// Stage is one of the four ordered venue-discovery phases.
type Stage string

const (
	StageActivity Stage = "activity"
	StageDining   Stage = "dining"
	StageCafe     Stage = "cafe"
	StageDrinking Stage = "drinking"
)

// Stages lists every stage in visiting order.
var Stages = []Stage{StageActivity, StageDining, StageCafe, StageDrinking}

// DefaultDuration returns the default time spent at a stage, in minutes.
func (s Stage) DefaultDuration() int {
	switch s {
	case StageActivity:
		return 90
	case StageDining:
		return 60
	case StageCafe:
		return 40
	case StageDrinking:
		return 90
	default:
		return 60
	}
}

// Valid reports whether s is a known stage.
func (s Stage) Valid() bool {
	switch s {
	case StageActivity, StageDining, StageCafe, StageDrinking:
		return true
	}
	return false
}

// Point is a WGS84 coordinate.
type Point struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Venue is a place returned by the geo-search provider.
type Venue struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Address   string  `json:"address"`
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
	Phone     string  `json:"phone,omitempty"`
	PlaceURL  string  `json:"place_url,omitempty"`
	Distance  *int    `json:"distance,omitempty"`
}

// Point returns the venue's coordinates.
func (v Venue) Point() Point {
	return Point{Longitude: v.Longitude, Latitude: v.Latitude}
}
