package domain

// TravelMode tags how a hop between two stops is made.
type TravelMode string

const (
	TravelWalking TravelMode = "walking"
	TravelTaxi    TravelMode = "taxi"
	TravelTransit TravelMode = "transit"
)

// TravelSegment describes the hop from one schedule entry to the next.
type TravelSegment struct {
	Mode            TravelMode `json:"mode"`
	DurationMinutes int        `json:"duration_minutes"`
	DistanceMeters  int        `json:"distance_meters"`
	Description     string     `json:"description"`
}

// ScheduleEntry is one stop of a produced itinerary.
type ScheduleEntry struct {
	Order           int            `json:"order"`
	Stage           Stage          `json:"stage"`
	StartTime       string         `json:"start_time,omitempty"`
	EndTime         string         `json:"end_time,omitempty"`
	DurationMinutes int            `json:"duration_minutes,omitempty"`
	Venue           Venue          `json:"venue"`
	EstimatedTime   string         `json:"estimated_time"`
	Notes           string         `json:"notes,omitempty"`
	TravelToNext    *TravelSegment `json:"travel_to_next,omitempty"`
}

// TimeSettings controls whether the itinerary gets clock times.
type TimeSettings struct {
	Enabled       bool   `json:"enabled"`
	StartTime     string `json:"start_time"`
	DurationHours int    `json:"duration_hours,omitempty"`
}

// DateTheme carries the optional activity theme and dining atmosphere.
type DateTheme struct {
	Theme      string `json:"theme,omitempty"`
	Atmosphere string `json:"atmosphere,omitempty"`
}
