package domain

import (
	"time"
)

// Search radius bounds, in meters.
const (
	InitialRadius = 2000
	RadiusStep    = 1000
	MaxRadius     = 5000
)

// InputKind classifies the planning request.
type InputKind string

const (
	InputArea          InputKind = "area"
	InputSpecificPlace InputKind = "specific_place"
)

// Action is the refinement decision taken after an itinerary is shown.
type Action string

const (
	ActionRefineFood   Action = "refine_food"
	ActionRefineCafe   Action = "refine_cafe"
	ActionRefineRegion Action = "refine_region"
	ActionRefinePlace  Action = "refine_place"
	ActionComplete     Action = "complete"
)

// SessionStatus is the persisted lifecycle state of a planning session.
type SessionStatus string

const (
	StatusRunning   SessionStatus = "running"
	StatusPaused    SessionStatus = "awaiting_input"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "error"
)

// SessionState holds everything a planning session carries between steps.
// It is the value persisted at every checkpoint.
type SessionState struct {
	SessionID          string            `json:"session_id"`
	Request            string            `json:"request"`
	InputKind          InputKind         `json:"input_kind"`
	Location           string            `json:"location"`
	StartingVenue      *Venue            `json:"starting_venue,omitempty"`
	CandidateLists     map[Stage][]Venue `json:"candidates,omitempty"`
	Schedule           []ScheduleEntry   `json:"schedule,omitempty"`
	Radius             int               `json:"radius"`
	Progress           []string          `json:"progress,omitempty"`
	NeedsAnotherPass   bool              `json:"needs_another_pass"`
	Intent             *Intent           `json:"intent,omitempty"`
	ActivityPreference string            `json:"activity_preference,omitempty"`
	FoodPreference     string            `json:"food_preference,omitempty"`
	Feedback           string            `json:"feedback,omitempty"`
	NextAction         Action            `json:"next_action,omitempty"`
	TimeSettings       *TimeSettings     `json:"time_settings,omitempty"`
	Theme              *DateTheme        `json:"theme,omitempty"`
	NextNode           string            `json:"next_node,omitempty"`
	PendingCheckpoint  string            `json:"pending_checkpoint,omitempty"`
	Status             SessionStatus     `json:"status"`
	Passes             int               `json:"passes"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// NewSessionState returns a fresh state for a planning request.
func NewSessionState(sessionID, request string) *SessionState {
	now := time.Now().UTC()
	return &SessionState{
		SessionID:      sessionID,
		Request:        request,
		InputKind:      InputArea,
		Location:       request,
		CandidateLists: make(map[Stage][]Venue, len(Stages)),
		Radius:         InitialRadius,
		Status:         StatusRunning,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// CandidatesFor returns the candidate list of stage s.
func (s *SessionState) CandidatesFor(stage Stage) []Venue {
	if s.CandidateLists == nil {
		return nil
	}
	return s.CandidateLists[stage]
}

// SetCandidates replaces the candidate list of stage s.
func (s *SessionState) SetCandidates(stage Stage, venues []Venue) {
	if s.CandidateLists == nil {
		s.CandidateLists = make(map[Stage][]Venue, len(Stages))
	}
	s.CandidateLists[stage] = venues
}

// StageIntent returns the intent for a stage, defaulting to required.
func (s *SessionState) StageIntent(stage Stage) StageIntent {
	return s.Intent.For(stage)
}

// Required reports whether the stage should be searched.
func (s *SessionState) Required(stage Stage) bool {
	return s.StageIntent(stage).Required
}

// Log appends a line to the progress log.
func (s *SessionState) Log(line string) {
	s.Progress = append(s.Progress, line)
}

// GrowRadius widens the search radius by one step. It reports false when the
// radius is already at the ceiling.
func (s *SessionState) GrowRadius() bool {
	if s.Radius >= MaxRadius {
		return false
	}
	s.Radius += RadiusStep
	if s.Radius > MaxRadius {
		s.Radius = MaxRadius
	}
	return true
}

// Paused reports whether the session is waiting for human input.
func (s *SessionState) Paused() bool {
	return s.Status == StatusPaused && s.PendingCheckpoint != ""
}
