package workflow

import (
	"github.com/ashureev/outing-planner/internal/domain"
)

// Outcome is what a caller sees after Start, Resume or Snapshot.
type Outcome struct {
	Status            domain.SessionStatus `json:"status"`
	SessionID         string               `json:"session_id"`
	PendingCheckpoint []string             `json:"pending_checkpoint,omitempty"`
	Prompt            string               `json:"prompt,omitempty"`
	Itinerary         *Itinerary           `json:"itinerary,omitempty"`
	Progress          []string             `json:"progress"`
	Message           string               `json:"message,omitempty"`
}

// Itinerary is the plan view of a session.
type Itinerary struct {
	Input     Input                  `json:"input"`
	Locations Locations              `json:"locations"`
	Schedule  []domain.ScheduleEntry `json:"schedule"`
}

// Input echoes how the request was read.
type Input struct {
	Original string           `json:"original"`
	Type     domain.InputKind `json:"type"`
	Parsed   *domain.Intent   `json:"parsed,omitempty"`
}

// Locations lists the candidates found for each stage.
type Locations struct {
	StartingPoint *domain.Venue  `json:"starting_point,omitempty"`
	Activities    []domain.Venue `json:"activities"`
	Dining        []domain.Venue `json:"dining"`
	Cafes         []domain.Venue `json:"cafes"`
	Bars          []domain.Venue `json:"bars"`
}

// AwaitingInput reports whether the session is paused at a checkpoint.
func (o *Outcome) AwaitingInput() bool {
	return o.Status == domain.StatusPaused
}

func newOutcome(st *domain.SessionState) *Outcome {
	out := &Outcome{
		Status:    st.Status,
		SessionID: st.SessionID,
		Progress:  append([]string{}, st.Progress...),
	}
	if st.Status == domain.StatusPaused && st.PendingCheckpoint != "" {
		out.PendingCheckpoint = []string{st.PendingCheckpoint}
		out.Prompt = Prompt(Node(st.PendingCheckpoint))
	}
	if st.Status == domain.StatusCompleted {
		out.Message = "Itinerary complete"
	}
	if st.Intent != nil || len(st.Schedule) > 0 {
		out.Itinerary = newItinerary(st)
	}
	return out
}

func newItinerary(st *domain.SessionState) *Itinerary {
	var parsed *domain.Intent
	if st.Intent != nil {
		in := *st.Intent
		parsed = &in
	}
	return &Itinerary{
		Input: Input{
			Original: st.Request,
			Type:     st.InputKind,
			Parsed:   parsed,
		},
		Locations: Locations{
			StartingPoint: st.StartingVenue,
			Activities:    orEmpty(st.CandidatesFor(domain.StageActivity)),
			Dining:        orEmpty(st.CandidatesFor(domain.StageDining)),
			Cafes:         orEmpty(st.CandidatesFor(domain.StageCafe)),
			Bars:          orEmpty(st.CandidatesFor(domain.StageDrinking)),
		},
		Schedule: append([]domain.ScheduleEntry{}, st.Schedule...),
	}
}

func orEmpty(v []domain.Venue) []domain.Venue {
	if v == nil {
		return []domain.Venue{}
	}
	return v
}
