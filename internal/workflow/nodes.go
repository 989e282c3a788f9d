package workflow

import (
	"context"
	"fmt"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/itinerary"
)

func (o *Orchestrator) analyzeInput(ctx context.Context, st *domain.SessionState) (Route, error) {
	o.analyze(ctx, st)
	return routeAfterAnalysis(st), nil
}

// askFor records the question of a checkpoint node; the interpreter
// pauses after it.
func (o *Orchestrator) askFor(node Node) nodeFunc {
	return func(_ context.Context, st *domain.SessionState) (Route, error) {
		st.Log(Prompt(node))
		return RouteNext, nil
	}
}

func (o *Orchestrator) discoverStage(stage domain.Stage, router func(*domain.SessionState) Route) nodeFunc {
	return func(ctx context.Context, st *domain.SessionState) (Route, error) {
		res := o.discoverer.Discover(ctx, stage, st)
		st.SetCandidates(stage, res.Venues)
		st.Log(res.Message)
		if res.Failed > 0 {
			o.logger.Warn("Some searches failed", "session_id", st.SessionID, "stage", stage, "failed", res.Failed, "queries", res.Queries)
		}
		if router != nil {
			return router(st), nil
		}
		return RouteNext, nil
	}
}

func (o *Orchestrator) generateItinerary(_ context.Context, st *domain.SessionState) (Route, error) {
	var stops []itinerary.Stop
	if st.InputKind == domain.InputSpecificPlace && st.StartingVenue != nil {
		stops = append(stops, itinerary.Stop{Stage: domain.StageActivity, Venue: *st.StartingVenue})
		rest := itinerary.FromState(st, domain.StageDining, domain.StageCafe, domain.StageDrinking)
		stops = append(stops, itinerary.Optimize(st.StartingVenue, rest)...)
	} else {
		stops = itinerary.Optimize(nil, itinerary.FromState(st, domain.Stages...))
	}

	previous := st.Schedule
	st.Schedule = itinerary.Schedule(stops, st.TimeSettings)

	if len(previous) > 0 {
		diff, err := itinerary.Diff(previous, st.Schedule)
		if err != nil {
			o.logger.Warn("Failed to diff itinerary", "session_id", st.SessionID, "error", err)
		} else if diff != "" {
			st.Log("Itinerary changes:\n" + diff)
		}
	}

	st.Log(itinerary.Summarize(st.Schedule))
	st.Log(fmt.Sprintf("Total travel distance: %dm", itinerary.TotalDistance(st.StartingVenue, stops)))
	return RouteNext, nil
}

func (o *Orchestrator) validateQuality(ctx context.Context, st *domain.SessionState) (Route, error) {
	action := o.refiner.Validate(ctx, st)
	if action != domain.ActionComplete {
		st.Passes++
	}
	return routeAfterValidation(st, action), nil
}
