// Package itinerary picks the visiting order of candidate venues and
// schedules it.
package itinerary

import (
	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/travel"
)

// TopPerStage caps how many candidates of each stage the optimizer considers.
const TopPerStage = 3

// Stop is one chosen venue tagged with its stage.
type Stop struct {
	Stage domain.Stage `json:"stage"`
	Venue domain.Venue `json:"venue"`
}

// Candidates maps each stage to its ranked candidate venues.
type Candidates map[domain.Stage][]domain.Venue

// FromState collects the candidate lists of the given stages.
func FromState(st *domain.SessionState, stages ...domain.Stage) Candidates {
	c := make(Candidates, len(stages))
	for _, s := range stages {
		c[s] = st.CandidatesFor(s)
	}
	return c
}

type stagePool struct {
	stage  domain.Stage
	venues []domain.Venue
}

// Optimize returns the one-venue-per-stage sequence with the smallest total
// travel distance. Stages are visited in fixed order and stages without
// candidates are left out. When start is set, the distance from start to the
// first stop counts toward the total. Among equal totals the first sequence
// in enumeration order wins.
func Optimize(start *domain.Venue, candidates Candidates) []Stop {
	var pools []stagePool
	for _, s := range domain.Stages {
		venues := candidates[s]
		if len(venues) == 0 {
			continue
		}
		if len(venues) > TopPerStage {
			venues = venues[:TopPerStage]
		}
		pools = append(pools, stagePool{stage: s, venues: venues})
	}
	if len(pools) == 0 {
		return nil
	}

	var (
		best     []Stop
		bestCost = -1
		current  = make([]Stop, len(pools))
	)

	var walk func(depth, cost int)
	walk = func(depth, cost int) {
		if depth == len(pools) {
			if bestCost < 0 || cost < bestCost {
				bestCost = cost
				best = append(best[:0], current...)
			}
			return
		}
		for _, v := range pools[depth].venues {
			step := 0
			switch {
			case depth > 0:
				step = travel.Distance(current[depth-1].Venue.Point(), v.Point())
			case start != nil:
				step = travel.Distance(start.Point(), v.Point())
			}
			current[depth] = Stop{Stage: pools[depth].stage, Venue: v}
			walk(depth+1, cost+step)
		}
	}
	walk(0, 0)

	return best
}

// TotalDistance sums the hop distances of a sequence, starting at start when set.
func TotalDistance(start *domain.Venue, stops []Stop) int {
	total := 0
	for i, s := range stops {
		switch {
		case i > 0:
			total += travel.Distance(stops[i-1].Venue.Point(), s.Venue.Point())
		case start != nil:
			total += travel.Distance(start.Point(), s.Venue.Point())
		}
	}
	return total
}
