// Package discovery runs the per-stage venue searches of a planning session.
package discovery

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/search"
	"github.com/ashureev/outing-planner/internal/textgen"
)

// Result is the outcome of discovering one stage.
type Result struct {
	Stage   domain.Stage
	Venues  []domain.Venue
	Skipped bool
	Queries int
	Failed  int
	Message string
}

// Discoverer builds the search queries of each stage and merges the results.
type Discoverer struct {
	searcher search.Searcher
	gen      textgen.Generator
	profile  *search.Profile
	logger   *slog.Logger
}

// New creates a Discoverer. gen may be nil, in which case activity keywords
// are not expanded.
func New(searcher search.Searcher, gen textgen.Generator, profile *search.Profile, logger *slog.Logger) *Discoverer {
	if logger == nil {
		logger = slog.Default()
	}
	if profile == nil {
		profile = search.DefaultProfile()
	}
	return &Discoverer{
		searcher: searcher,
		gen:      gen,
		profile:  profile,
		logger:   logger,
	}
}

// Discover searches candidates for stage. It never fails as a whole: a failed
// query only drops that query's results.
func (d *Discoverer) Discover(ctx context.Context, stage domain.Stage, st *domain.SessionState) Result {
	if !st.Required(stage) {
		return Result{
			Stage:   stage,
			Skipped: true,
			Message: fmt.Sprintf("Skipped %s search (not requested)", stage),
		}
	}

	var queries []query
	switch stage {
	case domain.StageActivity:
		queries = d.activityQueries(ctx, st)
	case domain.StageDining:
		queries = d.diningQueries(st)
	case domain.StageCafe:
		queries = d.cafeQueries(st)
	case domain.StageDrinking:
		queries = d.drinkingQueries(st)
	}

	res := d.run(ctx, stage, queries)
	res.Venues = search.DedupeByName(res.Venues, d.profile.Stage(stage).Max)
	res.Message = fmt.Sprintf("Found %d %s candidates", len(res.Venues), stage)
	return res
}

type query struct {
	keyword  string
	category string
	near     *domain.Point
	radius   int
	limit    int
}

func (q query) String() string {
	if q.category != "" {
		return "category:" + q.category
	}
	return q.keyword
}

func (d *Discoverer) run(ctx context.Context, stage domain.Stage, queries []query) Result {
	results := make([][]domain.Venue, len(queries))
	failed := make([]bool, len(queries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, d.profile.Concurrency))
	for i, q := range queries {
		g.Go(func() error {
			venues, err := d.execute(gctx, q)
			if err != nil {
				// A failed query degrades to no results for that query.
				d.logger.Warn("Search query failed", "stage", stage, "query", q.String(), "error", err)
				failed[i] = true
				return nil
			}
			results[i] = venues
			return nil
		})
	}
	_ = g.Wait()

	res := Result{Stage: stage, Queries: len(queries)}
	for i := range queries {
		if failed[i] {
			res.Failed++
		}
		res.Venues = append(res.Venues, results[i]...)
	}
	return res
}

func (d *Discoverer) execute(ctx context.Context, q query) ([]domain.Venue, error) {
	if q.category != "" {
		return d.searcher.SearchByCategory(ctx, q.category, *q.near, q.radius, q.limit)
	}
	return d.searcher.SearchByKeyword(ctx, q.keyword, q.near, q.radius, q.limit)
}
