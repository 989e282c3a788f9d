// Package search is the geo-search boundary: venue lookups by keyword or
// category near a point.
package search

import (
	"context"

	"github.com/ashureev/outing-planner/internal/domain"
)

// Searcher looks up venues. Implementations must be safe for concurrent use.
type Searcher interface {
	// SearchByKeyword runs a free-text search, optionally restricted to a
	// radius around near.
	SearchByKeyword(ctx context.Context, query string, near *domain.Point, radius, limit int) ([]domain.Venue, error)
	// SearchByCategory lists venues of a category group around near.
	SearchByCategory(ctx context.Context, code string, near domain.Point, radius, limit int) ([]domain.Venue, error)
	// FindOne returns the best match for query, or nil when nothing matches.
	FindOne(ctx context.Context, query string) (*domain.Venue, error)
}

// DedupeByName keeps the first venue of every name, preserving order, and
// truncates to max when max > 0.
func DedupeByName(venues []domain.Venue, max int) []domain.Venue {
	seen := make(map[string]struct{}, len(venues))
	out := make([]domain.Venue, 0, len(venues))
	for _, v := range venues {
		if _, ok := seen[v.Name]; ok {
			continue
		}
		seen[v.Name] = struct{}{}
		out = append(out, v)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
