// Package refine decides whether a produced itinerary is final or needs
// another discovery pass.
package refine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ashureev/outing-planner/internal/domain"
)

// MinEntries is the smallest itinerary accepted without widening the search.
const MinEntries = 2

// Classifier maps free-text feedback to a refinement action.
type Classifier interface {
	Classify(ctx context.Context, feedback string) domain.Action
}

// Controller runs the quality check after an itinerary is generated.
type Controller struct {
	classifier Classifier
	logger     *slog.Logger
}

// NewController creates a Controller. A nil classifier uses KeywordClassifier.
func NewController(classifier Classifier, logger *slog.Logger) *Controller {
	if classifier == nil {
		classifier = KeywordClassifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{classifier: classifier, logger: logger}
}

// Validate consumes pending feedback and checks the itinerary size, updating
// the needs-another-pass flag, next action and radius of st.
func (c *Controller) Validate(ctx context.Context, st *domain.SessionState) domain.Action {
	if fb := strings.TrimSpace(st.Feedback); fb != "" {
		action := c.classifier.Classify(ctx, fb)
		st.Feedback = ""
		st.NextAction = action
		st.Log(fmt.Sprintf("Feedback applied: %s", action))
		c.logger.Debug("Feedback classified", "session_id", st.SessionID, "action", action)

		if action != domain.ActionComplete {
			st.NeedsAnotherPass = true
			return action
		}
	}

	if len(st.Schedule) < MinEntries && st.Radius < domain.MaxRadius {
		st.GrowRadius()
		st.NeedsAnotherPass = true
		st.NextAction = domain.ActionRefineRegion
		st.Log(fmt.Sprintf("Too few results, widening search radius to %dm", st.Radius))
		return domain.ActionRefineRegion
	}

	st.NeedsAnotherPass = false
	st.NextAction = domain.ActionComplete
	st.Log("Itinerary complete")
	return domain.ActionComplete
}
