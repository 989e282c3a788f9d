package refine

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ashureev/outing-planner/internal/domain"
	"github.com/ashureev/outing-planner/internal/textgen"
)

var keywordRules = []struct {
	action domain.Action
	words  []string
}{
	{domain.ActionRefineCafe, []string{"cafe", "coffee", "카페", "커피"}},
	{domain.ActionRefineFood, []string{"food", "restaurant", "dinner", "lunch", "meal", "음식", "식당", "맛집", "밥"}},
	{domain.ActionRefineRegion, []string{"again", "region", "area", "everything", "start over", "다시", "전체", "지역"}},
}

// KeywordClassifier classifies feedback by keyword. Feedback matching no
// rule is treated as acceptance.
type KeywordClassifier struct{}

// Classify implements Classifier.
func (KeywordClassifier) Classify(_ context.Context, feedback string) domain.Action {
	text := strings.ToLower(feedback)
	for _, rule := range keywordRules {
		for _, w := range rule.words {
			if strings.Contains(text, w) {
				return rule.action
			}
		}
	}
	return domain.ActionComplete
}

const classifyPrompt = `Classify the user's feedback on a proposed outing itinerary.
- wants a different restaurant -> ACTION: refine_food
- wants a different cafe -> ACTION: refine_cafe
- wants to redo the whole plan -> ACTION: refine_region
- satisfied or done -> ACTION: complete

Reply with a single line: ACTION: <action_code>`

// GeneratorClassifier asks a text generator for the action and falls back
// to another classifier when the call fails.
type GeneratorClassifier struct {
	gen      textgen.Generator
	fallback Classifier
	logger   *slog.Logger
}

// NewGeneratorClassifier creates a GeneratorClassifier. A nil fallback uses
// KeywordClassifier.
func NewGeneratorClassifier(gen textgen.Generator, fallback Classifier, logger *slog.Logger) *GeneratorClassifier {
	if fallback == nil {
		fallback = KeywordClassifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GeneratorClassifier{gen: gen, fallback: fallback, logger: logger}
}

// Classify implements Classifier.
func (c *GeneratorClassifier) Classify(ctx context.Context, feedback string) domain.Action {
	out, err := c.gen.Complete(ctx, classifyPrompt, feedback)
	if err != nil {
		c.logger.Warn("Feedback classification failed, using keywords", "error", err)
		return c.fallback.Classify(ctx, feedback)
	}
	return ParseAction(out)
}

// ParseAction extracts the action tag from a classifier reply. Replies
// naming no known action mean complete.
func ParseAction(reply string) domain.Action {
	text := strings.ToLower(reply)
	if i := strings.Index(text, "action:"); i >= 0 {
		text = text[i+len("action:"):]
	}
	for _, a := range []domain.Action{domain.ActionRefineFood, domain.ActionRefineCafe, domain.ActionRefineRegion} {
		if strings.Contains(text, string(a)) {
			return a
		}
	}
	return domain.ActionComplete
}
