package discovery

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

const expansionPrompt = `You write search keywords for a map search service.
Reply with exactly 3 short search keywords separated by commas. No other text.`

func (d *Discoverer) expandKeywords(ctx context.Context, location, preference string) []string {
	if d.gen == nil {
		return nil
	}
	user := fmt.Sprintf("Area: %s\nLooking for: %s\nExample: %s %s, %s 추천, %s 데이트",
		location, preference, location, preference, location, location)

	out, err := d.gen.Complete(ctx, expansionPrompt, user)
	if err != nil {
		d.logger.Warn("Keyword expansion failed", "preference", preference, "error", err)
		return nil
	}
	return ParseKeywords(out)
}

// ParseKeywords splits a comma- or newline-separated keyword list, dropping
// list markers and quotes.
func ParseKeywords(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '\n' || r == '、'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		f = listMarker.ReplaceAllString(f, "")
		f = strings.Trim(f, "\"'` ")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}
