package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/ashureev/outing-planner/internal/domain"
)

const analysisPrompt = `You read outing requests and extract what the user wants.
Answer with exactly these lines and nothing else:
LOCATION: <area or place name>
INPUT_TYPE: area | specific_place
ACTIVITY_REQUIRED: true | false
ACTIVITY_PREFERENCE: <free text or none>
ACTIVITY_KEYWORDS: <comma separated or none>
DINING_REQUIRED: true | false
DINING_PREFERENCE: <free text or none>
CAFE_REQUIRED: true | false
CAFE_PREFERENCE: <free text or none>
DRINKING_REQUIRED: true | false
DRINKING_PREFERENCE: <free text or none>
A stage is required unless the user clearly excludes it.
Use specific_place only when the request names one venue or landmark to start from.`

var stageKeys = []struct {
	prefix string
	stage  domain.Stage
}{
	{"ACTIVITY", domain.StageActivity},
	{"DINING", domain.StageDining},
	{"FOOD", domain.StageDining},
	{"CAFE", domain.StageCafe},
	{"DRINKING", domain.StageDrinking},
	{"BAR", domain.StageDrinking},
}

// ParseAnalysis reads the line-oriented analysis reply. Missing lines keep
// their defaults: every stage required, area mode, the whole request as the
// location. ok is false when the reply carries no location at all.
func ParseAnalysis(reply, request string) (intent domain.Intent, kind domain.InputKind, ok bool) {
	intent = domain.DefaultIntent(request)
	kind = domain.InputArea

	for _, line := range strings.Split(reply, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.ToUpper(strings.TrimSpace(strings.Trim(key, "-* ")))
		value = strings.TrimSpace(value)

		switch key {
		case "LOCATION":
			if value != "" {
				intent.Location = value
				ok = true
			}
			continue
		case "INPUT_TYPE":
			if strings.EqualFold(value, string(domain.InputSpecificPlace)) {
				kind = domain.InputSpecificPlace
			}
			continue
		}

		for _, sk := range stageKeys {
			field, match := strings.CutPrefix(key, sk.prefix+"_")
			if !match {
				continue
			}
			si := intent.For(sk.stage)
			switch field {
			case "REQUIRED":
				si.Required = !strings.EqualFold(value, "false") && !strings.EqualFold(value, "no")
			case "PREFERENCE":
				if domain.MeaningfulPreference(value) {
					si.Preference = value
				}
			case "KEYWORDS":
				si.Keywords = splitKeywords(value)
			}
			intent.Set(sk.stage, si)
			break
		}
	}
	return intent, kind, ok
}

func splitKeywords(s string) []string {
	if !domain.MeaningfulPreference(s) {
		return nil
	}
	var out []string
	for _, kw := range strings.Split(s, ",") {
		if kw = strings.TrimSpace(kw); kw != "" {
			out = append(out, kw)
		}
	}
	return out
}

// analyze fills the intent, location and input kind of st. A failed or
// unreadable analysis leaves the defaults in place.
func (o *Orchestrator) analyze(ctx context.Context, st *domain.SessionState) {
	intent := domain.DefaultIntent(st.Request)
	kind := domain.InputArea

	if o.gen != nil {
		reply, err := o.gen.Complete(ctx, analysisPrompt, st.Request)
		switch {
		case err != nil:
			o.logger.Warn("Request analysis failed, using defaults", "session_id", st.SessionID, "error", err)
		default:
			parsed, parsedKind, ok := ParseAnalysis(reply, st.Request)
			if ok {
				intent, kind = parsed, parsedKind
			} else {
				o.logger.Warn("Request analysis unreadable, using defaults", "session_id", st.SessionID)
			}
		}
	}

	st.Intent = &intent
	st.Location = intent.Location
	st.InputKind = kind

	if kind == domain.InputSpecificPlace {
		venue, err := o.searcher.FindOne(ctx, intent.Location)
		switch {
		case err != nil:
			o.logger.Warn("Starting place lookup failed", "session_id", st.SessionID, "place", intent.Location, "error", err)
			st.InputKind = domain.InputArea
		case venue == nil:
			st.InputKind = domain.InputArea
		default:
			st.StartingVenue = venue
			st.Log(fmt.Sprintf("Starting point: %s", venue.Name))
		}
		if st.InputKind == domain.InputArea {
			st.Log(fmt.Sprintf("Could not find %q, planning around the area instead", intent.Location))
		}
	}

	if st.ActivityPreference == "" && domain.MeaningfulPreference(intent.Activity.Preference) {
		st.ActivityPreference = intent.Activity.Preference
	}
	if st.FoodPreference == "" && domain.MeaningfulPreference(intent.Dining.Preference) {
		st.FoodPreference = intent.Dining.Preference
	}

	st.Log(fmt.Sprintf("Planning an outing around %s", st.Location))
}
