package discovery

import (
	"context"
	"strings"

	"github.com/ashureev/outing-planner/internal/domain"
)

const maxActivityQueries = 6

func (d *Discoverer) activityQueries(ctx context.Context, st *domain.SessionState) []query {
	sp := d.profile.Activity
	loc := st.Location

	var keywords []string
	if pref := activityPreference(st); pref != "" {
		keywords = append(keywords, joinLocation(loc, pref))
		keywords = append(keywords, d.expandKeywords(ctx, loc, pref)...)
		for _, kw := range st.StageIntent(domain.StageActivity).Keywords {
			keywords = append(keywords, joinLocation(loc, kw))
		}
	} else if themed := d.profile.ThemeKeywords(themeOf(st)); len(themed) > 0 {
		for _, kw := range themed {
			keywords = append(keywords, joinLocation(loc, kw))
		}
	} else {
		for _, kw := range sp.Keywords {
			keywords = append(keywords, joinLocation(loc, kw))
		}
	}

	keywords = uniqueStrings(keywords)
	if len(keywords) > maxActivityQueries {
		keywords = keywords[:maxActivityQueries]
	}

	queries := make([]query, 0, len(keywords))
	for _, kw := range keywords {
		queries = append(queries, query{keyword: kw, limit: sp.PerQuery})
	}
	return queries
}

func (d *Discoverer) diningQueries(st *domain.SessionState) []query {
	sp := d.profile.Dining
	anchors := anchorsFrom(st, sp.Anchors, domain.StageActivity)
	if st.InputKind == domain.InputSpecificPlace && st.StartingVenue != nil {
		anchors = []domain.Venue{*st.StartingVenue}
	}

	pref := foodPreference(st)
	mood := d.profile.AtmosphereKeyword(atmosphereOf(st), domain.StageDining)
	return d.nearbyQueries(st, domain.StageDining, anchors, pref, mood)
}

func (d *Discoverer) cafeQueries(st *domain.SessionState) []query {
	sp := d.profile.Cafe
	anchors := anchorsFrom(st, sp.Anchors, domain.StageDining, domain.StageActivity)
	if len(anchors) == 0 && st.StartingVenue != nil {
		anchors = []domain.Venue{*st.StartingVenue}
	}

	pref := preferenceOf(st, domain.StageCafe)
	mood := d.profile.AtmosphereKeyword(atmosphereOf(st), domain.StageCafe)
	return d.nearbyQueries(st, domain.StageCafe, anchors, pref, mood)
}

func (d *Discoverer) drinkingQueries(st *domain.SessionState) []query {
	sp := d.profile.Drinking
	anchors := anchorsFrom(st, sp.Anchors, domain.StageCafe, domain.StageDining)
	if len(anchors) == 0 && st.StartingVenue != nil {
		anchors = []domain.Venue{*st.StartingVenue}
	}
	return d.nearbyQueries(st, domain.StageDrinking, anchors, preferenceOf(st, domain.StageDrinking), "")
}

// nearbyQueries builds one query per anchor: a preference keyword, else a mood
// keyword, else the stage's category (or plain keyword when it has none).
// Without anchors it falls back to a single location-wide keyword search.
func (d *Discoverer) nearbyQueries(st *domain.SessionState, stage domain.Stage, anchors []domain.Venue, pref, mood string) []query {
	sp := d.profile.Stage(stage)

	if len(anchors) == 0 {
		text := sp.Keyword
		switch {
		case pref != "":
			text = sp.PreferenceQuery(pref)
		case mood != "":
			text = mood
		}
		if text == "" || st.Location == "" {
			return nil
		}
		return []query{{keyword: joinLocation(st.Location, text), limit: sp.Max}}
	}

	radius := sp.ScaledRadius(st.Radius)
	queries := make([]query, 0, len(anchors))
	for _, a := range anchors {
		near := a.Point()
		q := query{near: &near, radius: radius, limit: sp.PerQuery}
		switch {
		case pref != "":
			q.keyword = sp.PreferenceQuery(pref)
		case mood != "":
			q.keyword = mood
		case sp.Category != "":
			q.category = sp.Category
		default:
			q.keyword = sp.Keyword
		}
		queries = append(queries, q)
	}
	return queries
}

// anchorsFrom returns up to n venues of the first stage in order that has any.
func anchorsFrom(st *domain.SessionState, n int, stages ...domain.Stage) []domain.Venue {
	for _, s := range stages {
		vs := st.CandidatesFor(s)
		if len(vs) == 0 {
			continue
		}
		if len(vs) > n {
			vs = vs[:n]
		}
		return vs
	}
	return nil
}

func activityPreference(st *domain.SessionState) string {
	if domain.MeaningfulPreference(st.ActivityPreference) {
		return strings.TrimSpace(st.ActivityPreference)
	}
	return preferenceOf(st, domain.StageActivity)
}

func foodPreference(st *domain.SessionState) string {
	if domain.MeaningfulPreference(st.FoodPreference) {
		return strings.TrimSpace(st.FoodPreference)
	}
	return preferenceOf(st, domain.StageDining)
}

func preferenceOf(st *domain.SessionState, stage domain.Stage) string {
	p := st.StageIntent(stage).Preference
	if !domain.MeaningfulPreference(p) {
		return ""
	}
	return strings.TrimSpace(p)
}

func themeOf(st *domain.SessionState) string {
	if st.Theme == nil {
		return ""
	}
	return st.Theme.Theme
}

func atmosphereOf(st *domain.SessionState) string {
	if st.Theme == nil {
		return ""
	}
	return st.Theme.Atmosphere
}

func joinLocation(loc, kw string) string {
	kw = strings.TrimSpace(kw)
	if loc == "" || strings.Contains(kw, loc) {
		return kw
	}
	return loc + " " + kw
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
