package domain

import (
	"slices"
	"strings"
)

// StageIntent is what the user asked for at one stage.
type StageIntent struct {
	Required   bool     `json:"required"`
	Preference string   `json:"preference,omitempty"`
	Keywords   []string `json:"keywords,omitempty"`
}

// Intent is the structured reading of a free-text planning request.
type Intent struct {
	Location string      `json:"location"`
	Activity StageIntent `json:"activity"`
	Dining   StageIntent `json:"dining"`
	Cafe     StageIntent `json:"cafe"`
	Drinking StageIntent `json:"drinking"`
}

// DefaultIntent returns an intent where every stage is required and nothing is preferred.
func DefaultIntent(location string) Intent {
	return Intent{
		Location: location,
		Activity: StageIntent{Required: true},
		Dining:   StageIntent{Required: true},
		Cafe:     StageIntent{Required: true},
		Drinking: StageIntent{Required: true},
	}
}

// For returns the stage intent of s.
func (i *Intent) For(s Stage) StageIntent {
	if i == nil {
		return StageIntent{Required: true}
	}
	switch s {
	case StageActivity:
		return i.Activity
	case StageDining:
		return i.Dining
	case StageCafe:
		return i.Cafe
	case StageDrinking:
		return i.Drinking
	}
	return StageIntent{Required: true}
}

// Set replaces the stage intent of s.
func (i *Intent) Set(s Stage, si StageIntent) {
	switch s {
	case StageActivity:
		i.Activity = si
	case StageDining:
		i.Dining = si
	case StageCafe:
		i.Cafe = si
	case StageDrinking:
		i.Drinking = si
	}
}

var noPreference = []string{
	"", "none", "any", "anything", "whatever", "no preference", "don't care",
	"상관없음", "상관없어", "없음", "아무거나",
}

// MeaningfulPreference reports whether p expresses an actual preference.
func MeaningfulPreference(p string) bool {
	return !slices.Contains(noPreference, strings.ToLower(strings.TrimSpace(p)))
}
