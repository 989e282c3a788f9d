package search

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ashureev/outing-planner/internal/domain"
)

//go:embed default_profile.yaml
var defaultProfileYAML []byte

// StageProfile configures the searches of one stage.
type StageProfile struct {
	Keywords           []string            `yaml:"keywords"`
	Themes             map[string][]string `yaml:"themes"`
	Category           string              `yaml:"category"`
	Keyword            string              `yaml:"keyword"`
	PreferenceTemplate string              `yaml:"preference_template"`
	Radius             int                 `yaml:"radius"`
	PerQuery           int                 `yaml:"per_query"`
	Max                int                 `yaml:"max"`
	Anchors            int                 `yaml:"anchors"`
}

// Atmosphere holds the dining and cafe keywords of a mood.
type Atmosphere struct {
	Dining string `yaml:"dining"`
	Cafe   string `yaml:"cafe"`
}

// Profile is the search vocabulary and limits used by discovery.
type Profile struct {
	Concurrency int                   `yaml:"concurrency"`
	Activity    StageProfile          `yaml:"activity"`
	Dining      StageProfile          `yaml:"dining"`
	Cafe        StageProfile          `yaml:"cafe"`
	Drinking    StageProfile          `yaml:"drinking"`
	Atmospheres map[string]Atmosphere `yaml:"atmospheres"`
}

// DefaultProfile returns the embedded profile.
func DefaultProfile() *Profile {
	p, err := ParseProfile(defaultProfileYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded search profile: %v", err))
	}
	return p
}

// LoadProfile reads a profile from path. An empty path yields the embedded default.
func LoadProfile(path string) (*Profile, error) {
	if path == "" {
		return DefaultProfile(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read search profile: %w", err)
	}
	p, err := ParseProfile(data)
	if err != nil {
		return nil, fmt.Errorf("parse search profile %s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile and fills unset limits.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the profile and applies defaults for zero limits.
func (p *Profile) Validate() error {
	if len(p.Activity.Keywords) == 0 {
		return fmt.Errorf("activity keywords are required")
	}
	if p.Dining.Category == "" || p.Cafe.Category == "" {
		return fmt.Errorf("dining and cafe category codes are required")
	}
	if p.Drinking.Keyword == "" {
		return fmt.Errorf("drinking keyword is required")
	}
	if p.Concurrency <= 0 {
		p.Concurrency = 4
	}
	for _, sp := range []*StageProfile{&p.Activity, &p.Dining, &p.Cafe, &p.Drinking} {
		if sp.PerQuery <= 0 {
			sp.PerQuery = 5
		}
		if sp.Max <= 0 {
			sp.Max = 5
		}
		if sp.Radius <= 0 {
			sp.Radius = 500
		}
		if sp.Anchors <= 0 {
			sp.Anchors = 2
		}
	}
	return nil
}

// Stage returns the profile of stage s.
func (p *Profile) Stage(s domain.Stage) StageProfile {
	switch s {
	case domain.StageActivity:
		return p.Activity
	case domain.StageDining:
		return p.Dining
	case domain.StageCafe:
		return p.Cafe
	default:
		return p.Drinking
	}
}

// ThemeKeywords returns the activity keywords of a theme, or nil when unknown.
func (p *Profile) ThemeKeywords(theme string) []string {
	return p.Activity.Themes[strings.ToLower(strings.TrimSpace(theme))]
}

// AtmosphereKeyword returns the keyword of a mood for a stage. Unknown moods
// and stages without a mood keyword yield "".
func (p *Profile) AtmosphereKeyword(mood string, s domain.Stage) string {
	a, ok := p.Atmospheres[strings.ToLower(strings.TrimSpace(mood))]
	if !ok {
		return ""
	}
	switch s {
	case domain.StageDining:
		return a.Dining
	case domain.StageCafe:
		return a.Cafe
	}
	return ""
}

// PreferenceQuery fills the stage's preference template.
func (sp StageProfile) PreferenceQuery(preference string) string {
	if sp.PreferenceTemplate == "" {
		return preference
	}
	return strings.ReplaceAll(sp.PreferenceTemplate, "{preference}", preference)
}

// ScaledRadius scales the stage's nearby radius by the session radius.
func (sp StageProfile) ScaledRadius(sessionRadius int) int {
	if sessionRadius <= 0 {
		return sp.Radius
	}
	return sp.Radius * sessionRadius / domain.InitialRadius
}
