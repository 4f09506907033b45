package entities

import (
	"strings"
	"time"
)

type StageType string

const (
	StageTypeIntro      StageType = "intro"
	StageTypeQuestion   StageType = "question"
	StageTypeStrategic  StageType = "strategic"
	StageTypeTransition StageType = "transition"
	StageTypeResult     StageType = "result"
	StageTypeOffer      StageType = "offer"
	StageTypeUpsell     StageType = "upsell"
	StageTypeThankYou   StageType = "thankyou"
	StageTypePage       StageType = "page"
)

// Stage is the runtime read model of one funnel screen. Config carries the
// type-specific settings authored in the builder (multiSelect, autoAdvance,
// requireName, displayType, blocks) as an opaque JSON object.
type Stage struct {
	StageID    string
	FunnelID   string
	Type       StageType
	Title      string
	OrderIndex int
	IsEnabled  bool
	Config     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// MultiSelect is the number of options a participant must choose before the
// stage counts as answered. Anything unset or non-positive falls back to 1.
func (s Stage) MultiSelect() int {
	value, ok := configNumber(s.Config, "multiSelect")
	if !ok || value < 1 {
		return 1
	}
	return value
}

// AutoAdvance reports whether reaching the selection threshold should move the
// participant forward without an explicit confirm. Only an explicit false in
// the stage config disables it.
func (s Stage) AutoAdvance() bool {
	if s.Config == nil {
		return true
	}
	raw, ok := s.Config["autoAdvance"]
	if !ok {
		return true
	}
	enabled, isBool := raw.(bool)
	return !isBool || enabled
}

// RequiresName reports whether the intro screen collects a participant name
// before the flow may continue.
func (s Stage) RequiresName() bool {
	if s.Config == nil {
		return false
	}
	required, _ := s.Config["requireName"].(bool)
	return required
}

func (s Stage) DisplayType() string {
	if s.Config == nil {
		return ""
	}
	value, _ := s.Config["displayType"].(string)
	return strings.TrimSpace(value)
}

// IsAnswerable reports whether the stage collects selectable options.
func (s Stage) IsAnswerable() bool {
	return s.Type == StageTypeQuestion || s.Type == StageTypeStrategic
}

// StageOption is one selectable choice on an answerable stage, optionally
// weighted toward a style category.
type StageOption struct {
	OptionID      string
	StageID       string
	Text          string
	ImageURL      string
	StyleCategory string
	Points        int
	OrderIndex    int
}

// EffectivePoints treats missing/non-positive weights as the default of 1.
func (o StageOption) EffectivePoints() int {
	if o.Points < 1 {
		return 1
	}
	return o.Points
}

// StyleCategory is a named outcome bucket the quiz can resolve into.
type StyleCategory struct {
	CategoryID  string
	FunnelID    string
	Name        string
	Description string
	ImageURL    string
}

// configNumber tolerates the numeric shapes a JSON config round-trip can
// produce.
func configNumber(config map[string]any, key string) (int, bool) {
	if config == nil {
		return 0, false
	}
	switch value := config[key].(type) {
	case int:
		return value, true
	case int64:
		return int(value), true
	case float64:
		return int(value), true
	default:
		return 0, false
	}
}
