package entities

import "time"

type FunnelStatus string

const (
	FunnelStatusDraft     FunnelStatus = "draft"
	FunnelStatusPublished FunnelStatus = "published"
	FunnelStatusArchived  FunnelStatus = "archived"
)

// Funnel is a named, ordered sequence of stages presented to participants.
type Funnel struct {
	FunnelID  string
	Name      string
	Status    FunnelStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stage is the authoring-side record of one funnel screen. The runtime reads
// the same rows through its own projection; this side owns the writes.
type Stage struct {
	StageID    string
	FunnelID   string
	Type       string
	Title      string
	OrderIndex int
	IsEnabled  bool
	Config     map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// StageOption is a selectable choice attached to a question-type stage.
// Points default to 1; once a run has been scored against an option it is
// treated as immutable by convention, not enforcement.
type StageOption struct {
	OptionID      string
	StageID       string
	Text          string
	ImageURL      string
	StyleCategory string
	Points        int
	OrderIndex    int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StyleCategory is defined at funnel level and forms the universe of possible
// result buckets.
type StyleCategory struct {
	CategoryID  string
	FunnelID    string
	Name        string
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

var validStageTypes = map[string]bool{
	"intro":      true,
	"question":   true,
	"strategic":  true,
	"transition": true,
	"result":     true,
	"offer":      true,
	"upsell":     true,
	"thankyou":   true,
	"page":       true,
}

// IsValidStageType reports whether the given type is one of the supported
// funnel screen kinds.
func IsValidStageType(stageType string) bool {
	return validStageTypes[stageType]
}
