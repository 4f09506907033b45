package entities

import (
	"strings"
	"time"
)

// FlowSession tracks one participant moving through a funnel's enabled stages.
// Answers replace wholesale per stage; ClickOrder records the chronological
// order in which option ids were first selected and feeds scoring tie-breaks.
type FlowSession struct {
	SessionID         string
	FunnelID          string
	ParticipantName   string
	CurrentStageIndex int
	Answers           map[string][]string
	ClickOrder        []string
	IsComplete        bool
	Result            *QuizResult
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CurrentStage resolves the stage the participant is on. An empty flow has no
// current stage.
func (s FlowSession) CurrentStage(stages []Stage) (Stage, bool) {
	if len(stages) == 0 || s.CurrentStageIndex < 0 || s.CurrentStageIndex >= len(stages) {
		return Stage{}, false
	}
	return stages[s.CurrentStageIndex], true
}

// CanProceed reports whether the current stage's completion rule is met:
// intro stages need a participant name only when one is required, answerable
// stages need the configured selection count, everything else passes.
func (s FlowSession) CanProceed(stages []Stage) bool {
	stage, ok := s.CurrentStage(stages)
	if !ok {
		return false
	}
	switch {
	case stage.Type == StageTypeIntro:
		return !stage.RequiresName() || strings.TrimSpace(s.ParticipantName) != ""
	case stage.IsAnswerable():
		return len(s.Answers[stage.StageID]) >= stage.MultiSelect()
	default:
		return true
	}
}

// ShouldAutoAdvance is CanProceed narrowed to answerable stages that have not
// explicitly disabled autoAdvance. A UI uses CanProceed to enable a manual
// continue button and ShouldAutoAdvance to skip that button entirely.
func (s FlowSession) ShouldAutoAdvance(stages []Stage) bool {
	stage, ok := s.CurrentStage(stages)
	if !ok {
		return false
	}
	if !stage.IsAnswerable() || !stage.AutoAdvance() {
		return false
	}
	return len(s.Answers[stage.StageID]) >= stage.MultiSelect()
}

// AtLastStage reports whether Advance would terminate the flow.
func (s FlowSession) AtLastStage(stages []Stage) bool {
	return len(stages) > 0 && s.CurrentStageIndex == len(stages)-1
}

// StyleResult is one ranked category outcome. Derived, never persisted as a
// source of truth.
type StyleResult struct {
	CategoryID   string
	CategoryName string
	Points       int
	Percentage   int
}

// QuizResult is the full ranked outcome of a completed flow.
type QuizResult struct {
	Primary     StyleResult
	Secondaries []StyleResult
	AllStyles   []StyleResult
	TotalPoints int
	ComputedAt  time.Time
}
