package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "funnelforge/contexts/funnel-runtime/flow-engine/application"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	domainerrors "funnelforge/contexts/funnel-runtime/flow-engine/domain/errors"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/scoring"
	"funnelforge/contexts/funnel-runtime/flow-engine/ports"
)

// StartSessionCommand opens a participant run against a funnel's enabled
// stage sequence.
type StartSessionCommand struct {
	FunnelID        string
	ParticipantName string
}

// RecordAnswerCommand replaces the answer list for one stage. The option ids
// are not validated here; unresolvable ids simply score zero later.
type RecordAnswerCommand struct {
	SessionID string
	StageID   string
	OptionIDs []string
}

// SessionState pairs a session with the enabled stages it runs against so the
// transport layer can derive current-stage and proceed/auto-advance flags.
type SessionState struct {
	Session entities.FlowSession
	Stages  []entities.Stage
}

// SessionUseCase drives a participant linearly through the enabled stage
// sequence and triggers scoring on the terminal transition.
type SessionUseCase struct {
	Sessions ports.SessionRepository
	Stages   ports.StageReader
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc SessionUseCase) StartSession(ctx context.Context, cmd StartSessionCommand) (SessionState, error) {
	logger := application.ResolveLogger(uc.Logger)
	funnelID := strings.TrimSpace(cmd.FunnelID)
	if funnelID == "" {
		logger.Warn("session start validation failed",
			"event", "flow_session_start_validation_failed",
			"module", "funnel-runtime/flow-engine",
			"layer", "application",
		)
		return SessionState{}, domainerrors.ErrInvalidSessionInput
	}

	stages, err := uc.Stages.ListEnabledStages(ctx, funnelID)
	if err != nil {
		return SessionState{}, err
	}

	sessionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return SessionState{}, err
	}
	now := uc.now()
	session := entities.FlowSession{
		SessionID:       sessionID,
		FunnelID:        funnelID,
		ParticipantName: strings.TrimSpace(cmd.ParticipantName),
		Answers:         make(map[string][]string),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return SessionState{}, err
	}

	logger.Info("flow session started",
		"event", "flow_session_started",
		"module", "funnel-runtime/flow-engine",
		"layer", "application",
		"session_id", session.SessionID,
		"funnel_id", funnelID,
		"stage_count", len(stages),
	)
	return SessionState{Session: session, Stages: stages}, nil
}

// RecordAnswer replaces the stage's answer list wholesale and appends
// first-seen option ids to the session click order, which scoring later uses
// as the tie-break key.
func (uc SessionUseCase) RecordAnswer(ctx context.Context, cmd RecordAnswerCommand) (SessionState, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.SessionID) == "" || strings.TrimSpace(cmd.StageID) == "" {
		logger.Warn("record answer validation failed",
			"event", "flow_record_answer_validation_failed",
			"module", "funnel-runtime/flow-engine",
			"layer", "application",
			"session_id", strings.TrimSpace(cmd.SessionID),
			"stage_id", strings.TrimSpace(cmd.StageID),
		)
		return SessionState{}, domainerrors.ErrInvalidSessionInput
	}

	session, stages, err := uc.loadState(ctx, cmd.SessionID)
	if err != nil {
		return SessionState{}, err
	}
	if session.IsComplete {
		return SessionState{}, domainerrors.ErrSessionComplete
	}

	stageID := strings.TrimSpace(cmd.StageID)
	selected := make([]string, 0, len(cmd.OptionIDs))
	for _, optionID := range cmd.OptionIDs {
		optionID = strings.TrimSpace(optionID)
		if optionID != "" {
			selected = append(selected, optionID)
		}
	}

	if session.Answers == nil {
		session.Answers = make(map[string][]string)
	}
	session.Answers[stageID] = selected
	session.ClickOrder = appendNewClicks(session.ClickOrder, selected)
	session.UpdatedAt = uc.now()

	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return SessionState{}, err
	}
	logger.Info("answer recorded",
		"event", "flow_answer_recorded",
		"module", "funnel-runtime/flow-engine",
		"layer", "application",
		"session_id", session.SessionID,
		"stage_id", stageID,
		"selection_count", len(selected),
	)
	return SessionState{Session: session, Stages: stages}, nil
}

// Advance moves to the next enabled stage, or, on the last one, invokes the
// scoring engine and marks the session complete. This is the sequence's sole
// terminal transition; a participant who stops mid-flow simply leaves the
// session in place for later resumption.
func (uc SessionUseCase) Advance(ctx context.Context, sessionID string) (SessionState, error) {
	logger := application.ResolveLogger(uc.Logger)
	session, stages, err := uc.loadState(ctx, sessionID)
	if err != nil {
		return SessionState{}, err
	}
	if len(stages) == 0 || session.IsComplete {
		return SessionState{Session: session, Stages: stages}, nil
	}

	now := uc.now()
	if !session.AtLastStage(stages) {
		session.CurrentStageIndex++
		session.UpdatedAt = now
		if err := uc.Sessions.SaveSession(ctx, session); err != nil {
			return SessionState{}, err
		}
		logger.Info("flow advanced",
			"event", "flow_advanced",
			"module", "funnel-runtime/flow-engine",
			"layer", "application",
			"session_id", session.SessionID,
			"stage_index", session.CurrentStageIndex,
		)
		return SessionState{Session: session, Stages: stages}, nil
	}

	result, err := uc.score(ctx, session, stages, now)
	if err != nil {
		return SessionState{}, err
	}
	session.Result = &result
	session.IsComplete = true
	session.UpdatedAt = now
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return SessionState{}, err
	}
	if err := uc.appendSessionCompleted(ctx, session, now); err != nil {
		return SessionState{}, err
	}

	logger.Info("flow session completed",
		"event", "flow_session_completed",
		"module", "funnel-runtime/flow-engine",
		"layer", "application",
		"session_id", session.SessionID,
		"funnel_id", session.FunnelID,
		"primary_style", result.Primary.CategoryID,
		"total_points", result.TotalPoints,
	)
	return SessionState{Session: session, Stages: stages}, nil
}

// Retreat steps back one stage. It never clears the answer recorded for the
// stage being left or re-entered.
func (uc SessionUseCase) Retreat(ctx context.Context, sessionID string) (SessionState, error) {
	session, stages, err := uc.loadState(ctx, sessionID)
	if err != nil {
		return SessionState{}, err
	}
	if len(stages) == 0 || session.CurrentStageIndex == 0 {
		return SessionState{Session: session, Stages: stages}, nil
	}
	session.CurrentStageIndex--
	session.UpdatedAt = uc.now()
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return SessionState{}, err
	}
	return SessionState{Session: session, Stages: stages}, nil
}

// Reset returns the session to the first stage and clears every collected
// answer, the click order, and any computed result.
func (uc SessionUseCase) Reset(ctx context.Context, sessionID string) (SessionState, error) {
	session, stages, err := uc.loadState(ctx, sessionID)
	if err != nil {
		return SessionState{}, err
	}
	session.CurrentStageIndex = 0
	session.Answers = make(map[string][]string)
	session.ClickOrder = nil
	session.IsComplete = false
	session.Result = nil
	session.UpdatedAt = uc.now()
	if err := uc.Sessions.SaveSession(ctx, session); err != nil {
		return SessionState{}, err
	}
	return SessionState{Session: session, Stages: stages}, nil
}

func (uc SessionUseCase) score(
	ctx context.Context,
	session entities.FlowSession,
	stages []entities.Stage,
	computedAt time.Time,
) (entities.QuizResult, error) {
	stageIDs := make([]string, 0, len(stages))
	for _, stage := range stages {
		stageIDs = append(stageIDs, stage.StageID)
	}
	options, err := uc.Stages.ListOptionsByStages(ctx, stageIDs)
	if err != nil {
		return entities.QuizResult{}, err
	}
	categories, err := uc.Stages.ListCategories(ctx, session.FunnelID)
	if err != nil {
		return entities.QuizResult{}, err
	}
	return scoring.Calculate(session.Answers, session.ClickOrder, options, categories, computedAt), nil
}

func (uc SessionUseCase) loadState(ctx context.Context, sessionID string) (entities.FlowSession, []entities.Stage, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return entities.FlowSession{}, nil, domainerrors.ErrInvalidSessionInput
	}
	session, err := uc.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return entities.FlowSession{}, nil, err
	}
	stages, err := uc.Stages.ListEnabledStages(ctx, session.FunnelID)
	if err != nil {
		return entities.FlowSession{}, nil, err
	}
	return session, stages, nil
}

func (uc SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func appendNewClicks(clickOrder []string, selected []string) []string {
	seen := make(map[string]bool, len(clickOrder))
	for _, optionID := range clickOrder {
		seen[optionID] = true
	}
	for _, optionID := range selected {
		if !seen[optionID] {
			clickOrder = append(clickOrder, optionID)
			seen[optionID] = true
		}
	}
	return clickOrder
}
