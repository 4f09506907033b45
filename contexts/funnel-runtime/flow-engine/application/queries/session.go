package queries

import (
	"context"
	"strings"
	"time"

	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	domainerrors "funnelforge/contexts/funnel-runtime/flow-engine/domain/errors"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/scoring"
	"funnelforge/contexts/funnel-runtime/flow-engine/ports"
)

type SessionQueryUseCase struct {
	Sessions ports.SessionRepository
	Stages   ports.StageReader
	Clock    ports.Clock
}

// SessionState returns the session plus the enabled stages it runs against.
func (uc SessionQueryUseCase) SessionState(ctx context.Context, sessionID string) (entities.FlowSession, []entities.Stage, error) {
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

// SessionResult recomputes the ranked style outcome from the answers collected
// so far. The result is a pure function of the current answer set, options,
// and categories; it is never read back from storage as a source of truth.
func (uc SessionQueryUseCase) SessionResult(ctx context.Context, sessionID string) (entities.QuizResult, error) {
	session, stages, err := uc.SessionState(ctx, sessionID)
	if err != nil {
		return entities.QuizResult{}, err
	}
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
	return scoring.Calculate(session.Answers, session.ClickOrder, options, categories, uc.now()), nil
}

func (uc SessionQueryUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
