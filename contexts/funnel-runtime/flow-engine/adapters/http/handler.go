package httpadapter

import (
	"context"
	"log/slog"

	"funnelforge/contexts/funnel-runtime/flow-engine/application/commands"
	"funnelforge/contexts/funnel-runtime/flow-engine/application/queries"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	httptransport "funnelforge/contexts/funnel-runtime/flow-engine/transport/http"
)

type Handler struct {
	Sessions commands.SessionUseCase
	Queries  queries.SessionQueryUseCase
	Logger   *slog.Logger
}

func (h Handler) StartSessionHandler(ctx context.Context, req httptransport.StartSessionRequest) (httptransport.SessionResponse, error) {
	state, err := h.Sessions.StartSession(ctx, commands.StartSessionCommand{
		FunnelID:        req.FunnelID,
		ParticipantName: req.ParticipantName,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(state.Session, state.Stages), nil
}

func (h Handler) RecordAnswerHandler(
	ctx context.Context,
	sessionID string,
	req httptransport.RecordAnswerRequest,
) (httptransport.SessionResponse, error) {
	state, err := h.Sessions.RecordAnswer(ctx, commands.RecordAnswerCommand{
		SessionID: sessionID,
		StageID:   req.StageID,
		OptionIDs: req.OptionIDs,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(state.Session, state.Stages), nil
}

func (h Handler) AdvanceHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	state, err := h.Sessions.Advance(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(state.Session, state.Stages), nil
}

func (h Handler) RetreatHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	state, err := h.Sessions.Retreat(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(state.Session, state.Stages), nil
}

func (h Handler) ResetHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	state, err := h.Sessions.Reset(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(state.Session, state.Stages), nil
}

func (h Handler) GetSessionHandler(ctx context.Context, sessionID string) (httptransport.SessionResponse, error) {
	session, stages, err := h.Queries.SessionState(ctx, sessionID)
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return mapSession(session, stages), nil
}

func (h Handler) SessionResultHandler(ctx context.Context, sessionID string) (httptransport.QuizResultView, error) {
	result, err := h.Queries.SessionResult(ctx, sessionID)
	if err != nil {
		return httptransport.QuizResultView{}, err
	}
	return mapResult(result), nil
}

func mapSession(session entities.FlowSession, stages []entities.Stage) httptransport.SessionResponse {
	resp := httptransport.SessionResponse{
		SessionID:         session.SessionID,
		FunnelID:          session.FunnelID,
		ParticipantName:   session.ParticipantName,
		CurrentStageIndex: session.CurrentStageIndex,
		StageCount:        len(stages),
		Answers:           session.Answers,
		CanProceed:        session.CanProceed(stages),
		ShouldAutoAdvance: session.ShouldAutoAdvance(stages),
		IsComplete:        session.IsComplete,
	}
	if stage, ok := session.CurrentStage(stages); ok {
		resp.CurrentStage = &httptransport.StageView{
			StageID:    stage.StageID,
			Type:       string(stage.Type),
			Title:      stage.Title,
			OrderIndex: stage.OrderIndex,
			Config:     stage.Config,
		}
	}
	if session.Result != nil {
		view := mapResult(*session.Result)
		resp.Result = &view
	}
	return resp
}

func mapResult(result entities.QuizResult) httptransport.QuizResultView {
	return httptransport.QuizResultView{
		Primary:     mapStyle(result.Primary),
		Secondaries: mapStyles(result.Secondaries),
		AllStyles:   mapStyles(result.AllStyles),
		TotalPoints: result.TotalPoints,
	}
}

func mapStyles(styles []entities.StyleResult) []httptransport.StyleResultView {
	items := make([]httptransport.StyleResultView, 0, len(styles))
	for _, style := range styles {
		items = append(items, mapStyle(style))
	}
	return items
}

func mapStyle(style entities.StyleResult) httptransport.StyleResultView {
	return httptransport.StyleResultView{
		CategoryID:   style.CategoryID,
		CategoryName: style.CategoryName,
		Points:       style.Points,
		Percentage:   style.Percentage,
	}
}
