package httpadapter

import (
	"context"
	"log/slog"

	"funnelforge/contexts/funnel-builder/editor-service/application/commands"
	"funnelforge/contexts/funnel-builder/editor-service/application/queries"
	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
	httptransport "funnelforge/contexts/funnel-builder/editor-service/transport/http"
)

type Handler struct {
	Editors commands.EditorUseCase
	Queries queries.EditorQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) OpenEditorHandler(ctx context.Context, req httptransport.OpenEditorRequest) (httptransport.EditorResponse, error) {
	state, err := h.Editors.OpenEditor(ctx, commands.OpenEditorCommand{FunnelID: req.FunnelID})
	if err != nil {
		return httptransport.EditorResponse{}, err
	}
	return mapEditorState(state), nil
}

func (h Handler) ApplyEditHandler(ctx context.Context, editorID string, req httptransport.ApplyEditRequest) (httptransport.EditorResponse, error) {
	blocks := make([]entities.Block, 0, len(req.Blocks))
	for _, block := range req.Blocks {
		blocks = append(blocks, entities.Block{
			BlockID:    block.BlockID,
			Type:       block.Type,
			Content:    block.Content,
			OrderIndex: block.OrderIndex,
		})
	}
	state, err := h.Editors.ApplyEdit(ctx, commands.ApplyEditCommand{
		EditorID: editorID,
		StageID:  req.StageID,
		Blocks:   blocks,
	})
	if err != nil {
		return httptransport.EditorResponse{}, err
	}
	return mapEditorState(state), nil
}

func (h Handler) UndoHandler(ctx context.Context, editorID string) (httptransport.EditorResponse, error) {
	state, err := h.Editors.UndoEdit(ctx, editorID)
	if err != nil {
		return httptransport.EditorResponse{}, err
	}
	return mapEditorState(state), nil
}

func (h Handler) RedoHandler(ctx context.Context, editorID string) (httptransport.EditorResponse, error) {
	state, err := h.Editors.RedoEdit(ctx, editorID)
	if err != nil {
		return httptransport.EditorResponse{}, err
	}
	return mapEditorState(state), nil
}

func (h Handler) ReloadEditorHandler(ctx context.Context, editorID string) (httptransport.EditorResponse, error) {
	state, err := h.Editors.ReloadEditor(ctx, editorID)
	if err != nil {
		return httptransport.EditorResponse{}, err
	}
	return mapEditorState(state), nil
}

func (h Handler) CloseEditorHandler(ctx context.Context, editorID string) error {
	return h.Editors.CloseEditor(ctx, editorID)
}

func (h Handler) GetEditorHandler(ctx context.Context, editorID string) (httptransport.EditorResponse, error) {
	state, err := h.Queries.EditorState(ctx, editorID)
	if err != nil {
		return httptransport.EditorResponse{}, err
	}
	return mapEditorState(state), nil
}

func (h Handler) GetDraftHandler(ctx context.Context, editorID string) (httptransport.DraftResponse, error) {
	draft, err := h.Queries.Draft(ctx, editorID)
	if err != nil {
		return httptransport.DraftResponse{}, err
	}
	return httptransport.DraftResponse{
		StageBlocks: mapStageBlocks(draft.StageBlocks),
		SavedAt:     draft.SavedAt,
	}, nil
}

func mapEditorState(state commands.EditorState) httptransport.EditorResponse {
	resp := httptransport.EditorResponse{
		EditorID:       state.EditorID,
		FunnelID:       state.FunnelID,
		StageBlocks:    mapStageBlocks(state.StageBlocks),
		CanUndo:        state.CanUndo,
		CanRedo:        state.CanRedo,
		PendingChanges: state.PendingChanges,
	}
	if !state.LastSavedAt.IsZero() {
		savedAt := state.LastSavedAt
		resp.LastSavedAt = &savedAt
	}
	return resp
}

func mapStageBlocks(blocks entities.StageBlocks) map[string][]httptransport.BlockPayload {
	out := make(map[string][]httptransport.BlockPayload, len(blocks))
	for stageID, items := range blocks {
		views := make([]httptransport.BlockPayload, 0, len(items))
		for _, block := range items {
			views = append(views, httptransport.BlockPayload{
				BlockID:    block.BlockID,
				Type:       block.Type,
				Content:    block.Content,
				OrderIndex: block.OrderIndex,
			})
		}
		out[stageID] = views
	}
	return out
}
