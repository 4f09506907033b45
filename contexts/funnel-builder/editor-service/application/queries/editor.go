package queries

import (
	"context"
	"strings"

	"funnelforge/contexts/funnel-builder/editor-service/application/commands"
	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/editor-service/domain/errors"
	"funnelforge/contexts/funnel-builder/editor-service/ports"
)

type EditorQueryUseCase struct {
	Registry *commands.Registry
	Drafts   ports.DraftStore
}

// EditorState reads the live snapshot of an open session.
func (uc EditorQueryUseCase) EditorState(_ context.Context, editorID string) (commands.EditorState, error) {
	if uc.Registry == nil {
		return commands.EditorState{}, domainerrors.ErrEditorNotFound
	}
	state, ok := uc.Registry.State(strings.TrimSpace(editorID))
	if !ok {
		return commands.EditorState{}, domainerrors.ErrEditorNotFound
	}
	return state, nil
}

// Draft returns the last persisted auto-save payload for an editor.
func (uc EditorQueryUseCase) Draft(ctx context.Context, editorID string) (entities.DraftPayload, error) {
	editorID = strings.TrimSpace(editorID)
	if editorID == "" {
		return entities.DraftPayload{}, domainerrors.ErrInvalidEditorInput
	}
	return uc.Drafts.GetDraft(ctx, editorID)
}
