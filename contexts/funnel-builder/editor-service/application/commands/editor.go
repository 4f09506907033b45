package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	application "funnelforge/contexts/funnel-builder/editor-service/application"
	"funnelforge/contexts/funnel-builder/editor-service/application/history"
	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/editor-service/domain/errors"
	"funnelforge/contexts/funnel-builder/editor-service/ports"
)

type editorSession struct {
	editorID string
	funnelID string
	manager  *history.Manager
}

// Registry holds the open editor sessions for this process. One session per
// editor id; the history manager inside each session does its own locking.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*editorSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*editorSession)}
}

func (r *Registry) get(editorID string) (*editorSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[strings.TrimSpace(editorID)]
	return session, ok
}

func (r *Registry) put(session *editorSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.editorID] = session
}

// State returns the current snapshot for an open session.
func (r *Registry) State(editorID string) (EditorState, bool) {
	session, ok := r.get(editorID)
	if !ok {
		return EditorState{}, false
	}
	return stateOf(session), true
}

func (r *Registry) remove(editorID string) (*editorSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[strings.TrimSpace(editorID)]
	if ok {
		delete(r.sessions, strings.TrimSpace(editorID))
	}
	return session, ok
}

type OpenEditorCommand struct {
	FunnelID string
}

type ApplyEditCommand struct {
	EditorID string
	StageID  string
	Blocks   []entities.Block
}

// EditorState is the snapshot returned to transport after every operation.
type EditorState struct {
	EditorID       string
	FunnelID       string
	StageBlocks    entities.StageBlocks
	CanUndo        bool
	CanRedo        bool
	PendingChanges bool
	LastSavedAt    time.Time
}

type EditorUseCase struct {
	Registry         *Registry
	Drafts           ports.DraftStore
	Loader           ports.StageBlocksLoader
	StageSaver       ports.StageConfigSaver
	Clock            ports.Clock
	IDGen            ports.IDGenerator
	Logger           *slog.Logger
	HistoryDepth     int
	AutoSaveInterval time.Duration
}

// OpenEditor loads the funnel's block layout and starts a fresh history
// session around it.
func (uc EditorUseCase) OpenEditor(ctx context.Context, cmd OpenEditorCommand) (EditorState, error) {
	logger := application.ResolveLogger(uc.Logger)
	funnelID := strings.TrimSpace(cmd.FunnelID)
	if funnelID == "" {
		return EditorState{}, domainerrors.ErrInvalidEditorInput
	}
	if uc.Registry == nil {
		return EditorState{}, domainerrors.ErrInvalidEditorInput
	}
	blocks, err := uc.Loader.LoadStageBlocks(ctx, funnelID)
	if err != nil {
		return EditorState{}, err
	}
	editorID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return EditorState{}, err
	}

	session := &editorSession{
		editorID: editorID,
		funnelID: funnelID,
	}
	session.manager = history.NewManager(blocks, history.Options{
		MaxDepth:         uc.HistoryDepth,
		AutoSaveInterval: uc.AutoSaveInterval,
		Save:             uc.saveFunc(session),
		Clock:            uc.nowFunc(),
		Logger:           logger,
	})
	uc.Registry.put(session)

	logger.Info("editor opened",
		"event", "editor_opened",
		"module", "funnel-builder/editor-service",
		"layer", "application",
		"editor_id", editorID,
		"funnel_id", funnelID,
	)
	return stateOf(session), nil
}

// ApplyEdit replaces one stage's block list as a single committed mutation.
func (uc EditorUseCase) ApplyEdit(_ context.Context, cmd ApplyEditCommand) (EditorState, error) {
	stageID := strings.TrimSpace(cmd.StageID)
	if stageID == "" {
		return EditorState{}, domainerrors.ErrInvalidEditorInput
	}
	session, ok := uc.Registry.get(cmd.EditorID)
	if !ok {
		return EditorState{}, domainerrors.ErrEditorNotFound
	}

	next := session.manager.State()
	blocks := append([]entities.Block(nil), cmd.Blocks...)
	sort.SliceStable(blocks, func(i, j int) bool {
		return blocks[i].OrderIndex < blocks[j].OrderIndex
	})
	next[stageID] = blocks
	session.manager.SetState(next)
	return stateOf(session), nil
}

// UndoEdit is a no-op with the current state when the past stack is empty.
func (uc EditorUseCase) UndoEdit(_ context.Context, editorID string) (EditorState, error) {
	session, ok := uc.Registry.get(editorID)
	if !ok {
		return EditorState{}, domainerrors.ErrEditorNotFound
	}
	session.manager.Undo()
	return stateOf(session), nil
}

func (uc EditorUseCase) RedoEdit(_ context.Context, editorID string) (EditorState, error) {
	session, ok := uc.Registry.get(editorID)
	if !ok {
		return EditorState{}, domainerrors.ErrEditorNotFound
	}
	session.manager.Redo()
	return stateOf(session), nil
}

// ReloadEditor discards local history and re-reads the stored layout. This is
// the external-reload path and never counts as an undoable mutation.
func (uc EditorUseCase) ReloadEditor(ctx context.Context, editorID string) (EditorState, error) {
	session, ok := uc.Registry.get(editorID)
	if !ok {
		return EditorState{}, domainerrors.ErrEditorNotFound
	}
	blocks, err := uc.Loader.LoadStageBlocks(ctx, session.funnelID)
	if err != nil {
		return EditorState{}, err
	}
	session.manager.ResetState(blocks)
	return stateOf(session), nil
}

// CloseEditor flushes pending changes and removes the session. A failed flush
// still closes the session; the draft loss is logged, not returned.
func (uc EditorUseCase) CloseEditor(_ context.Context, editorID string) error {
	logger := application.ResolveLogger(uc.Logger)
	session, ok := uc.Registry.remove(editorID)
	if !ok {
		return domainerrors.ErrEditorNotFound
	}
	if err := session.manager.Flush(); err != nil {
		logger.Warn("editor close flush failed",
			"event", "editor_close_flush_failed",
			"module", "funnel-builder/editor-service",
			"layer", "application",
			"editor_id", session.editorID,
			"error", err.Error(),
		)
	}
	session.manager.Stop()
	logger.Info("editor closed",
		"event", "editor_closed",
		"module", "funnel-builder/editor-service",
		"layer", "application",
		"editor_id", session.editorID,
		"funnel_id", session.funnelID,
	)
	return nil
}

// saveFunc writes the draft payload and flushes every stage's block list back
// to the funnel store. Draft write failure aborts; per-stage flush failures
// abort so the pending flag survives for the next tick.
func (uc EditorUseCase) saveFunc(session *editorSession) history.SaveFunc {
	return func(state entities.StageBlocks) error {
		ctx := context.Background()
		now := uc.now()
		if uc.Drafts != nil {
			payload := entities.DraftPayload{
				StageBlocks: state,
				SavedAt:     now,
			}
			if err := uc.Drafts.PutDraft(ctx, session.editorID, payload); err != nil {
				return err
			}
		}
		if uc.StageSaver != nil {
			for stageID, blocks := range state {
				if err := uc.StageSaver.SaveStageBlocks(ctx, stageID, blocks); err != nil {
					return err
				}
			}
		}
		return nil
	}
}

func stateOf(session *editorSession) EditorState {
	return EditorState{
		EditorID:       session.editorID,
		FunnelID:       session.funnelID,
		StageBlocks:    session.manager.State(),
		CanUndo:        session.manager.CanUndo(),
		CanRedo:        session.manager.CanRedo(),
		PendingChanges: session.manager.PendingChanges(),
		LastSavedAt:    session.manager.LastSavedAt(),
	}
}

func (uc EditorUseCase) nowFunc() func() time.Time {
	return func() time.Time { return uc.now() }
}

func (uc EditorUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
