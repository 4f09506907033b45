package unit

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	editorservice "funnelforge/contexts/funnel-builder/editor-service"
	"funnelforge/contexts/funnel-builder/editor-service/application/history"
	"funnelforge/contexts/funnel-builder/editor-service/domain/entities"
	editorerrors "funnelforge/contexts/funnel-builder/editor-service/domain/errors"
	httptransport "funnelforge/contexts/funnel-builder/editor-service/transport/http"
)

func blocksWithHeadline(text string) entities.StageBlocks {
	return entities.StageBlocks{
		"stage-1": {
			{BlockID: "block-1", Type: "headline", Content: map[string]any{"text": text}, OrderIndex: 0},
		},
	}
}

func TestHistoryUndoRedoLinearity(t *testing.T) {
	initial := blocksWithHeadline("v0")
	manager := history.NewManager(initial, history.Options{})
	defer manager.Stop()

	const edits = 5
	for i := 1; i <= edits; i++ {
		manager.SetState(blocksWithHeadline(fmt.Sprintf("v%d", i)))
	}

	for i := 0; i < edits; i++ {
		if _, ok := manager.Undo(); !ok {
			t.Fatalf("undo %d reported nothing to undo", i+1)
		}
	}
	if manager.CanUndo() {
		t.Fatal("past stack must be empty after undoing every edit")
	}
	if !reflect.DeepEqual(manager.State(), initial) {
		t.Fatalf("full undo must restore the initial state, got %+v", manager.State())
	}
	if _, ok := manager.Undo(); ok {
		t.Fatal("undo past the bottom of the stack must be a no-op")
	}

	if _, ok := manager.Redo(); !ok {
		t.Fatal("redo after undo must restore the next state")
	}
	if !reflect.DeepEqual(manager.State(), blocksWithHeadline("v1")) {
		t.Fatalf("redo restored the wrong state: %+v", manager.State())
	}
}

func TestHistoryDepthEvictsOldestSnapshots(t *testing.T) {
	manager := history.NewManager(blocksWithHeadline("v0"), history.Options{MaxDepth: 5})
	defer manager.Stop()

	for i := 1; i <= 10; i++ {
		manager.SetState(blocksWithHeadline(fmt.Sprintf("v%d", i)))
	}

	undos := 0
	for {
		if _, ok := manager.Undo(); !ok {
			break
		}
		undos++
	}
	if undos != 5 {
		t.Fatalf("expected exactly 5 undoable steps at depth 5, got %d", undos)
	}
	// The oldest recoverable snapshot is the state after the fifth edit;
	// everything before it is gone.
	if !reflect.DeepEqual(manager.State(), blocksWithHeadline("v5")) {
		t.Fatalf("expected v5 at the bottom of the bounded stack, got %+v", manager.State())
	}
}

func TestHistoryNewEditDiscardsRedoBranch(t *testing.T) {
	manager := history.NewManager(blocksWithHeadline("v0"), history.Options{})
	defer manager.Stop()

	manager.SetState(blocksWithHeadline("v1"))
	manager.SetState(blocksWithHeadline("v2"))
	manager.Undo()
	if !manager.CanRedo() {
		t.Fatal("expected a redo branch after undo")
	}

	manager.SetState(blocksWithHeadline("v1b"))
	if manager.CanRedo() {
		t.Fatal("a committed edit must discard the redo branch")
	}
	if !reflect.DeepEqual(manager.State(), blocksWithHeadline("v1b")) {
		t.Fatalf("unexpected live state: %+v", manager.State())
	}
}

func TestHistoryResetClearsStacksAndPending(t *testing.T) {
	manager := history.NewManager(blocksWithHeadline("v0"), history.Options{})
	defer manager.Stop()

	manager.SetState(blocksWithHeadline("v1"))
	manager.Undo()
	if !manager.PendingChanges() {
		t.Fatal("mutations must mark pending changes")
	}

	manager.ResetState(blocksWithHeadline("reloaded"))
	if manager.CanUndo() || manager.CanRedo() {
		t.Fatal("reset must clear both history stacks")
	}
	if manager.PendingChanges() {
		t.Fatal("reset must clear the pending flag")
	}
	if !reflect.DeepEqual(manager.State(), blocksWithHeadline("reloaded")) {
		t.Fatalf("unexpected state after reset: %+v", manager.State())
	}
}

func TestHistoryAutoSaveClearsPendingOnSuccess(t *testing.T) {
	var mu sync.Mutex
	var saved []entities.StageBlocks
	manager := history.NewManager(blocksWithHeadline("v0"), history.Options{
		AutoSaveInterval: 10 * time.Millisecond,
		Save: func(state entities.StageBlocks) error {
			mu.Lock()
			defer mu.Unlock()
			saved = append(saved, state)
			return nil
		},
	})
	defer manager.Stop()

	manager.SetState(blocksWithHeadline("v1"))
	if !manager.PendingChanges() {
		t.Fatal("edit must mark pending changes")
	}

	deadline := time.Now().Add(2 * time.Second)
	for manager.PendingChanges() {
		if time.Now().After(deadline) {
			t.Fatal("auto-save never cleared the pending flag")
		}
		time.Sleep(5 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(saved) == 0 {
		t.Fatal("expected at least one save call")
	}
	if !reflect.DeepEqual(saved[len(saved)-1], blocksWithHeadline("v1")) {
		t.Fatalf("auto-save flushed the wrong state: %+v", saved[len(saved)-1])
	}
	if manager.LastSavedAt().IsZero() {
		t.Fatal("successful save must record a save timestamp")
	}
}

func TestHistoryAutoSaveRetainsPendingOnFailure(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	manager := history.NewManager(blocksWithHeadline("v0"), history.Options{
		AutoSaveInterval: 10 * time.Millisecond,
		Save: func(entities.StageBlocks) error {
			mu.Lock()
			defer mu.Unlock()
			attempts++
			return errors.New("draft store unavailable")
		},
	})
	defer manager.Stop()

	manager.SetState(blocksWithHeadline("v1"))

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		tried := attempts
		mu.Unlock()
		if tried >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("failed auto-save never retried")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !manager.PendingChanges() {
		t.Fatal("failed saves must leave the pending flag set")
	}
	if !manager.LastSavedAt().IsZero() {
		t.Fatal("failed saves must not record a save timestamp")
	}
}

func TestHistoryFlushSavesImmediately(t *testing.T) {
	var mu sync.Mutex
	var saved []entities.StageBlocks
	manager := history.NewManager(blocksWithHeadline("v0"), history.Options{
		AutoSaveInterval: time.Hour,
		Save: func(state entities.StageBlocks) error {
			mu.Lock()
			defer mu.Unlock()
			saved = append(saved, state)
			return nil
		},
	})
	defer manager.Stop()

	if err := manager.Flush(); err != nil {
		t.Fatalf("flush with nothing pending failed: %v", err)
	}
	mu.Lock()
	if len(saved) != 0 {
		mu.Unlock()
		t.Fatal("flush with nothing pending must not save")
	}
	mu.Unlock()

	manager.SetState(blocksWithHeadline("v1"))
	if err := manager.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if manager.PendingChanges() {
		t.Fatal("flush must clear the pending flag")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(saved) != 1 || !reflect.DeepEqual(saved[0], blocksWithHeadline("v1")) {
		t.Fatalf("unexpected flush output: %+v", saved)
	}
}

func TestEditorSessionOpenEditUndoClose(t *testing.T) {
	module := editorservice.NewInMemoryModule(nil)
	module.Store.SeedStageBlocks("funnel-1", blocksWithHeadline("original"))

	editor, err := module.Handler.OpenEditorHandler(context.Background(), httptransport.OpenEditorRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("open editor failed: %v", err)
	}
	if editor.CanUndo || editor.PendingChanges {
		t.Fatalf("fresh editor must start clean, got %+v", editor)
	}

	edited, err := module.Handler.ApplyEditHandler(context.Background(), editor.EditorID, httptransport.ApplyEditRequest{
		StageID: "stage-1",
		Blocks: []httptransport.BlockPayload{
			{BlockID: "block-1", Type: "headline", Content: map[string]any{"text": "rewritten"}, OrderIndex: 0},
		},
	})
	if err != nil {
		t.Fatalf("apply edit failed: %v", err)
	}
	if !edited.CanUndo || !edited.PendingChanges {
		t.Fatalf("edit must be undoable and pending, got %+v", edited)
	}

	undone, err := module.Handler.UndoHandler(context.Background(), editor.EditorID)
	if err != nil {
		t.Fatalf("undo failed: %v", err)
	}
	if got := undone.StageBlocks["stage-1"][0].Content["text"]; got != "original" {
		t.Fatalf("undo must restore the loaded layout, got %v", got)
	}
	if !undone.CanRedo {
		t.Fatal("undo must leave a redo branch")
	}

	if err := module.Handler.CloseEditorHandler(context.Background(), editor.EditorID); err != nil {
		t.Fatalf("close editor failed: %v", err)
	}
	// Close flushes the session; the post-undo layout must be persisted.
	saved, ok := module.Store.SavedBlocks("stage-1")
	if !ok {
		t.Fatal("close must flush stage blocks to the store")
	}
	if saved[0].Content["text"] != "original" {
		t.Fatalf("flushed blocks do not match the session state: %+v", saved)
	}

	if _, err := module.Handler.UndoHandler(context.Background(), editor.EditorID); !errors.Is(err, editorerrors.ErrEditorNotFound) {
		t.Fatalf("operations on a closed editor must fail with ErrEditorNotFound, got %v", err)
	}
}

func TestEditorReloadDiscardsLocalHistory(t *testing.T) {
	module := editorservice.NewInMemoryModule(nil)
	module.Store.SeedStageBlocks("funnel-1", blocksWithHeadline("original"))

	editor, err := module.Handler.OpenEditorHandler(context.Background(), httptransport.OpenEditorRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("open editor failed: %v", err)
	}
	if _, err := module.Handler.ApplyEditHandler(context.Background(), editor.EditorID, httptransport.ApplyEditRequest{
		StageID: "stage-1",
		Blocks: []httptransport.BlockPayload{
			{BlockID: "block-1", Type: "headline", Content: map[string]any{"text": "local"}, OrderIndex: 0},
		},
	}); err != nil {
		t.Fatalf("apply edit failed: %v", err)
	}

	module.Store.SeedStageBlocks("funnel-1", blocksWithHeadline("remote"))
	reloaded, err := module.Handler.ReloadEditorHandler(context.Background(), editor.EditorID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.CanUndo || reloaded.CanRedo || reloaded.PendingChanges {
		t.Fatalf("reload must reset history and pending state, got %+v", reloaded)
	}
	if got := reloaded.StageBlocks["stage-1"][0].Content["text"]; got != "remote" {
		t.Fatalf("reload must pick up the stored layout, got %v", got)
	}
}

func TestEditorAppliedBlocksAreSortedByOrderIndex(t *testing.T) {
	module := editorservice.NewInMemoryModule(nil)

	editor, err := module.Handler.OpenEditorHandler(context.Background(), httptransport.OpenEditorRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("open editor failed: %v", err)
	}
	state, err := module.Handler.ApplyEditHandler(context.Background(), editor.EditorID, httptransport.ApplyEditRequest{
		StageID: "stage-1",
		Blocks: []httptransport.BlockPayload{
			{BlockID: "block-b", Type: "text", OrderIndex: 2},
			{BlockID: "block-a", Type: "headline", OrderIndex: 1},
		},
	})
	if err != nil {
		t.Fatalf("apply edit failed: %v", err)
	}
	blocks := state.StageBlocks["stage-1"]
	if len(blocks) != 2 || blocks[0].BlockID != "block-a" || blocks[1].BlockID != "block-b" {
		t.Fatalf("blocks must come back ordered by orderIndex, got %+v", blocks)
	}
}
