package unit

import (
	"context"
	"errors"
	"testing"

	flowengine "funnelforge/contexts/funnel-runtime/flow-engine"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	flowerrors "funnelforge/contexts/funnel-runtime/flow-engine/domain/errors"
	httptransport "funnelforge/contexts/funnel-runtime/flow-engine/transport/http"
)

func seedThreeQuestionFlow(module flowengine.Module) {
	for i, stageID := range []string{"stage-1", "stage-2", "stage-3"} {
		module.Store.SetStage(entities.Stage{
			StageID:    stageID,
			FunnelID:   "funnel-1",
			Type:       entities.StageTypeQuestion,
			OrderIndex: i,
			IsEnabled:  true,
		})
	}
	module.Store.SetCategory(entities.StyleCategory{
		CategoryID: "cat-natural",
		FunnelID:   "funnel-1",
		Name:       "Natural",
	})
	module.Store.SetOption(entities.StageOption{
		OptionID:      "opt-1",
		StageID:       "stage-1",
		StyleCategory: "cat-natural",
		Points:        2,
	})
}

func TestFlowCompletesOnlyOnFinalAdvance(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)
	seedThreeQuestionFlow(module)

	session, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	if session.StageCount != 3 || session.CurrentStageIndex != 0 {
		t.Fatalf("unexpected initial state: count=%d index=%d", session.StageCount, session.CurrentStageIndex)
	}

	if _, err := module.Handler.RecordAnswerHandler(context.Background(), session.SessionID, httptransport.RecordAnswerRequest{
		StageID:   "stage-1",
		OptionIDs: []string{"opt-1"},
	}); err != nil {
		t.Fatalf("record answer failed: %v", err)
	}

	for want := 1; want <= 2; want++ {
		state, err := module.Handler.AdvanceHandler(context.Background(), session.SessionID)
		if err != nil {
			t.Fatalf("advance to index %d failed: %v", want, err)
		}
		if state.IsComplete {
			t.Fatalf("flow completed early at index %d", want)
		}
		if state.Result != nil {
			t.Fatal("result must stay nil before the final stage")
		}
		if state.CurrentStageIndex != want {
			t.Fatalf("expected index %d, got %d", want, state.CurrentStageIndex)
		}
	}

	final, err := module.Handler.AdvanceHandler(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("final advance failed: %v", err)
	}
	if !final.IsComplete {
		t.Fatal("expected completed flow after advancing past the last stage")
	}
	if final.Result == nil {
		t.Fatal("expected a computed result on completion")
	}
	if final.Result.Primary.CategoryID != "cat-natural" {
		t.Fatalf("expected primary cat-natural, got %s", final.Result.Primary.CategoryID)
	}

	_, err = module.Handler.RecordAnswerHandler(context.Background(), session.SessionID, httptransport.RecordAnswerRequest{
		StageID:   "stage-1",
		OptionIDs: []string{"opt-1"},
	})
	if !errors.Is(err, flowerrors.ErrSessionComplete) {
		t.Fatalf("expected ErrSessionComplete after the flow finished, got %v", err)
	}
}

func TestCanProceedTracksMultiSelectThreshold(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)
	module.Store.SetStage(entities.Stage{
		StageID:   "stage-multi",
		FunnelID:  "funnel-1",
		Type:      entities.StageTypeQuestion,
		IsEnabled: true,
		Config:    map[string]any{"multiSelect": float64(2)},
	})

	session, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	if session.CanProceed {
		t.Fatal("stage with no selections must not be proceedable")
	}

	state, err := module.Handler.RecordAnswerHandler(context.Background(), session.SessionID, httptransport.RecordAnswerRequest{
		StageID:   "stage-multi",
		OptionIDs: []string{"opt-a"},
	})
	if err != nil {
		t.Fatalf("record answer failed: %v", err)
	}
	if state.CanProceed || state.ShouldAutoAdvance {
		t.Fatal("one of two required selections must not satisfy the stage")
	}

	state, err = module.Handler.RecordAnswerHandler(context.Background(), session.SessionID, httptransport.RecordAnswerRequest{
		StageID:   "stage-multi",
		OptionIDs: []string{"opt-a", "opt-b"},
	})
	if err != nil {
		t.Fatalf("record answer failed: %v", err)
	}
	if !state.CanProceed {
		t.Fatal("expected proceedable stage once the selection threshold is met")
	}
	if !state.ShouldAutoAdvance {
		t.Fatal("expected auto-advance when the stage does not disable it")
	}
}

func TestAutoAdvanceRespectsExplicitOptOut(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)
	module.Store.SetStage(entities.Stage{
		StageID:   "stage-manual",
		FunnelID:  "funnel-1",
		Type:      entities.StageTypeQuestion,
		IsEnabled: true,
		Config:    map[string]any{"autoAdvance": false},
	})

	session, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	state, err := module.Handler.RecordAnswerHandler(context.Background(), session.SessionID, httptransport.RecordAnswerRequest{
		StageID:   "stage-manual",
		OptionIDs: []string{"opt-a"},
	})
	if err != nil {
		t.Fatalf("record answer failed: %v", err)
	}
	if !state.CanProceed {
		t.Fatal("answered stage must remain proceedable")
	}
	if state.ShouldAutoAdvance {
		t.Fatal("autoAdvance=false must suppress auto-advance")
	}
}

func TestIntroStageNameRequirement(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)
	module.Store.SetStage(entities.Stage{
		StageID:   "stage-intro",
		FunnelID:  "funnel-1",
		Type:      entities.StageTypeIntro,
		IsEnabled: true,
		Config:    map[string]any{"requireName": true},
	})

	anonymous, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	if anonymous.CanProceed {
		t.Fatal("intro requiring a name must block anonymous participants")
	}

	named, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID:        "funnel-1",
		ParticipantName: "Ada",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	if !named.CanProceed {
		t.Fatal("named participant must pass the intro requirement")
	}
}

func TestRetreatKeepsAnswersAndResetClearsThem(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)
	seedThreeQuestionFlow(module)

	session, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID: "funnel-1",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}

	noop, err := module.Handler.RetreatHandler(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("retreat at first stage failed: %v", err)
	}
	if noop.CurrentStageIndex != 0 {
		t.Fatalf("retreat at the first stage must stay put, got index %d", noop.CurrentStageIndex)
	}

	if _, err := module.Handler.RecordAnswerHandler(context.Background(), session.SessionID, httptransport.RecordAnswerRequest{
		StageID:   "stage-1",
		OptionIDs: []string{"opt-1"},
	}); err != nil {
		t.Fatalf("record answer failed: %v", err)
	}
	if _, err := module.Handler.AdvanceHandler(context.Background(), session.SessionID); err != nil {
		t.Fatalf("advance failed: %v", err)
	}

	back, err := module.Handler.RetreatHandler(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("retreat failed: %v", err)
	}
	if back.CurrentStageIndex != 0 {
		t.Fatalf("expected index 0 after retreat, got %d", back.CurrentStageIndex)
	}
	if got := back.Answers["stage-1"]; len(got) != 1 || got[0] != "opt-1" {
		t.Fatalf("retreat must keep recorded answers, got %v", got)
	}

	fresh, err := module.Handler.ResetHandler(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if fresh.CurrentStageIndex != 0 || len(fresh.Answers) != 0 || fresh.IsComplete || fresh.Result != nil {
		t.Fatalf("reset must return the session to a blank first stage, got %+v", fresh)
	}
}

func TestAdvanceOnEmptyFlowIsANoOp(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)

	session, err := module.Handler.StartSessionHandler(context.Background(), httptransport.StartSessionRequest{
		FunnelID: "funnel-empty",
	})
	if err != nil {
		t.Fatalf("start session failed: %v", err)
	}
	if session.StageCount != 0 {
		t.Fatalf("expected zero stages, got %d", session.StageCount)
	}

	state, err := module.Handler.AdvanceHandler(context.Background(), session.SessionID)
	if err != nil {
		t.Fatalf("advance on empty flow failed: %v", err)
	}
	if state.IsComplete || state.CurrentStageIndex != 0 {
		t.Fatalf("empty flow must not advance or complete, got %+v", state)
	}
}

func TestGetSessionUnknownIDReturnsNotFound(t *testing.T) {
	module := flowengine.NewInMemoryModule(nil, nil)
	_, err := module.Handler.GetSessionHandler(context.Background(), "no-such-session")
	if !errors.Is(err, flowerrors.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
