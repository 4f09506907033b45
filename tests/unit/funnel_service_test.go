package unit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	funnelservice "funnelforge/contexts/funnel-builder/funnel-service"
	funnelerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
	httptransport "funnelforge/contexts/funnel-builder/funnel-service/transport/http"
)

func TestOptionPayloadAcceptsBothFieldSpellings(t *testing.T) {
	var snake httptransport.OptionPayload
	if err := json.Unmarshal([]byte(`{
		"text": "Linen shirt",
		"image_url": "https://cdn.example/linen.jpg",
		"style_category": "natural",
		"order_index": 3
	}`), &snake); err != nil {
		t.Fatalf("decode snake_case payload: %v", err)
	}
	if snake.ImageURL != "https://cdn.example/linen.jpg" || snake.StyleCategory != "natural" || snake.OrderIndex != 3 {
		t.Fatalf("snake_case fields not picked up: %+v", snake)
	}
	if snake.Points != 1 {
		t.Fatalf("missing points must default to 1, got %d", snake.Points)
	}

	var both httptransport.OptionPayload
	if err := json.Unmarshal([]byte(`{
		"text": "Linen shirt",
		"imageUrl": "https://cdn.example/camel.jpg",
		"image_url": "https://cdn.example/snake.jpg",
		"styleCategory": "classico",
		"style_category": "natural",
		"points": 0
	}`), &both); err != nil {
		t.Fatalf("decode mixed payload: %v", err)
	}
	if both.ImageURL != "https://cdn.example/camel.jpg" || both.StyleCategory != "classico" {
		t.Fatalf("camelCase must win when both spellings are present: %+v", both)
	}
	if both.Points != 1 {
		t.Fatalf("points below 1 must normalize to 1, got %d", both.Points)
	}
}

func TestAddStageRejectsUnknownType(t *testing.T) {
	module := funnelservice.NewInMemoryModule(nil, nil)
	funnel, err := module.Handler.CreateFunnelHandler(context.Background(), httptransport.CreateFunnelRequest{
		Name: "Style quiz",
	})
	if err != nil {
		t.Fatalf("create funnel failed: %v", err)
	}

	_, err = module.Handler.AddStageHandler(context.Background(), funnel.FunnelID, httptransport.AddStageRequest{
		Type: "carousel",
	})
	if !errors.Is(err, funnelerrors.ErrInvalidStageType) {
		t.Fatalf("expected ErrInvalidStageType, got %v", err)
	}

	stage, err := module.Handler.AddStageHandler(context.Background(), funnel.FunnelID, httptransport.AddStageRequest{
		Type:  "Question",
		Title: "Pick a look",
	})
	if err != nil {
		t.Fatalf("add stage failed: %v", err)
	}
	if stage.Type != "question" {
		t.Fatalf("stage type must normalize to lowercase, got %s", stage.Type)
	}
	if !stage.IsEnabled {
		t.Fatal("stages default to enabled when the flag is omitted")
	}
}

func TestReorderStagesKeepsUnlistedAfterListed(t *testing.T) {
	module := funnelservice.NewInMemoryModule(nil, nil)
	funnel, err := module.Handler.CreateFunnelHandler(context.Background(), httptransport.CreateFunnelRequest{
		Name: "Style quiz",
	})
	if err != nil {
		t.Fatalf("create funnel failed: %v", err)
	}

	ids := make([]string, 0, 3)
	for i, title := range []string{"first", "second", "third"} {
		stage, err := module.Handler.AddStageHandler(context.Background(), funnel.FunnelID, httptransport.AddStageRequest{
			Type:       "question",
			Title:      title,
			OrderIndex: i,
		})
		if err != nil {
			t.Fatalf("add stage %q failed: %v", title, err)
		}
		ids = append(ids, stage.StageID)
	}

	// Only the third stage is listed; the other two keep their relative order
	// behind it.
	reordered, err := module.Handler.ReorderStagesHandler(context.Background(), funnel.FunnelID, httptransport.ReorderStagesRequest{
		StageIDs: []string{ids[2]},
	})
	if err != nil {
		t.Fatalf("reorder failed: %v", err)
	}

	orderByID := make(map[string]int, len(reordered))
	for _, stage := range reordered {
		orderByID[stage.StageID] = stage.OrderIndex
	}
	if orderByID[ids[2]] != 0 {
		t.Fatalf("listed stage must move to the front, got index %d", orderByID[ids[2]])
	}
	if orderByID[ids[0]] != 1 || orderByID[ids[1]] != 2 {
		t.Fatalf("unlisted stages must follow in their prior order, got %v", orderByID)
	}
}

func TestUpsertOptionCreatesThenUpdates(t *testing.T) {
	module := funnelservice.NewInMemoryModule(nil, nil)
	funnel, err := module.Handler.CreateFunnelHandler(context.Background(), httptransport.CreateFunnelRequest{
		Name: "Style quiz",
	})
	if err != nil {
		t.Fatalf("create funnel failed: %v", err)
	}
	stage, err := module.Handler.AddStageHandler(context.Background(), funnel.FunnelID, httptransport.AddStageRequest{
		Type: "question",
	})
	if err != nil {
		t.Fatalf("add stage failed: %v", err)
	}

	created, err := module.Handler.UpsertOptionHandler(context.Background(), stage.StageID, httptransport.OptionPayload{
		Text:   "Linen shirt",
		Points: 0,
	})
	if err != nil {
		t.Fatalf("create option failed: %v", err)
	}
	if created.OptionID == "" {
		t.Fatal("created option must get an id")
	}
	if created.Points != 1 {
		t.Fatalf("non-positive points must normalize to 1, got %d", created.Points)
	}

	updated, err := module.Handler.UpsertOptionHandler(context.Background(), stage.StageID, httptransport.OptionPayload{
		OptionID: created.OptionID,
		Text:     "Linen shirt, rolled sleeves",
		Points:   4,
	})
	if err != nil {
		t.Fatalf("update option failed: %v", err)
	}
	if updated.OptionID != created.OptionID {
		t.Fatalf("update must keep the option id, got %s", updated.OptionID)
	}

	options, err := module.Handler.ListOptionsHandler(context.Background(), stage.StageID)
	if err != nil {
		t.Fatalf("list options failed: %v", err)
	}
	if len(options) != 1 || options[0].Text != "Linen shirt, rolled sleeves" || options[0].Points != 4 {
		t.Fatalf("expected the single updated option, got %+v", options)
	}

	_, err = module.Handler.UpsertOptionHandler(context.Background(), stage.StageID, httptransport.OptionPayload{
		OptionID: "no-such-option",
		Text:     "Ghost",
	})
	if !errors.Is(err, funnelerrors.ErrOptionNotFound) {
		t.Fatalf("updating an unknown option must fail, got %v", err)
	}
}

func TestImportFunnelMapsCategoryNamesToIDs(t *testing.T) {
	module := funnelservice.NewInMemoryModule(nil, nil)

	payload := []byte(`{
		"name": "Imported quiz",
		"categories": [
			{"name": "Natural", "image_url": "https://cdn.example/natural.jpg"}
		],
		"stages": [
			{
				"type": "question",
				"title": "Pick a look",
				"orderIndex": 0,
				"options": [
					{"text": "Linen shirt", "style_category": "natural", "points": 2},
					{"text": "Leather jacket", "styleCategory": "Rocker"}
				]
			}
		]
	}`)
	var req httptransport.ImportFunnelRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		t.Fatalf("decode import payload: %v", err)
	}

	result, err := module.Handler.ImportFunnelHandler(context.Background(), req)
	if err != nil {
		t.Fatalf("import failed: %v", err)
	}
	if result.StageCount != 1 || result.OptionCount != 2 || result.CategoryCount != 1 {
		t.Fatalf("unexpected import counts: %+v", result)
	}

	detail, err := module.Handler.GetFunnelHandler(context.Background(), result.Funnel.FunnelID)
	if err != nil {
		t.Fatalf("get funnel failed: %v", err)
	}
	if len(detail.Categories) != 1 || len(detail.Stages) != 1 {
		t.Fatalf("unexpected funnel detail: %+v", detail)
	}
	categoryID := detail.Categories[0].CategoryID
	if detail.Categories[0].ImageURL != "https://cdn.example/natural.jpg" {
		t.Fatalf("snake_case category image must survive import, got %+v", detail.Categories[0])
	}

	options, err := module.Handler.ListOptionsHandler(context.Background(), detail.Stages[0].StageID)
	if err != nil {
		t.Fatalf("list options failed: %v", err)
	}
	byText := make(map[string]httptransport.OptionView, len(options))
	for _, option := range options {
		byText[option.Text] = option
	}
	// Category references match case-insensitively; an unmatched name stays as
	// written and scoring will skip it.
	if got := byText["Linen shirt"].StyleCategory; got != categoryID {
		t.Fatalf("expected mapped category id %s, got %s", categoryID, got)
	}
	if got := byText["Leather jacket"].StyleCategory; got != "Rocker" {
		t.Fatalf("unmatched category reference must pass through verbatim, got %s", got)
	}
}

func TestCreateFunnelRequiresName(t *testing.T) {
	module := funnelservice.NewInMemoryModule(nil, nil)
	_, err := module.Handler.CreateFunnelHandler(context.Background(), httptransport.CreateFunnelRequest{
		Name: "   ",
	})
	if !errors.Is(err, funnelerrors.ErrInvalidFunnelInput) {
		t.Fatalf("expected ErrInvalidFunnelInput, got %v", err)
	}
}
