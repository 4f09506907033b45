package commands

import (
	"context"
	"strings"

	application "funnelforge/contexts/funnel-builder/funnel-service/application"
	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
)

// ImportOption arrives already normalized to the canonical camel-free entity
// shape; the transport layer resolves the snake_case/camelCase field duality
// before anything reaches this command.
type ImportOption struct {
	Text          string
	ImageURL      string
	StyleCategory string
	Points        int
	OrderIndex    int
}

type ImportStage struct {
	Type       string
	Title      string
	OrderIndex int
	IsEnabled  bool
	Config     map[string]any
	Options    []ImportOption
}

type ImportCategory struct {
	Name        string
	Description string
	ImageURL    string
}

type ImportFunnelCommand struct {
	Name       string
	Stages     []ImportStage
	Categories []ImportCategory
}

type ImportFunnelResult struct {
	Funnel        entities.Funnel
	StageCount    int
	OptionCount   int
	CategoryCount int
}

// ImportFunnel creates a whole funnel from an exported definition in one call.
// Category names referenced by options are matched case-insensitively against
// the imported category list; unmatched references are kept verbatim and left
// for scoring to skip.
func (uc FunnelUseCase) ImportFunnel(ctx context.Context, cmd ImportFunnelCommand) (ImportFunnelResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.Name) == "" {
		return ImportFunnelResult{}, domainerrors.ErrInvalidFunnelInput
	}

	funnel, err := uc.CreateFunnel(ctx, CreateFunnelCommand{Name: cmd.Name})
	if err != nil {
		return ImportFunnelResult{}, err
	}

	categoryIDByName := make(map[string]string, len(cmd.Categories))
	categoryCount := 0
	for _, item := range cmd.Categories {
		category, err := uc.DefineCategory(ctx, DefineCategoryCommand{
			FunnelID:    funnel.FunnelID,
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    item.ImageURL,
		})
		if err != nil {
			return ImportFunnelResult{}, err
		}
		categoryIDByName[strings.ToLower(category.Name)] = category.CategoryID
		categoryCount++
	}

	stageCount := 0
	optionCount := 0
	for _, item := range cmd.Stages {
		stage, err := uc.AddStage(ctx, AddStageCommand{
			FunnelID:   funnel.FunnelID,
			Type:       item.Type,
			Title:      item.Title,
			OrderIndex: item.OrderIndex,
			IsEnabled:  item.IsEnabled,
			Config:     item.Config,
		})
		if err != nil {
			return ImportFunnelResult{}, err
		}
		stageCount++

		for _, optionItem := range item.Options {
			styleCategory := strings.TrimSpace(optionItem.StyleCategory)
			if mapped, found := categoryIDByName[strings.ToLower(styleCategory)]; found {
				styleCategory = mapped
			}
			if _, err := uc.UpsertOption(ctx, UpsertOptionCommand{
				StageID:       stage.StageID,
				Text:          optionItem.Text,
				ImageURL:      optionItem.ImageURL,
				StyleCategory: styleCategory,
				Points:        optionItem.Points,
				OrderIndex:    optionItem.OrderIndex,
			}); err != nil {
				return ImportFunnelResult{}, err
			}
			optionCount++
		}
	}

	logger.Info("funnel imported",
		"event", "funnel_imported",
		"module", "funnel-builder/funnel-service",
		"layer", "application",
		"funnel_id", funnel.FunnelID,
		"stage_count", stageCount,
		"option_count", optionCount,
		"category_count", categoryCount,
	)
	return ImportFunnelResult{
		Funnel:        funnel,
		StageCount:    stageCount,
		OptionCount:   optionCount,
		CategoryCount: categoryCount,
	}, nil
}
