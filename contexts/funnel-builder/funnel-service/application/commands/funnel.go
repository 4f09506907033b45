package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "funnelforge/contexts/funnel-builder/funnel-service/application"
	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
	"funnelforge/contexts/funnel-builder/funnel-service/ports"
)

type CreateFunnelCommand struct {
	Name string
}

type AddStageCommand struct {
	FunnelID   string
	Type       string
	Title      string
	OrderIndex int
	IsEnabled  bool
	Config     map[string]any
}

type UpdateStageConfigCommand struct {
	StageID string
	Config  map[string]any
}

type SetStageEnabledCommand struct {
	StageID   string
	IsEnabled bool
}

// ReorderStagesCommand assigns the total order of a funnel's stages from the
// given id sequence; ids missing from the sequence keep their relative order
// after the listed ones.
type ReorderStagesCommand struct {
	FunnelID string
	StageIDs []string
}

type UpsertOptionCommand struct {
	OptionID      string
	StageID       string
	Text          string
	ImageURL      string
	StyleCategory string
	Points        int
	OrderIndex    int
}

type DefineCategoryCommand struct {
	FunnelID    string
	Name        string
	Description string
	ImageURL    string
}

// FunnelUseCase owns authoring writes for funnels, stages, options and style
// categories. The runtime flow engine consumes the same rows read-only.
type FunnelUseCase struct {
	Funnels    ports.FunnelRepository
	Stages     ports.StageRepository
	Options    ports.OptionRepository
	Categories ports.CategoryRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc FunnelUseCase) CreateFunnel(ctx context.Context, cmd CreateFunnelCommand) (entities.Funnel, error) {
	logger := application.ResolveLogger(uc.Logger)
	name := strings.TrimSpace(cmd.Name)
	if name == "" {
		logger.Warn("funnel create validation failed",
			"event", "funnel_create_validation_failed",
			"module", "funnel-builder/funnel-service",
			"layer", "application",
		)
		return entities.Funnel{}, domainerrors.ErrInvalidFunnelInput
	}
	funnelID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Funnel{}, err
	}
	now := uc.now()
	funnel := entities.Funnel{
		FunnelID:  funnelID,
		Name:      name,
		Status:    entities.FunnelStatusDraft,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.Funnels.SaveFunnel(ctx, funnel); err != nil {
		return entities.Funnel{}, err
	}
	logger.Info("funnel created",
		"event", "funnel_created",
		"module", "funnel-builder/funnel-service",
		"layer", "application",
		"funnel_id", funnel.FunnelID,
	)
	return funnel, nil
}

func (uc FunnelUseCase) AddStage(ctx context.Context, cmd AddStageCommand) (entities.Stage, error) {
	logger := application.ResolveLogger(uc.Logger)
	funnelID := strings.TrimSpace(cmd.FunnelID)
	stageType := strings.TrimSpace(strings.ToLower(cmd.Type))
	if funnelID == "" {
		return entities.Stage{}, domainerrors.ErrInvalidFunnelInput
	}
	if !entities.IsValidStageType(stageType) {
		logger.Warn("stage type rejected",
			"event", "funnel_stage_type_rejected",
			"module", "funnel-builder/funnel-service",
			"layer", "application",
			"funnel_id", funnelID,
			"stage_type", stageType,
		)
		return entities.Stage{}, domainerrors.ErrInvalidStageType
	}
	if _, err := uc.Funnels.GetFunnel(ctx, funnelID); err != nil {
		return entities.Stage{}, err
	}

	stageID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Stage{}, err
	}
	now := uc.now()
	stage := entities.Stage{
		StageID:    stageID,
		FunnelID:   funnelID,
		Type:       stageType,
		Title:      strings.TrimSpace(cmd.Title),
		OrderIndex: cmd.OrderIndex,
		IsEnabled:  cmd.IsEnabled,
		Config:     cmd.Config,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := uc.Stages.SaveStage(ctx, stage); err != nil {
		return entities.Stage{}, err
	}
	logger.Info("stage added",
		"event", "funnel_stage_added",
		"module", "funnel-builder/funnel-service",
		"layer", "application",
		"funnel_id", funnelID,
		"stage_id", stage.StageID,
		"stage_type", stageType,
	)
	return stage, nil
}

// UpdateStageConfig replaces the stage's type-specific config object. Editor
// auto-save flushes land here.
func (uc FunnelUseCase) UpdateStageConfig(ctx context.Context, cmd UpdateStageConfigCommand) (entities.Stage, error) {
	stage, err := uc.Stages.GetStage(ctx, strings.TrimSpace(cmd.StageID))
	if err != nil {
		return entities.Stage{}, err
	}
	stage.Config = cmd.Config
	stage.UpdatedAt = uc.now()
	if err := uc.Stages.SaveStage(ctx, stage); err != nil {
		return entities.Stage{}, err
	}
	return stage, nil
}

func (uc FunnelUseCase) SetStageEnabled(ctx context.Context, cmd SetStageEnabledCommand) (entities.Stage, error) {
	stage, err := uc.Stages.GetStage(ctx, strings.TrimSpace(cmd.StageID))
	if err != nil {
		return entities.Stage{}, err
	}
	stage.IsEnabled = cmd.IsEnabled
	stage.UpdatedAt = uc.now()
	if err := uc.Stages.SaveStage(ctx, stage); err != nil {
		return entities.Stage{}, err
	}
	return stage, nil
}

func (uc FunnelUseCase) ReorderStages(ctx context.Context, cmd ReorderStagesCommand) ([]entities.Stage, error) {
	funnelID := strings.TrimSpace(cmd.FunnelID)
	if funnelID == "" || len(cmd.StageIDs) == 0 {
		return nil, domainerrors.ErrInvalidFunnelInput
	}
	stages, err := uc.Stages.ListStages(ctx, funnelID)
	if err != nil {
		return nil, err
	}

	position := make(map[string]int, len(cmd.StageIDs))
	for index, stageID := range cmd.StageIDs {
		position[strings.TrimSpace(stageID)] = index
	}

	now := uc.now()
	next := len(cmd.StageIDs)
	updated := make([]entities.Stage, 0, len(stages))
	for _, stage := range stages {
		index, listed := position[stage.StageID]
		if !listed {
			index = next
			next++
		}
		stage.OrderIndex = index
		stage.UpdatedAt = now
		if err := uc.Stages.SaveStage(ctx, stage); err != nil {
			return nil, err
		}
		updated = append(updated, stage)
	}
	return updated, nil
}

// UpsertOption creates a new option when OptionID is empty and updates the
// existing one otherwise. Non-positive points normalize to the default of 1.
func (uc FunnelUseCase) UpsertOption(ctx context.Context, cmd UpsertOptionCommand) (entities.StageOption, error) {
	stageID := strings.TrimSpace(cmd.StageID)
	if stageID == "" || strings.TrimSpace(cmd.Text) == "" {
		return entities.StageOption{}, domainerrors.ErrInvalidFunnelInput
	}
	if _, err := uc.Stages.GetStage(ctx, stageID); err != nil {
		return entities.StageOption{}, err
	}

	now := uc.now()
	points := cmd.Points
	if points < 1 {
		points = 1
	}

	optionID := strings.TrimSpace(cmd.OptionID)
	option := entities.StageOption{
		OptionID:      optionID,
		StageID:       stageID,
		Text:          strings.TrimSpace(cmd.Text),
		ImageURL:      strings.TrimSpace(cmd.ImageURL),
		StyleCategory: strings.TrimSpace(cmd.StyleCategory),
		Points:        points,
		OrderIndex:    cmd.OrderIndex,
		UpdatedAt:     now,
	}
	if optionID == "" {
		newID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.StageOption{}, err
		}
		option.OptionID = newID
		option.CreatedAt = now
	} else {
		existing, err := uc.Options.GetOption(ctx, optionID)
		if err != nil {
			return entities.StageOption{}, err
		}
		option.CreatedAt = existing.CreatedAt
	}
	if err := uc.Options.SaveOption(ctx, option); err != nil {
		return entities.StageOption{}, err
	}
	return option, nil
}

func (uc FunnelUseCase) DefineCategory(ctx context.Context, cmd DefineCategoryCommand) (entities.StyleCategory, error) {
	funnelID := strings.TrimSpace(cmd.FunnelID)
	name := strings.TrimSpace(cmd.Name)
	if funnelID == "" || name == "" {
		return entities.StyleCategory{}, domainerrors.ErrInvalidFunnelInput
	}
	if _, err := uc.Funnels.GetFunnel(ctx, funnelID); err != nil {
		return entities.StyleCategory{}, err
	}
	categoryID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.StyleCategory{}, err
	}
	now := uc.now()
	category := entities.StyleCategory{
		CategoryID:  categoryID,
		FunnelID:    funnelID,
		Name:        name,
		Description: strings.TrimSpace(cmd.Description),
		ImageURL:    strings.TrimSpace(cmd.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Categories.SaveCategory(ctx, category); err != nil {
		return entities.StyleCategory{}, err
	}
	return category, nil
}

func (uc FunnelUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}
