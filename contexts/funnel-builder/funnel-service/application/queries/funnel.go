package queries

import (
	"context"
	"sort"
	"strings"

	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	domainerrors "funnelforge/contexts/funnel-builder/funnel-service/domain/errors"
	"funnelforge/contexts/funnel-builder/funnel-service/ports"
)

type FunnelQueryUseCase struct {
	Funnels    ports.FunnelRepository
	Stages     ports.StageRepository
	Options    ports.OptionRepository
	Categories ports.CategoryRepository
}

// FunnelDetail is the authoring view of a funnel and everything under it.
type FunnelDetail struct {
	Funnel     entities.Funnel
	Stages     []entities.Stage
	Categories []entities.StyleCategory
}

func (uc FunnelQueryUseCase) GetFunnel(ctx context.Context, funnelID string) (FunnelDetail, error) {
	funnelID = strings.TrimSpace(funnelID)
	if funnelID == "" {
		return FunnelDetail{}, domainerrors.ErrInvalidFunnelInput
	}
	funnel, err := uc.Funnels.GetFunnel(ctx, funnelID)
	if err != nil {
		return FunnelDetail{}, err
	}
	stages, err := uc.ListStages(ctx, funnelID)
	if err != nil {
		return FunnelDetail{}, err
	}
	categories, err := uc.Categories.ListCategories(ctx, funnelID)
	if err != nil {
		return FunnelDetail{}, err
	}
	return FunnelDetail{
		Funnel:     funnel,
		Stages:     stages,
		Categories: categories,
	}, nil
}

func (uc FunnelQueryUseCase) ListStages(ctx context.Context, funnelID string) ([]entities.Stage, error) {
	stages, err := uc.Stages.ListStages(ctx, strings.TrimSpace(funnelID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].OrderIndex < stages[j].OrderIndex
	})
	return stages, nil
}

func (uc FunnelQueryUseCase) ListOptions(ctx context.Context, stageID string) ([]entities.StageOption, error) {
	options, err := uc.Options.ListOptionsByStage(ctx, strings.TrimSpace(stageID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(options, func(i, j int) bool {
		return options[i].OrderIndex < options[j].OrderIndex
	})
	return options, nil
}
