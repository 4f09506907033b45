package httpadapter

import (
	"context"
	"log/slog"

	"funnelforge/contexts/funnel-builder/funnel-service/application/commands"
	"funnelforge/contexts/funnel-builder/funnel-service/application/queries"
	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	httptransport "funnelforge/contexts/funnel-builder/funnel-service/transport/http"
)

type Handler struct {
	Funnels commands.FunnelUseCase
	Queries queries.FunnelQueryUseCase
	Logger  *slog.Logger
}

func (h Handler) CreateFunnelHandler(ctx context.Context, req httptransport.CreateFunnelRequest) (httptransport.FunnelView, error) {
	funnel, err := h.Funnels.CreateFunnel(ctx, commands.CreateFunnelCommand{Name: req.Name})
	if err != nil {
		return httptransport.FunnelView{}, err
	}
	return mapFunnel(funnel), nil
}

func (h Handler) GetFunnelHandler(ctx context.Context, funnelID string) (httptransport.FunnelDetailResponse, error) {
	detail, err := h.Queries.GetFunnel(ctx, funnelID)
	if err != nil {
		return httptransport.FunnelDetailResponse{}, err
	}
	return httptransport.FunnelDetailResponse{
		Funnel:     mapFunnel(detail.Funnel),
		Stages:     mapStages(detail.Stages),
		Categories: mapCategories(detail.Categories),
	}, nil
}

func (h Handler) AddStageHandler(ctx context.Context, funnelID string, req httptransport.AddStageRequest) (httptransport.StageView, error) {
	isEnabled := true
	if req.IsEnabled != nil {
		isEnabled = *req.IsEnabled
	}
	stage, err := h.Funnels.AddStage(ctx, commands.AddStageCommand{
		FunnelID:   funnelID,
		Type:       req.Type,
		Title:      req.Title,
		OrderIndex: req.OrderIndex,
		IsEnabled:  isEnabled,
		Config:     req.Config,
	})
	if err != nil {
		return httptransport.StageView{}, err
	}
	return mapStage(stage), nil
}

func (h Handler) UpdateStageConfigHandler(ctx context.Context, stageID string, req httptransport.UpdateStageConfigRequest) (httptransport.StageView, error) {
	stage, err := h.Funnels.UpdateStageConfig(ctx, commands.UpdateStageConfigCommand{
		StageID: stageID,
		Config:  req.Config,
	})
	if err != nil {
		return httptransport.StageView{}, err
	}
	return mapStage(stage), nil
}

func (h Handler) SetStageEnabledHandler(ctx context.Context, stageID string, req httptransport.SetStageEnabledRequest) (httptransport.StageView, error) {
	stage, err := h.Funnels.SetStageEnabled(ctx, commands.SetStageEnabledCommand{
		StageID:   stageID,
		IsEnabled: req.IsEnabled,
	})
	if err != nil {
		return httptransport.StageView{}, err
	}
	return mapStage(stage), nil
}

func (h Handler) ReorderStagesHandler(ctx context.Context, funnelID string, req httptransport.ReorderStagesRequest) ([]httptransport.StageView, error) {
	stages, err := h.Funnels.ReorderStages(ctx, commands.ReorderStagesCommand{
		FunnelID: funnelID,
		StageIDs: req.StageIDs,
	})
	if err != nil {
		return nil, err
	}
	return mapStages(stages), nil
}

func (h Handler) UpsertOptionHandler(ctx context.Context, stageID string, req httptransport.OptionPayload) (httptransport.OptionView, error) {
	option, err := h.Funnels.UpsertOption(ctx, commands.UpsertOptionCommand{
		OptionID:      req.OptionID,
		StageID:       stageID,
		Text:          req.Text,
		ImageURL:      req.ImageURL,
		StyleCategory: req.StyleCategory,
		Points:        req.Points,
		OrderIndex:    req.OrderIndex,
	})
	if err != nil {
		return httptransport.OptionView{}, err
	}
	return mapOption(option), nil
}

func (h Handler) ListOptionsHandler(ctx context.Context, stageID string) ([]httptransport.OptionView, error) {
	options, err := h.Queries.ListOptions(ctx, stageID)
	if err != nil {
		return nil, err
	}
	views := make([]httptransport.OptionView, 0, len(options))
	for _, option := range options {
		views = append(views, mapOption(option))
	}
	return views, nil
}

func (h Handler) DefineCategoryHandler(ctx context.Context, funnelID string, req httptransport.ImportCategoryPayload) (httptransport.CategoryView, error) {
	category, err := h.Funnels.DefineCategory(ctx, commands.DefineCategoryCommand{
		FunnelID:    funnelID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return httptransport.CategoryView{}, err
	}
	return mapCategory(category), nil
}

func (h Handler) ImportFunnelHandler(ctx context.Context, req httptransport.ImportFunnelRequest) (httptransport.ImportFunnelResponse, error) {
	result, err := h.Funnels.ImportFunnel(ctx, mapImportCommand(req))
	if err != nil {
		return httptransport.ImportFunnelResponse{}, err
	}
	return httptransport.ImportFunnelResponse{
		Funnel:        mapFunnel(result.Funnel),
		StageCount:    result.StageCount,
		OptionCount:   result.OptionCount,
		CategoryCount: result.CategoryCount,
	}, nil
}

func mapImportCommand(req httptransport.ImportFunnelRequest) commands.ImportFunnelCommand {
	cmd := commands.ImportFunnelCommand{
		Name:       req.Name,
		Stages:     make([]commands.ImportStage, 0, len(req.Stages)),
		Categories: make([]commands.ImportCategory, 0, len(req.Categories)),
	}
	for _, stage := range req.Stages {
		isEnabled := true
		if stage.IsEnabled != nil {
			isEnabled = *stage.IsEnabled
		}
		options := make([]commands.ImportOption, 0, len(stage.Options))
		for _, option := range stage.Options {
			options = append(options, commands.ImportOption{
				Text:          option.Text,
				ImageURL:      option.ImageURL,
				StyleCategory: option.StyleCategory,
				Points:        option.Points,
				OrderIndex:    option.OrderIndex,
			})
		}
		cmd.Stages = append(cmd.Stages, commands.ImportStage{
			Type:       stage.Type,
			Title:      stage.Title,
			OrderIndex: stage.OrderIndex,
			IsEnabled:  isEnabled,
			Config:     stage.Config,
			Options:    options,
		})
	}
	for _, category := range req.Categories {
		cmd.Categories = append(cmd.Categories, commands.ImportCategory{
			Name:        category.Name,
			Description: category.Description,
			ImageURL:    category.ImageURL,
		})
	}
	return cmd
}

func mapFunnel(funnel entities.Funnel) httptransport.FunnelView {
	return httptransport.FunnelView{
		FunnelID:  funnel.FunnelID,
		Name:      funnel.Name,
		Status:    string(funnel.Status),
		CreatedAt: funnel.CreatedAt,
		UpdatedAt: funnel.UpdatedAt,
	}
}

func mapStages(stages []entities.Stage) []httptransport.StageView {
	views := make([]httptransport.StageView, 0, len(stages))
	for _, stage := range stages {
		views = append(views, mapStage(stage))
	}
	return views
}

func mapStage(stage entities.Stage) httptransport.StageView {
	return httptransport.StageView{
		StageID:    stage.StageID,
		FunnelID:   stage.FunnelID,
		Type:       stage.Type,
		Title:      stage.Title,
		OrderIndex: stage.OrderIndex,
		IsEnabled:  stage.IsEnabled,
		Config:     stage.Config,
	}
}

func mapOption(option entities.StageOption) httptransport.OptionView {
	return httptransport.OptionView{
		OptionID:      option.OptionID,
		StageID:       option.StageID,
		Text:          option.Text,
		ImageURL:      option.ImageURL,
		StyleCategory: option.StyleCategory,
		Points:        option.Points,
		OrderIndex:    option.OrderIndex,
	}
}

func mapCategories(categories []entities.StyleCategory) []httptransport.CategoryView {
	views := make([]httptransport.CategoryView, 0, len(categories))
	for _, category := range categories {
		views = append(views, mapCategory(category))
	}
	return views
}

func mapCategory(category entities.StyleCategory) httptransport.CategoryView {
	return httptransport.CategoryView{
		CategoryID:  category.CategoryID,
		FunnelID:    category.FunnelID,
		Name:        category.Name,
		Description: category.Description,
		ImageURL:    category.ImageURL,
	}
}
