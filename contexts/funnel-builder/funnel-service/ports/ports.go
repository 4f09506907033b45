package ports

import (
	"context"
	"time"

	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
)

type FunnelRepository interface {
	SaveFunnel(ctx context.Context, funnel entities.Funnel) error
	GetFunnel(ctx context.Context, funnelID string) (entities.Funnel, error)
}

type StageRepository interface {
	SaveStage(ctx context.Context, stage entities.Stage) error
	GetStage(ctx context.Context, stageID string) (entities.Stage, error)
	ListStages(ctx context.Context, funnelID string) ([]entities.Stage, error)
}

type OptionRepository interface {
	SaveOption(ctx context.Context, option entities.StageOption) error
	GetOption(ctx context.Context, optionID string) (entities.StageOption, error)
	ListOptionsByStage(ctx context.Context, stageID string) ([]entities.StageOption, error)
}

type CategoryRepository interface {
	SaveCategory(ctx context.Context, category entities.StyleCategory) error
	ListCategories(ctx context.Context, funnelID string) ([]entities.StyleCategory, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
