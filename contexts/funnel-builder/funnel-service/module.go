package funnelservice

import (
	"log/slog"

	httpadapter "funnelforge/contexts/funnel-builder/funnel-service/adapters/http"
	"funnelforge/contexts/funnel-builder/funnel-service/adapters/memory"
	"funnelforge/contexts/funnel-builder/funnel-service/application/commands"
	"funnelforge/contexts/funnel-builder/funnel-service/application/queries"
	"funnelforge/contexts/funnel-builder/funnel-service/domain/entities"
	"funnelforge/contexts/funnel-builder/funnel-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Funnels    ports.FunnelRepository
	Stages     ports.StageRepository
	Options    ports.OptionRepository
	Categories ports.CategoryRepository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func NewModule(deps Dependencies) Module {
	funnelUseCase := commands.FunnelUseCase{
		Funnels:    deps.Funnels,
		Stages:     deps.Stages,
		Options:    deps.Options,
		Categories: deps.Categories,
		Clock:      deps.Clock,
		IDGen:      deps.IDGen,
		Logger:     deps.Logger,
	}
	queryUseCase := queries.FunnelQueryUseCase{
		Funnels:    deps.Funnels,
		Stages:     deps.Stages,
		Options:    deps.Options,
		Categories: deps.Categories,
	}
	return Module{
		Handler: httpadapter.Handler{
			Funnels: funnelUseCase,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Funnel, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Funnels:    store,
		Stages:     store,
		Options:    store,
		Categories: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
