package abtesting

import (
	"log/slog"

	httpadapter "funnelforge/contexts/growth-experiments/ab-testing-service/adapters/http"
	"funnelforge/contexts/growth-experiments/ab-testing-service/adapters/memory"
	"funnelforge/contexts/growth-experiments/ab-testing-service/application/commands"
	"funnelforge/contexts/growth-experiments/ab-testing-service/application/queries"
	"funnelforge/contexts/growth-experiments/ab-testing-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Assignments ports.AssignmentStore
	Conversions ports.ConversionRepository
	Outbox      ports.OutboxWriter
	Random      ports.RandomSource
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	experimentUseCase := commands.ExperimentUseCase{
		Assignments: deps.Assignments,
		Conversions: deps.Conversions,
		Outbox:      deps.Outbox,
		Random:      deps.Random,
		Clock:       deps.Clock,
		IDGen:       deps.IDGen,
		Logger:      deps.Logger,
	}
	queryUseCase := queries.ExperimentQueryUseCase{
		Assignments: deps.Assignments,
		Conversions: deps.Conversions,
		Clock:       deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Experiments: experimentUseCase,
			Queries:     queryUseCase,
			Logger:      deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Assignments: store,
		Conversions: store,
		Outbox:      store,
		Random:      store,
		Clock:       store,
		IDGen:       store,
		Logger:      logger,
	})
	module.Store = store
	return module
}
