package flowengine

import (
	"log/slog"

	httpadapter "funnelforge/contexts/funnel-runtime/flow-engine/adapters/http"
	"funnelforge/contexts/funnel-runtime/flow-engine/adapters/memory"
	"funnelforge/contexts/funnel-runtime/flow-engine/application/commands"
	"funnelforge/contexts/funnel-runtime/flow-engine/application/queries"
	"funnelforge/contexts/funnel-runtime/flow-engine/domain/entities"
	"funnelforge/contexts/funnel-runtime/flow-engine/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Sessions ports.SessionRepository
	Stages   ports.StageReader
	Outbox   ports.OutboxWriter
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	sessionUseCase := commands.SessionUseCase{
		Sessions: deps.Sessions,
		Stages:   deps.Stages,
		Outbox:   deps.Outbox,
		Clock:    deps.Clock,
		IDGen:    deps.IDGen,
		Logger:   deps.Logger,
	}
	queryUseCase := queries.SessionQueryUseCase{
		Sessions: deps.Sessions,
		Stages:   deps.Stages,
		Clock:    deps.Clock,
	}
	return Module{
		Handler: httpadapter.Handler{
			Sessions: sessionUseCase,
			Queries:  queryUseCase,
			Logger:   deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.FlowSession, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Sessions: store,
		Stages:   store,
		Outbox:   store,
		Clock:    store,
		IDGen:    store,
		Logger:   logger,
	})
	module.Store = store
	return module
}
