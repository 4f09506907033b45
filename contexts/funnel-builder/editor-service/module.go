package editorservice

import (
	"log/slog"
	"time"

	httpadapter "funnelforge/contexts/funnel-builder/editor-service/adapters/http"
	"funnelforge/contexts/funnel-builder/editor-service/adapters/memory"
	"funnelforge/contexts/funnel-builder/editor-service/application/commands"
	"funnelforge/contexts/funnel-builder/editor-service/application/queries"
	"funnelforge/contexts/funnel-builder/editor-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Drafts           ports.DraftStore
	Loader           ports.StageBlocksLoader
	StageSaver       ports.StageConfigSaver
	Clock            ports.Clock
	IDGen            ports.IDGenerator
	Logger           *slog.Logger
	HistoryDepth     int
	AutoSaveInterval time.Duration
}

func NewModule(deps Dependencies) Module {
	registry := commands.NewRegistry()
	editorUseCase := commands.EditorUseCase{
		Registry:         registry,
		Drafts:           deps.Drafts,
		Loader:           deps.Loader,
		StageSaver:       deps.StageSaver,
		Clock:            deps.Clock,
		IDGen:            deps.IDGen,
		Logger:           deps.Logger,
		HistoryDepth:     deps.HistoryDepth,
		AutoSaveInterval: deps.AutoSaveInterval,
	}
	queryUseCase := queries.EditorQueryUseCase{
		Registry: registry,
		Drafts:   deps.Drafts,
	}
	return Module{
		Handler: httpadapter.Handler{
			Editors: editorUseCase,
			Queries: queryUseCase,
			Logger:  deps.Logger,
		},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Drafts:     store,
		Loader:     store,
		StageSaver: store,
		Clock:      store,
		IDGen:      store,
		Logger:     logger,
	})
	module.Store = store
	return module
}
