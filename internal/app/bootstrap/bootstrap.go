package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	editorservice "funnelforge/contexts/funnel-builder/editor-service"
	editorpostgres "funnelforge/contexts/funnel-builder/editor-service/adapters/postgres"
	funnelservice "funnelforge/contexts/funnel-builder/funnel-service"
	funnelpostgres "funnelforge/contexts/funnel-builder/funnel-service/adapters/postgres"
	flowengine "funnelforge/contexts/funnel-runtime/flow-engine"
	flowpostgres "funnelforge/contexts/funnel-runtime/flow-engine/adapters/postgres"
	flowworkers "funnelforge/contexts/funnel-runtime/flow-engine/application/workers"
	abtesting "funnelforge/contexts/growth-experiments/ab-testing-service"
	experimentpostgres "funnelforge/contexts/growth-experiments/ab-testing-service/adapters/postgres"
	experimentworkers "funnelforge/contexts/growth-experiments/ab-testing-service/application/workers"
	"funnelforge/internal/platform/config"
	"funnelforge/internal/platform/db"
	"funnelforge/internal/platform/httpserver"
	"funnelforge/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres        *db.Postgres
	flowRelay       flowworkers.OutboxRelay
	experimentRelay experimentworkers.OutboxRelay
	purchases       experimentworkers.PurchaseConsumer
	bus             *messaging.Bus
	cfg             config.Config
	pollInterval    time.Duration
	logger          *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	flowRepo := flowpostgres.NewRepository(pg.DB, logger)
	flowModule := flowengine.NewModule(flowengine.Dependencies{
		Sessions: flowRepo,
		Stages:   flowRepo,
		Outbox:   flowRepo,
		Clock:    flowpostgres.SystemClock{},
		IDGen:    flowpostgres.UUIDGenerator{},
		Logger:   logger,
	})

	funnelRepo := funnelpostgres.NewRepository(pg.DB, logger)
	funnelModule := funnelservice.NewModule(funnelservice.Dependencies{
		Funnels:    funnelRepo,
		Stages:     funnelRepo,
		Options:    funnelRepo,
		Categories: funnelRepo,
		Clock:      funnelpostgres.SystemClock{},
		IDGen:      funnelpostgres.UUIDGenerator{},
		Logger:     logger,
	})

	editorRepo := editorpostgres.NewRepository(pg.DB, logger)
	editorModule := editorservice.NewModule(editorservice.Dependencies{
		Drafts:           editorRepo,
		Loader:           editorRepo,
		StageSaver:       editorRepo,
		Clock:            editorpostgres.SystemClock{},
		IDGen:            editorpostgres.UUIDGenerator{},
		Logger:           logger,
		HistoryDepth:     cfg.HistoryDepth,
		AutoSaveInterval: cfg.AutoSaveInterval,
	})

	experimentRepo := experimentpostgres.NewRepository(pg.DB, logger)
	experimentModule := abtesting.NewModule(abtesting.Dependencies{
		Assignments: experimentRepo,
		Conversions: experimentRepo,
		Outbox:      experimentRepo,
		Random:      experimentpostgres.SystemRandom{},
		Clock:       experimentpostgres.SystemClock{},
		IDGen:       experimentpostgres.UUIDGenerator{},
		Logger:      logger,
	})

	server := httpserver.New(
		flowModule,
		funnelModule,
		editorModule,
		experimentModule,
		logger,
		normalizeAddr(cfg.HTTPPort),
	)
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	bus, err := messaging.NewBus(cfg.BusBrokers, logger)
	if err != nil {
		return nil, err
	}

	flowRepo := flowpostgres.NewRepository(pg.DB, logger)
	experimentRepo := experimentpostgres.NewRepository(pg.DB, logger)
	experimentUseCase := abtesting.NewModule(abtesting.Dependencies{
		Assignments: experimentRepo,
		Conversions: experimentRepo,
		Outbox:      experimentRepo,
		Random:      experimentpostgres.SystemRandom{},
		Clock:       experimentpostgres.SystemClock{},
		IDGen:       experimentpostgres.UUIDGenerator{},
		Logger:      logger,
	}).Handler.Experiments

	return &WorkerApp{
		postgres: pg,
		bus:      bus,
		cfg:      cfg,
		flowRelay: flowworkers.OutboxRelay{
			Outbox:    flowRepo,
			Publisher: bus,
			Clock:     flowpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		experimentRelay: experimentworkers.OutboxRelay{
			Outbox:    experimentRepo,
			Publisher: bus,
			Clock:     experimentpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		purchases: experimentworkers.PurchaseConsumer{
			Experiments: experimentUseCase,
			Logger:      logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.cfg.EnablePurchaseConsumer {
		if err := w.purchases.Start(ctx, w.bus); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if w.cfg.EnableFlowOutboxRelay {
			if err := w.flowRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		if w.cfg.EnableExperimentOutboxRelay {
			if err := w.experimentRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
