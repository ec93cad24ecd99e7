package main

import (
	"fmt"
	"log/slog"

	"github.com/vbonduro/homeclean/internal/backup/local"
	"github.com/vbonduro/homeclean/internal/config"
	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/metrics"
	"github.com/vbonduro/homeclean/internal/service"
	"github.com/vbonduro/homeclean/internal/status"
	"github.com/vbonduro/homeclean/internal/store"
)

type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	store   *db.Store
	repos   *store.Repositories
	service *service.MaintenanceService
}

func openApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	m := metrics.New()

	database, err := db.Open(cfg.DBPath, db.WithMetrics(m), db.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	archive, err := local.NewDir(cfg.BackupPath)
	if err != nil {
		_ = database.Close()
		return nil, err
	}

	clock := cfg.Clock()
	repos := store.NewRepositories(database, clock)
	svc := service.NewMaintenanceService(repos, database, archive, status.NewCalculator(clock), logger)

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: m,
		store:   database,
		repos:   repos,
		service: svc,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
