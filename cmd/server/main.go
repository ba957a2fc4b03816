package main

import (
	"github.com/sirupsen/logrus"
	"github.com/weylan/street-coverage-go/internal/api"
	"github.com/weylan/street-coverage-go/internal/config"
	"github.com/weylan/street-coverage-go/internal/database"
	"github.com/weylan/street-coverage-go/internal/handler"
	"github.com/weylan/street-coverage-go/internal/matching/edgegraph"
	"github.com/weylan/street-coverage-go/internal/repository"
	"github.com/weylan/street-coverage-go/internal/roadgraph"
	"github.com/weylan/street-coverage-go/internal/service"
)

func main() {
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := database.Init(database.Config{Path: cfg.DBPath}); err != nil {
		logger.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	db := database.GetDB()
	if err := database.NewMigrationManager(db).RunMigrations(); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	progressRepo := repository.NewStreetProgressRepository(db)
	edgeRepo := repository.NewValidatedEdgeRepository(db)
	nodeHitRepo := repository.NewNodeHitRepository(db)
	wayStatsRepo := repository.NewWayStatsRepository(db)
	wayCacheRepo := repository.NewWayCacheRepository(db)

	overpass := roadgraph.NewOverpassClient(cfg.Overpass, logger)
	osrm := roadgraph.NewOSRMMatcher(cfg.Overpass, cfg.EdgeGraph, logger)
	external := roadgraph.Services{
		Segments: overpass,
		Matcher:  osrm,
		Ways:     overpass,
		Nodes:    overpass,
	}

	cache := service.NewNodeWayStore(wayCacheRepo, logger)
	resolver := edgegraph.NewResolver(cfg.EdgeGraph, overpass, cache, logger)
	edgeMatcher := edgegraph.NewMatcher(cfg.EdgeGraph, osrm, resolver, logger)

	runService := service.NewRunService(
		cfg, logger, external, edgeMatcher,
		progressRepo, edgeRepo, nodeHitRepo, wayStatsRepo,
	)
	progressService := service.NewProgressService(progressRepo)
	areaService := service.NewAreaService(logger)

	router := api.SetupRouter(logger, api.Handlers{
		Run:      handler.NewRunHandler(runService),
		Progress: handler.NewProgressHandler(progressService),
		Area:     handler.NewAreaHandler(areaService),
	})

	logger.Infof("Server starting on %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		logger.Fatalf("Failed to start server: %v", err)
	}
}
