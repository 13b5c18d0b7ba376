package main

import (
	"context"
	"log" // Use standard log only for initial fatal errors before logger is set up

	"marketseq/config"
	"marketseq/internal/adapters/logger"
	"marketseq/internal/adapters/sqlite"
	"marketseq/internal/app"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Repository (Database Adapter)
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize database repository")
		log.Fatalf("FATAL: Failed to initialize database repository: %v", err) // Also log to stderr
	}
	defer func() {
		if err := repo.Close(); err != nil {
			appLogger.Error(context.Background(), err, "Error closing database repository")
		}
	}()
	appLogger.Info(context.Background(), "Database repository initialized")

	// 4. Initialize Pipeline Service
	pipeline, err := app.NewPipelineService(cfg, appLogger, repo)
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize pipeline service")
		log.Fatalf("FATAL: Failed to initialize pipeline service: %v", err)
	}
	appLogger.Info(context.Background(), "Pipeline service initialized")

	// 5. Run the Pipeline
	run, err := pipeline.Run(context.Background())
	if err != nil {
		appLogger.Error(context.Background(), err, "Pipeline run exited with error")
		log.Fatalf("FATAL: Pipeline run exited with error: %v", err)
	}

	appLogger.Info(context.Background(), "Pipeline run finished", map[string]interface{}{
		"runID":        run.ID,
		"finalLoss":    run.FinalLoss,
		"bestValError": run.BestValError,
	})
}
