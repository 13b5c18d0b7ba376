package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"marketseq/config"
	"marketseq/internal/adapters/logger"
	"marketseq/internal/adapters/sqlite"
)

func main() {
	limit := flag.Int("limit", 20, "maximum number of runs to list")
	runID := flag.Int64("run", 0, "print the epoch history of one run instead of the run list")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(logger.LevelWarn) // Keep command output clean
	repo, err := sqlite.NewRepository(sqlite.Config{
		DBPath: cfg.DBPath,
		Logger: appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to open run database: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	if *runID > 0 {
		printHistory(ctx, repo, *runID)
		return
	}
	printRuns(ctx, repo, *limit)
}

func printRuns(ctx context.Context, repo *sqlite.Repository, limit int) {
	runs, err := repo.FindRuns(ctx, limit)
	if err != nil {
		log.Fatalf("Error listing runs: %v", err)
	}
	if len(runs) == 0 {
		log.Println("No runs recorded yet. Run the training pipeline first.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "ID\tSplit\tWindow\tHidden\tBatch\tLR\tLoss\tTrain\tVal\tTest\tFinalLoss\tBestValMAE\tStatus\t")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%d/%d\t%d\t%d\t%.5f\t%s\t%d\t%d\t%d\t%.5f\t%.5f\t%s\t\n",
			run.ID,
			run.SplitMode,
			run.InputLength, run.OutputLength,
			run.HiddenSize,
			run.BatchSize,
			run.LearningRate,
			run.Loss,
			run.TrainSize, run.ValSize, run.TestSize,
			run.FinalLoss,
			run.BestValError,
			run.Status,
		)
	}
	w.Flush()
}

func printHistory(ctx context.Context, repo *sqlite.Repository, runID int64) {
	run, err := repo.FindRun(ctx, runID)
	if err != nil {
		log.Fatalf("Error loading run %d: %v", runID, err)
	}
	if run == nil {
		log.Fatalf("Run %d not found", runID)
	}
	metrics, err := repo.FindEpochMetrics(ctx, runID)
	if err != nil {
		log.Fatalf("Error loading epoch metrics for run %d: %v", runID, err)
	}

	fmt.Printf("Run %d: %s split, window %d/%d, started %s\n\n",
		run.ID, run.SplitMode, run.InputLength, run.OutputLength,
		run.StartedAt.Format("2006-01-02 15:04:05"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Epoch\tLoss\tTrainMAE\tValMAE\t")
	for _, m := range metrics {
		fmt.Fprintf(w, "%d\t%.6f\t%.6f\t%.6f\t\n", m.Epoch, m.Loss, m.TrainError, m.ValError)
	}
	w.Flush()
}
