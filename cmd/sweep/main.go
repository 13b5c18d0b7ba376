package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"marketseq/config"
	"marketseq/internal/adapters/logger"
	"marketseq/internal/dataset"
	"marketseq/internal/nn"
	"marketseq/internal/tuning"
)

// sweep grid-searches learning rate and hidden size over the configured
// data directory and prints the combinations ranked by validation error.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	appLogger := logger.NewStdLogger(cfg.LogLevel)
	ctx := context.Background()

	bounds, err := dataset.ParseBoundaries(
		cfg.TrainStartDate, cfg.TrainEndDate,
		cfg.ValStartDate, cfg.ValEndDate,
		cfg.TestStartDate, cfg.TestEndDate,
	)
	if err != nil {
		log.Fatalf("FATAL: Invalid date boundaries: %v", err)
	}

	var proc dataset.ProcessFunc
	if cfg.OHLCOnly {
		proc = dataset.DropTrailingColumns(2)
	}
	sets, err := dataset.BuildByDate(cfg.DataDir, bounds, cfg.InputLength, cfg.OutputLength, proc)
	if err != nil {
		log.Fatalf("FATAL: Failed to build datasets: %v", err)
	}
	appLogger.Info(ctx, "Datasets built", map[string]interface{}{
		"train": len(sets.Train),
		"val":   len(sets.Val),
	})

	lossKind, err := nn.ParseLossKind(cfg.Loss)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	optimizer, err := tuning.NewOptimizer(tuning.Config{
		ParameterRanges: []tuning.ParameterRange{
			{Name: "learning_rate", Min: 0.0005, Max: 0.005, Step: 0.0015},
			{Name: "hidden_size", Min: 25, Max: 75, Step: 25, IsInt: true},
		},
		Base: nn.TrainerConfig{
			Epochs:       cfg.Epochs,
			BatchSize:    cfg.BatchSize,
			LearningRate: cfg.LearningRate,
			Loss:         lossKind,
			ShuffleSeed:  cfg.ShuffleSeed,
			Patience:     cfg.Patience,
		},
		BaseHiddenSize: cfg.HiddenSize,
		OutputLength:   cfg.OutputLength,
		WeightSeed:     cfg.WeightSeed,
		Logger:         appLogger,
	})
	if err != nil {
		log.Fatalf("FATAL: Failed to build optimizer: %v", err)
	}

	results, err := optimizer.Optimize(ctx, sets.Train, sets.Val)
	if err != nil {
		log.Fatalf("FATAL: Sweep failed: %v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight|tabwriter.Debug)
	fmt.Fprintln(w, "Rank\tLearningRate\tHiddenSize\tBestValMAE\tFinalLoss\tEarlyStop\t")
	for i, res := range results {
		fmt.Fprintf(w, "%d\t%.5f\t%.0f\t%.6f\t%.6f\t%v\t\n",
			i+1,
			res.Parameters["learning_rate"],
			res.Parameters["hidden_size"],
			res.BestValError,
			res.FinalLoss,
			res.StoppedEarly,
		)
	}
	w.Flush()
}
