package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"marketseq/config"
	"marketseq/internal/dataset"
	"marketseq/internal/domain"
	"marketseq/internal/nn"
	"marketseq/internal/ports"
	"marketseq/internal/report"
)

// PipelineService orchestrates one end-to-end run of the data-preparation
// and training pipeline: load CSVs, split into train/val/test, augment,
// normalize, train the network, persist the run, and render the training
// curves.
type PipelineService struct {
	cfg    *config.Config
	logger ports.Logger
	runs   ports.RunRepository
}

// NewPipelineService creates a new application service instance.
func NewPipelineService(cfg *config.Config, logger ports.Logger, runs ports.RunRepository) (*PipelineService, error) {
	// Validate dependencies
	if cfg == nil || logger == nil || runs == nil {
		return nil, fmt.Errorf("missing required dependencies for PipelineService")
	}
	return &PipelineService{cfg: cfg, logger: logger, runs: runs}, nil
}

// Run executes the pipeline once and returns the persisted run record.
func (s *PipelineService) Run(ctx context.Context) (*domain.TrainingRun, error) {
	s.logger.Info(ctx, "Starting pipeline run...")

	// Create a context that can be canceled by signals
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel() // Cancel the main context
		case <-ctx.Done():
		}
	}()

	sets, err := s.buildDatasets(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info(ctx, "Datasets built", map[string]interface{}{
		"train": len(sets.Train),
		"val":   len(sets.Val),
		"test":  len(sets.Test),
	})

	if len(sets.Train) == 0 {
		return nil, fmt.Errorf("no training pairs in %q for the configured date ranges: %w",
			s.cfg.DataDir, ports.ErrEmptyDataset)
	}

	if s.cfg.AugmentProportion > 0 {
		before := len(sets.Train)
		sets.Train = dataset.Augment(sets.Train, dataset.GaussianNoise, s.cfg.AugmentProportion, s.cfg.AugmentSeed)
		s.logger.Info(ctx, "Training set augmented", map[string]interface{}{
			"before": before,
			"after":  len(sets.Train),
		})
	}

	if s.cfg.Normalize {
		scaler, err := dataset.FitMinMax(sets.Train)
		if err != nil {
			return nil, fmt.Errorf("failed to fit scaler: %w", err)
		}
		sets.Train = scaler.Transform(sets.Train)
		sets.Val = scaler.Transform(sets.Val)
		sets.Test = scaler.Transform(sets.Test)
		s.logger.Info(ctx, "Datasets normalized to training range")
	}

	featureCount := len(sets.Train[0].Input[0])
	model, err := nn.NewLSTM(featureCount, s.cfg.HiddenSize, s.cfg.OutputLength, featureCount, s.cfg.WeightSeed)
	if err != nil {
		return nil, fmt.Errorf("failed to build model: %w", err)
	}

	lossKind, err := nn.ParseLossKind(s.cfg.Loss)
	if err != nil {
		return nil, err
	}
	trainer, err := nn.NewTrainer(model, nn.TrainerConfig{
		Epochs:       s.cfg.Epochs,
		BatchSize:    s.cfg.BatchSize,
		LearningRate: s.cfg.LearningRate,
		Loss:         lossKind,
		ShuffleSeed:  s.cfg.ShuffleSeed,
		Patience:     s.cfg.Patience,
	}, s.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build trainer: %w", err)
	}

	run := &domain.TrainingRun{
		DataDir:      s.cfg.DataDir,
		SplitMode:    s.cfg.SplitMode,
		InputLength:  s.cfg.InputLength,
		OutputLength: s.cfg.OutputLength,
		HiddenSize:   s.cfg.HiddenSize,
		BatchSize:    s.cfg.BatchSize,
		LearningRate: s.cfg.LearningRate,
		Loss:         s.cfg.Loss,
		Epochs:       s.cfg.Epochs,
		TrainSize:    len(sets.Train),
		ValSize:      len(sets.Val),
		TestSize:     len(sets.Test),
		Status:       domain.RunStatusRunning,
		StartedAt:    time.Now(),
	}
	if _, err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to persist run: %w", err)
	}

	history, trainErr := trainer.Train(ctx, sets.Train, sets.Val)
	if history == nil {
		history = &nn.History{}
	}

	// Persist whatever history exists, even for a failed run.
	for _, rec := range history.Records {
		metric := &domain.EpochMetric{
			RunID:      run.ID,
			Epoch:      rec.Epoch,
			Loss:       rec.Loss,
			TrainError: rec.TrainError,
			ValError:   rec.ValError,
		}
		if err := s.runs.RecordEpoch(ctx, metric); err != nil {
			s.logger.Error(ctx, err, "Failed to record epoch metric", map[string]interface{}{"epoch": rec.Epoch})
		}
	}

	run.FinishedAt = time.Now()
	if len(history.Records) > 0 {
		run.FinalLoss = history.Records[len(history.Records)-1].Loss
		run.BestValError = history.BestValError
	}
	if trainErr != nil {
		run.Status = domain.RunStatusFailed
	} else {
		run.Status = domain.RunStatusFinished
	}
	if err := s.runs.FinishRun(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error(ctx, err, "Failed to finalize run record", map[string]interface{}{"runID": run.ID})
	}
	if trainErr != nil {
		return run, fmt.Errorf("training failed: %w", trainErr)
	}

	testError, err := trainer.MeanAbsError(sets.Test)
	if err != nil {
		return run, fmt.Errorf("test evaluation failed: %w", err)
	}
	s.logger.Info(ctx, "Training complete", map[string]interface{}{
		"runID":        run.ID,
		"finalLoss":    run.FinalLoss,
		"bestValError": run.BestValError,
		"testError":    testError,
	})

	reportPath := filepath.Join(s.cfg.ReportDir, fmt.Sprintf("run_%d.html", run.ID))
	title := fmt.Sprintf("Run %d (%s split)", run.ID, run.SplitMode)
	if err := report.TrainingCurves(history, title, reportPath); err != nil {
		s.logger.Error(ctx, err, "Failed to render training curves", map[string]interface{}{"path": reportPath})
	} else {
		s.logger.Info(ctx, "Training curves rendered", map[string]interface{}{"path": reportPath})
	}

	return run, nil
}

// buildDatasets constructs the three partitions according to the configured
// split mode.
func (s *PipelineService) buildDatasets(ctx context.Context) (*domain.SplitSets, error) {
	bounds, err := dataset.ParseBoundaries(
		s.cfg.TrainStartDate, s.cfg.TrainEndDate,
		s.cfg.ValStartDate, s.cfg.ValEndDate,
		s.cfg.TestStartDate, s.cfg.TestEndDate,
	)
	if err != nil {
		return nil, err
	}

	var proc dataset.ProcessFunc
	if s.cfg.OHLCOnly {
		proc = dataset.DropTrailingColumns(2)
	}

	switch s.cfg.SplitMode {
	case "symbol":
		files, err := dataset.ListSeriesFiles(s.cfg.DataDir)
		if err != nil {
			return nil, err
		}
		split := dataset.SplitSymbols(files, s.cfg.SymbolSplitSeed)
		s.logger.Info(ctx, "Symbols split", map[string]interface{}{
			"files": len(files),
			"train": len(split.Train),
			"val":   len(split.Val),
			"test":  len(split.Test),
		})
		return dataset.BuildBySymbolAndDate(s.cfg.DataDir, split, bounds, s.cfg.InputLength, s.cfg.OutputLength, proc)
	default:
		return dataset.BuildByDate(s.cfg.DataDir, bounds, s.cfg.InputLength, s.cfg.OutputLength, proc)
	}
}
