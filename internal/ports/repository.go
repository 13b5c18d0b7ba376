package ports

import (
	"context"

	"marketseq/internal/domain"
)

// RunRepository defines the interface for storing and retrieving training runs.
type RunRepository interface {
	// CreateRun saves a new training run and returns its assigned ID.
	CreateRun(ctx context.Context, run *domain.TrainingRun) (int64, error)
	// RecordEpoch appends one epoch's metrics to a run's history.
	RecordEpoch(ctx context.Context, metric *domain.EpochMetric) error
	// FinishRun marks a run as finished or failed and stores its final metrics.
	FinishRun(ctx context.Context, run *domain.TrainingRun) error
	// FindRun retrieves a run by its ID.
	// Returns nil, nil if not found.
	FindRun(ctx context.Context, id int64) (*domain.TrainingRun, error)
	// FindRuns retrieves the most recent runs, newest first, up to a limit.
	FindRuns(ctx context.Context, limit int) ([]*domain.TrainingRun, error)
	// FindEpochMetrics retrieves a run's history ordered by epoch.
	FindEpochMetrics(ctx context.Context, runID int64) ([]*domain.EpochMetric, error)
}
