package domain

import "time"

// RunStatus represents the lifecycle state of a training run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusFinished RunStatus = "finished"
	RunStatusFailed   RunStatus = "failed"
)

// TrainingRun records one execution of the training pipeline.
type TrainingRun struct {
	ID           int64
	DataDir      string    // Source directory of the CSV files
	SplitMode    string    // "date" or "symbol"
	InputLength  int       // Lookback window length
	OutputLength int       // Lookahead window length
	HiddenSize   int
	BatchSize    int
	LearningRate float64
	Loss         string // "mse" or "huber"
	Epochs       int    // Requested epoch count
	TrainSize    int    // Number of training pairs (after augmentation)
	ValSize      int
	TestSize     int
	FinalLoss    float64 // Training loss of the last completed epoch
	BestValError float64 // Lowest validation mean absolute error seen
	Status       RunStatus
	StartedAt    time.Time
	FinishedAt   time.Time // Zero while the run is still in progress
}

// EpochMetric is one row of a run's training history.
type EpochMetric struct {
	RunID      int64
	Epoch      int // 1-based
	Loss       float64
	TrainError float64 // Mean absolute error on the training set
	ValError   float64 // Mean absolute error on the validation set
}
