package nn

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"marketseq/internal/domain"
	"marketseq/internal/ports"
)

// TrainerConfig holds the hyperparameters of one training run.
type TrainerConfig struct {
	Epochs       int
	BatchSize    int
	LearningRate float64
	Loss         LossKind
	ShuffleSeed  int64
	// Patience is the number of epochs without validation improvement
	// tolerated before stopping early. Zero disables early stopping.
	Patience int
}

// EpochRecord is one epoch's worth of tracked metrics.
type EpochRecord struct {
	Epoch      int     // 1-based
	Loss       float64 // mean training loss over the epoch's batches
	TrainError float64 // mean absolute error per target row, training set
	ValError   float64 // mean absolute error per target row, validation set
}

// History is the full metric trace of a training run.
type History struct {
	Records      []EpochRecord
	BestValError float64
	StoppedEarly bool
	// PredictionTrace holds, for each example visited in the final epoch,
	// one representative predicted value (the close feature of the first
	// predicted step), for charting against the day index.
	PredictionTrace []float64
}

// Trainer drives gradient descent over an LSTM.
type Trainer struct {
	model  *LSTM
	cfg    TrainerConfig
	logger ports.Logger
}

// NewTrainer validates the configuration and builds a trainer.
func NewTrainer(model *LSTM, cfg TrainerConfig, logger ports.Logger) (*Trainer, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required: %w", ports.ErrConfigurationError)
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required: %w", ports.ErrConfigurationError)
	}
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive: %w", ports.ErrConfigurationError)
	}
	if cfg.BatchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive: %w", ports.ErrConfigurationError)
	}
	if cfg.LearningRate <= 0 {
		return nil, fmt.Errorf("learning rate must be positive: %w", ports.ErrConfigurationError)
	}
	if cfg.Loss == "" {
		cfg.Loss = LossMSE
	}
	if cfg.Patience < 0 {
		return nil, fmt.Errorf("patience cannot be negative: %w", ports.ErrConfigurationError)
	}
	return &Trainer{model: model, cfg: cfg, logger: logger}, nil
}

// Train runs the epoch loop over the training set, evaluating against the
// validation set after every epoch. The training set is reshuffled each
// epoch with a seeded generator and consumed in fixed-size mini-batches;
// a trailing partial batch is dropped. Gradient accumulation over a batch
// followed by a single Adam step matches batched gradient descent.
func (t *Trainer) Train(ctx context.Context, train, val domain.Dataset) (*History, error) {
	if len(train) < t.cfg.BatchSize {
		return nil, fmt.Errorf("training set has %d pairs, need at least one batch of %d: %w",
			len(train), t.cfg.BatchSize, ports.ErrNotEnoughPairs)
	}
	if err := t.checkShapes(train); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(t.cfg.ShuffleSeed))
	optimizer := NewAdam(t.model, t.cfg.LearningRate)
	grads := t.model.NewGradients()

	history := &History{BestValError: math.Inf(1)}
	patience := 0

	for epoch := 1; epoch <= t.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return history, fmt.Errorf("training interrupted at epoch %d: %w: %w", epoch, ports.ErrContextCanceled, err)
		}

		perm := rng.Perm(len(train))
		batches := len(train) / t.cfg.BatchSize
		epochLoss := 0.0
		finalEpoch := epoch == t.cfg.Epochs

		for b := 0; b < batches; b++ {
			grads.Zero()
			batchLoss := 0.0
			for k := 0; k < t.cfg.BatchSize; k++ {
				pair := train[perm[b*t.cfg.BatchSize+k]]
				cache, err := t.model.forward(pair.Input)
				if err != nil {
					return history, err
				}
				loss, dy := lossAndGrad(t.cfg.Loss, cache.y, flattenWindow(pair.Target))
				batchLoss += loss
				t.model.backward(cache, dy, grads)

				if finalEpoch {
					history.PredictionTrace = append(history.PredictionTrace, tracedValue(cache.y, t.model.OutputSize))
				}
			}
			optimizer.Step(t.model, grads, t.cfg.BatchSize)
			epochLoss += batchLoss / float64(t.cfg.BatchSize)
		}

		record := EpochRecord{
			Epoch: epoch,
			Loss:  epochLoss / float64(batches),
		}
		var err error
		if record.TrainError, err = t.MeanAbsError(train); err != nil {
			return history, err
		}
		if record.ValError, err = t.MeanAbsError(val); err != nil {
			return history, err
		}
		history.Records = append(history.Records, record)

		t.logger.Info(ctx, "epoch complete", map[string]interface{}{
			"epoch":      epoch,
			"loss":       record.Loss,
			"trainError": record.TrainError,
			"valError":   record.ValError,
		})

		if record.ValError < history.BestValError {
			history.BestValError = record.ValError
			patience = 0
		} else if t.cfg.Patience > 0 {
			patience++
			if patience >= t.cfg.Patience {
				t.logger.Info(ctx, "early stopping", map[string]interface{}{
					"epoch":        epoch,
					"bestValError": history.BestValError,
				})
				history.StoppedEarly = true
				break
			}
		}
	}

	return history, nil
}

// MeanAbsError computes the mean absolute error per target row over a
// dataset: the sum of absolute prediction errors divided by the total
// number of predicted rows. Returns 0 for an empty dataset.
func (t *Trainer) MeanAbsError(data domain.Dataset) (float64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	sum := 0.0
	rows := 0
	for _, pair := range data {
		cache, err := t.model.forward(pair.Input)
		if err != nil {
			return 0, err
		}
		target := flattenWindow(pair.Target)
		for k, p := range cache.y {
			sum += math.Abs(p - target[k])
		}
		rows += len(pair.Target)
	}
	return sum / float64(rows), nil
}

func (t *Trainer) checkShapes(data domain.Dataset) error {
	pair := data[0]
	if len(pair.Input) == 0 || len(pair.Input[0]) != t.model.InputSize {
		return fmt.Errorf("input window width does not match model input size %d: %w",
			t.model.InputSize, ports.ErrShapeMismatch)
	}
	if len(pair.Target) != t.model.OutputLen || len(pair.Target[0]) != t.model.OutputSize {
		return fmt.Errorf("target window shape (%d,%d) does not match model output shape (%d,%d): %w",
			len(pair.Target), len(pair.Target[0]), t.model.OutputLen, t.model.OutputSize, ports.ErrShapeMismatch)
	}
	return nil
}

// tracedValue picks the close feature of the first predicted step when the
// output is at least OHLC wide, else the first feature.
func tracedValue(y []float64, outputSize int) float64 {
	if outputSize >= 4 {
		return y[3]
	}
	return y[0]
}
