package nn

import (
	"context"
	"math"
	"sync"
	"testing"

	"marketseq/internal/domain"
	"marketseq/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	mu    sync.Mutex
	infos []string
}

func (l *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (l *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}
func (l *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (l *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// sineDataset windows a sine wave into single-feature sequence pairs.
func sineDataset(n, inputLen, outputLen int) domain.Dataset {
	total := n + inputLen + outputLen
	values := make([][]float64, total)
	for i := range values {
		values[i] = []float64{math.Sin(float64(i) * 0.25)}
	}
	data := make(domain.Dataset, 0, n)
	for i := 0; i < n; i++ {
		end := i + inputLen
		data = append(data, domain.SequencePair{
			Input:  values[i:end],
			Target: values[end : end+outputLen],
		})
	}
	return data
}

func newTestModel(t *testing.T, hidden, outputLen int) *LSTM {
	t.Helper()
	m, err := NewLSTM(1, hidden, outputLen, 1, 3)
	require.NoError(t, err)
	return m
}

func TestNewTrainer(t *testing.T) {
	model := newTestModel(t, 4, 2)
	logger := &mockLogger{}
	valid := TrainerConfig{Epochs: 1, BatchSize: 4, LearningRate: 0.01}

	tests := []struct {
		name   string
		model  *LSTM
		logger ports.Logger
		mutate func(*TrainerConfig)
	}{
		{name: "nil model", model: nil, logger: logger, mutate: func(c *TrainerConfig) {}},
		{name: "nil logger", model: model, logger: nil, mutate: func(c *TrainerConfig) {}},
		{name: "zero epochs", model: model, logger: logger, mutate: func(c *TrainerConfig) { c.Epochs = 0 }},
		{name: "zero batch size", model: model, logger: logger, mutate: func(c *TrainerConfig) { c.BatchSize = 0 }},
		{name: "zero learning rate", model: model, logger: logger, mutate: func(c *TrainerConfig) { c.LearningRate = 0 }},
		{name: "negative patience", model: model, logger: logger, mutate: func(c *TrainerConfig) { c.Patience = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			_, err := NewTrainer(tt.model, cfg, tt.logger)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
		})
	}

	t.Run("loss defaults to mse", func(t *testing.T) {
		tr, err := NewTrainer(model, valid, logger)
		require.NoError(t, err)
		assert.Equal(t, LossMSE, tr.cfg.Loss)
	})
}

func TestTrainReducesLoss(t *testing.T) {
	train := sineDataset(40, 8, 2)
	val := sineDataset(10, 8, 2)
	model := newTestModel(t, 8, 2)
	logger := &mockLogger{}

	tr, err := NewTrainer(model, TrainerConfig{
		Epochs:       25,
		BatchSize:    8,
		LearningRate: 0.01,
		Loss:         LossMSE,
		ShuffleSeed:  1,
	}, logger)
	require.NoError(t, err)

	history, err := tr.Train(context.Background(), train, val)
	require.NoError(t, err)
	require.Len(t, history.Records, 25)

	first := history.Records[0]
	last := history.Records[len(history.Records)-1]
	assert.Less(t, last.Loss, first.Loss)
	assert.Less(t, last.ValError, first.ValError)
	assert.False(t, history.StoppedEarly)
	assert.Equal(t, history.BestValError, minValError(history))

	// One traced value per example visited in the final epoch, full batches only.
	assert.Len(t, history.PredictionTrace, 40)
	assert.NotEmpty(t, logger.infos)
}

func minValError(h *History) float64 {
	best := math.Inf(1)
	for _, r := range h.Records {
		if r.ValError < best {
			best = r.ValError
		}
	}
	return best
}

func TestTrainNotEnoughPairs(t *testing.T) {
	model := newTestModel(t, 4, 2)
	tr, err := NewTrainer(model, TrainerConfig{Epochs: 1, BatchSize: 64, LearningRate: 0.01}, &mockLogger{})
	require.NoError(t, err)

	_, err = tr.Train(context.Background(), sineDataset(10, 8, 2), nil)
	assert.ErrorIs(t, err, ports.ErrNotEnoughPairs)
}

func TestTrainShapeMismatch(t *testing.T) {
	// Model expects 2-step targets, data carries 3.
	model := newTestModel(t, 4, 2)
	tr, err := NewTrainer(model, TrainerConfig{Epochs: 1, BatchSize: 4, LearningRate: 0.01}, &mockLogger{})
	require.NoError(t, err)

	_, err = tr.Train(context.Background(), sineDataset(10, 8, 3), nil)
	assert.ErrorIs(t, err, ports.ErrShapeMismatch)
}

func TestTrainContextCancelled(t *testing.T) {
	model := newTestModel(t, 4, 2)
	tr, err := NewTrainer(model, TrainerConfig{Epochs: 5, BatchSize: 4, LearningRate: 0.01}, &mockLogger{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	history, err := tr.Train(ctx, sineDataset(10, 8, 2), nil)
	assert.ErrorIs(t, err, ports.ErrContextCanceled)
	require.NotNil(t, history)
	assert.Empty(t, history.Records)
}

func TestTrainEarlyStopping(t *testing.T) {
	// With no validation data the validation error is 0 every epoch, so it
	// never improves on the first epoch and patience runs out deterministically.
	model := newTestModel(t, 4, 2)
	tr, err := NewTrainer(model, TrainerConfig{
		Epochs:       10,
		BatchSize:    4,
		LearningRate: 0.01,
		Patience:     2,
	}, &mockLogger{})
	require.NoError(t, err)

	history, err := tr.Train(context.Background(), sineDataset(12, 8, 2), nil)
	require.NoError(t, err)
	assert.True(t, history.StoppedEarly)
	assert.Len(t, history.Records, 3) // first epoch sets the best, two stale epochs follow
}

func TestMeanAbsError(t *testing.T) {
	model := newTestModel(t, 4, 2)
	tr, err := NewTrainer(model, TrainerConfig{Epochs: 1, BatchSize: 4, LearningRate: 0.01}, &mockLogger{})
	require.NoError(t, err)

	t.Run("empty dataset", func(t *testing.T) {
		got, err := tr.MeanAbsError(nil)
		require.NoError(t, err)
		assert.Equal(t, 0.0, got)
	})

	t.Run("matches direct computation", func(t *testing.T) {
		data := sineDataset(3, 8, 2)
		got, err := tr.MeanAbsError(data)
		require.NoError(t, err)

		sum := 0.0
		rows := 0
		for _, pair := range data {
			pred, err := model.Predict(pair.Input)
			require.NoError(t, err)
			for i, row := range pred {
				for j, v := range row {
					sum += math.Abs(v - pair.Target[i][j])
				}
			}
			rows += len(pair.Target)
		}
		assert.InDelta(t, sum/float64(rows), got, 1e-12)
	})
}
