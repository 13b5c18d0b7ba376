package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"marketseq/internal/domain"
	"marketseq/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct{}

func (l *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (l *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (l *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (l *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

// setupTestDB creates a repository backed by a fresh database in a temp dir.
func setupTestDB(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(Config{
		DBPath: filepath.Join(t.TempDir(), "test.db"),
		Logger: &mockLogger{},
	})
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func newTestRun(started time.Time) *domain.TrainingRun {
	return &domain.TrainingRun{
		DataDir:      "./data/ETFs",
		SplitMode:    "date",
		InputLength:  30,
		OutputLength: 5,
		HiddenSize:   50,
		BatchSize:    256,
		LearningRate: 0.001,
		Loss:         "mse",
		Epochs:       10,
		TrainSize:    1000,
		ValSize:      200,
		TestSize:     300,
		Status:       domain.RunStatusRunning,
		StartedAt:    started,
	}
}

func TestNewRepository(t *testing.T) {
	t.Run("requires logger", func(t *testing.T) {
		_, err := NewRepository(Config{DBPath: filepath.Join(t.TempDir(), "x.db")})
		assert.Error(t, err)
	})

	t.Run("creates schema", func(t *testing.T) {
		repo := setupTestDB(t)
		runs, err := repo.FindRuns(context.Background(), 10)
		require.NoError(t, err)
		assert.Empty(t, runs)
	})
}

func TestCreateAndFindRun(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	started := time.Now().UTC().Truncate(time.Second)

	run := newTestRun(started)
	id, err := repo.CreateRun(ctx, run)
	require.NoError(t, err)
	assert.Positive(t, id)
	assert.Equal(t, id, run.ID)

	found, err := repo.FindRun(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, run.DataDir, found.DataDir)
	assert.Equal(t, run.SplitMode, found.SplitMode)
	assert.Equal(t, run.InputLength, found.InputLength)
	assert.Equal(t, run.LearningRate, found.LearningRate)
	assert.Equal(t, domain.RunStatusRunning, found.Status)
	assert.True(t, found.StartedAt.Equal(started))
	assert.True(t, found.FinishedAt.IsZero())
	assert.Zero(t, found.FinalLoss)
}

func TestFindRunNotFound(t *testing.T) {
	repo := setupTestDB(t)
	found, err := repo.FindRun(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestFinishRun(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	run := newTestRun(time.Now().UTC())
	_, err := repo.CreateRun(ctx, run)
	require.NoError(t, err)

	run.FinalLoss = 0.042
	run.BestValError = 0.17
	run.TrainSize = 1500 // Grew through augmentation
	run.Status = domain.RunStatusFinished
	run.FinishedAt = time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.FinishRun(ctx, run))

	found, err := repo.FindRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, domain.RunStatusFinished, found.Status)
	assert.InDelta(t, 0.042, found.FinalLoss, 1e-12)
	assert.InDelta(t, 0.17, found.BestValError, 1e-12)
	assert.Equal(t, 1500, found.TrainSize)
	assert.True(t, found.FinishedAt.Equal(run.FinishedAt))
}

func TestFinishRunMissing(t *testing.T) {
	repo := setupTestDB(t)
	run := newTestRun(time.Now().UTC())
	run.ID = 12345
	err := repo.FinishRun(context.Background(), run)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestFindRunsOrdering(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)

	var ids []int64
	for i := 0; i < 3; i++ {
		run := newTestRun(base.Add(time.Duration(i) * time.Minute))
		id, err := repo.CreateRun(ctx, run)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	runs, err := repo.FindRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID) // newest first
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestEpochMetrics(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	run := newTestRun(time.Now().UTC())
	id, err := repo.CreateRun(ctx, run)
	require.NoError(t, err)

	for epoch := 1; epoch <= 3; epoch++ {
		require.NoError(t, repo.RecordEpoch(ctx, &domain.EpochMetric{
			RunID:      id,
			Epoch:      epoch,
			Loss:       1.0 / float64(epoch),
			TrainError: 0.5 / float64(epoch),
			ValError:   0.6 / float64(epoch),
		}))
	}

	metrics, err := repo.FindEpochMetrics(ctx, id)
	require.NoError(t, err)
	require.Len(t, metrics, 3)
	for i, m := range metrics {
		assert.Equal(t, id, m.RunID)
		assert.Equal(t, i+1, m.Epoch)
	}
	assert.InDelta(t, 1.0, metrics[0].Loss, 1e-12)
	assert.InDelta(t, 0.2, metrics[2].ValError, 1e-12)

	t.Run("duplicate epoch rejected", func(t *testing.T) {
		err := repo.RecordEpoch(ctx, &domain.EpochMetric{RunID: id, Epoch: 2})
		assert.ErrorIs(t, err, ports.ErrQueryFailed)
	})

	t.Run("unknown run yields empty history", func(t *testing.T) {
		metrics, err := repo.FindEpochMetrics(ctx, 777)
		require.NoError(t, err)
		assert.Empty(t, metrics)
	})
}
