package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"marketseq/internal/domain"
	"marketseq/internal/ports"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Repository implements the ports.RunRepository interface using SQLite.
type Repository struct {
	db     *sql.DB
	logger ports.Logger
}

// Config holds configuration for the SQLite repository.
type Config struct {
	DBPath string
	Logger ports.Logger
}

// NewRepository creates a new SQLite repository instance.
func NewRepository(cfg Config) (*Repository, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for SQLite repository")
	}
	dbPath := cfg.DBPath
	if dbPath == "" {
		dbPath = "./data/marketseq.db" // Default path
	}

	// Create data directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		err = fmt.Errorf("failed to create data directory '%s': %w", filepath.Dir(dbPath), err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Open database connection
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000") // WAL mode for better concurrency
	if err != nil {
		err = fmt.Errorf("failed to open database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		err = fmt.Errorf("failed to ping database at '%s': %w: %w", dbPath, ports.ErrDBConnection, err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}

	// Set connection pool settings (important for SQLite)
	db.SetMaxOpenConns(1) // SQLite handles concurrency internally, but Go driver benefits from limiting connections
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cfg.Logger.Info(context.Background(), "SQLite database connection established", map[string]interface{}{"path": dbPath})

	repo := &Repository{db: db, logger: cfg.Logger}

	if err := repo.initializeSchema(context.Background()); err != nil {
		db.Close()
		err = fmt.Errorf("failed to initialize database schema: %w", err)
		cfg.Logger.Error(context.Background(), err, "SQLite repository initialization failed")
		return nil, err
	}
	cfg.Logger.Info(context.Background(), "Database schema initialized/verified")

	return repo, nil
}

// initializeSchema creates tables if they don't exist.
// NOTE: This is a basic approach. A proper migration tool is recommended for production.
func (r *Repository) initializeSchema(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS training_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		data_dir TEXT NOT NULL,
		split_mode TEXT NOT NULL,
		input_length INTEGER NOT NULL,
		output_length INTEGER NOT NULL,
		hidden_size INTEGER NOT NULL,
		batch_size INTEGER NOT NULL,
		learning_rate REAL NOT NULL,
		loss TEXT NOT NULL,
		epochs INTEGER NOT NULL,
		train_size INTEGER NOT NULL,
		val_size INTEGER NOT NULL,
		test_size INTEGER NOT NULL,
		final_loss REAL DEFAULT NULL,
		best_val_error REAL DEFAULT NULL,
		status TEXT NOT NULL,
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP DEFAULT NULL
	);

	CREATE TABLE IF NOT EXISTS epoch_metrics (
		run_id INTEGER NOT NULL,
		epoch INTEGER NOT NULL,
		loss REAL NOT NULL,
		train_error REAL NOT NULL,
		val_error REAL NOT NULL,
		PRIMARY KEY (run_id, epoch)
	);
	-- Add indexes for common lookups
	CREATE INDEX IF NOT EXISTS idx_training_runs_started_at ON training_runs (started_at);
	`
	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema initialization: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r.db != nil {
		r.logger.Info(context.Background(), "Closing SQLite database connection")
		return r.db.Close()
	}
	return nil
}

// CreateRun saves a new training run and returns its assigned ID.
func (r *Repository) CreateRun(ctx context.Context, run *domain.TrainingRun) (int64, error) {
	const query = `
	INSERT INTO training_runs (data_dir, split_mode, input_length, output_length, hidden_size,
		batch_size, learning_rate, loss, epochs, train_size, val_size, test_size, status, started_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query,
		run.DataDir, run.SplitMode, run.InputLength, run.OutputLength, run.HiddenSize,
		run.BatchSize, run.LearningRate, run.Loss, run.Epochs,
		run.TrainSize, run.ValSize, run.TestSize, run.Status, run.StartedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert training run: %w: %w", ports.ErrQueryFailed, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for training run: %w", err)
	}
	run.ID = id
	r.logger.Debug(ctx, "Training run created", map[string]interface{}{"runID": id, "splitMode": run.SplitMode})
	return id, nil
}

// RecordEpoch appends one epoch's metrics to a run's history.
func (r *Repository) RecordEpoch(ctx context.Context, metric *domain.EpochMetric) error {
	const query = `
	INSERT INTO epoch_metrics (run_id, epoch, loss, train_error, val_error)
	VALUES (?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		metric.RunID, metric.Epoch, metric.Loss, metric.TrainError, metric.ValError)
	if err != nil {
		return fmt.Errorf("failed to insert epoch %d for run %d: %w: %w",
			metric.Epoch, metric.RunID, ports.ErrQueryFailed, err)
	}
	return nil
}

// FinishRun marks a run as finished or failed and stores its final metrics.
func (r *Repository) FinishRun(ctx context.Context, run *domain.TrainingRun) error {
	const query = `
	UPDATE training_runs
	SET final_loss = ?, best_val_error = ?, train_size = ?, val_size = ?, test_size = ?,
	    status = ?, finished_at = ?
	WHERE id = ?`

	var finishedAt sql.NullTime
	if !run.FinishedAt.IsZero() {
		finishedAt = sql.NullTime{Time: run.FinishedAt, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, query,
		run.FinalLoss, run.BestValError, run.TrainSize, run.ValSize, run.TestSize,
		run.Status, finishedAt, run.ID)
	if err != nil {
		return fmt.Errorf("failed to finish run ID %d: %w: %w", run.ID, ports.ErrUpdateFailed, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for run ID %d: %w", run.ID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("run ID %d not found for update: %w", run.ID, ports.ErrNotFound)
	}
	r.logger.Debug(ctx, "Training run finished", map[string]interface{}{"runID": run.ID, "status": run.Status})
	return nil
}

// FindRun retrieves a run by its ID.
func (r *Repository) FindRun(ctx context.Context, id int64) (*domain.TrainingRun, error) {
	const query = selectRunColumns + ` WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Debug(ctx, "Training run not found by ID", map[string]interface{}{"runID": id})
			return nil, nil // Not an error, just not found
		}
		return nil, fmt.Errorf("failed to query run by ID %d: %w", id, err)
	}
	return run, nil
}

// FindRuns retrieves the most recent runs, newest first, up to a limit.
func (r *Repository) FindRuns(ctx context.Context, limit int) ([]*domain.TrainingRun, error) {
	const query = selectRunColumns + ` ORDER BY started_at DESC, id DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent runs: %w: %w", ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var runs []*domain.TrainingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

// FindEpochMetrics retrieves a run's history ordered by epoch.
func (r *Repository) FindEpochMetrics(ctx context.Context, runID int64) ([]*domain.EpochMetric, error) {
	const query = `
	SELECT run_id, epoch, loss, train_error, val_error
	FROM epoch_metrics
	WHERE run_id = ?
	ORDER BY epoch ASC`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query epoch metrics for run %d: %w: %w", runID, ports.ErrQueryFailed, err)
	}
	defer rows.Close()

	var metrics []*domain.EpochMetric
	for rows.Next() {
		m := &domain.EpochMetric{}
		if err := rows.Scan(&m.RunID, &m.Epoch, &m.Loss, &m.TrainError, &m.ValError); err != nil {
			return nil, fmt.Errorf("failed to scan epoch metric row: %w", err)
		}
		metrics = append(metrics, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating epoch metric rows: %w", err)
	}
	return metrics, nil
}

const selectRunColumns = `
	SELECT id, data_dir, split_mode, input_length, output_length, hidden_size,
	       batch_size, learning_rate, loss, epochs, train_size, val_size, test_size,
	       COALESCE(final_loss, 0), COALESCE(best_val_error, 0), status, started_at, finished_at
	FROM training_runs`

// scanner abstracts *sql.Row and *sql.Rows for scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(s scanner) (*domain.TrainingRun, error) {
	run := &domain.TrainingRun{}
	var finishedAt sql.NullTime
	err := s.Scan(
		&run.ID, &run.DataDir, &run.SplitMode, &run.InputLength, &run.OutputLength,
		&run.HiddenSize, &run.BatchSize, &run.LearningRate, &run.Loss, &run.Epochs,
		&run.TrainSize, &run.ValSize, &run.TestSize,
		&run.FinalLoss, &run.BestValError, &run.Status, &run.StartedAt, &finishedAt,
	)
	if err != nil {
		return nil, err
	}
	if finishedAt.Valid {
		run.FinishedAt = finishedAt.Time
	}
	return run, nil
}
