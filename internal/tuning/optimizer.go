package tuning

import (
	"context"
	"fmt"
	"math"
	"sort"

	"marketseq/internal/domain"
	"marketseq/internal/nn"
	"marketseq/internal/ports"
)

// ParameterRange defines a range for a hyperparameter to sweep.
type ParameterRange struct {
	Name  string
	Min   float64
	Max   float64
	Step  float64
	IsInt bool
}

// Result holds the outcome of training one parameter combination.
type Result struct {
	Parameters   map[string]float64
	BestValError float64
	FinalLoss    float64
	StoppedEarly bool
}

// Config holds configuration for the sweep. Parameter names recognized by
// the trainer factory are "learning_rate", "hidden_size", and "batch_size";
// unset parameters fall back to the Base values.
type Config struct {
	ParameterRanges []ParameterRange
	Base            nn.TrainerConfig
	BaseHiddenSize  int
	OutputLength    int
	WeightSeed      int64
	Logger          ports.Logger
}

// Optimizer performs a hyperparameter grid search over the training loop.
type Optimizer struct {
	cfg Config
}

// NewOptimizer validates the sweep configuration and builds an optimizer.
func NewOptimizer(cfg Config) (*Optimizer, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required for optimizer: %w", ports.ErrConfigurationError)
	}
	if len(cfg.ParameterRanges) == 0 {
		return nil, fmt.Errorf("at least one parameter range is required: %w", ports.ErrConfigurationError)
	}
	for _, r := range cfg.ParameterRanges {
		if r.Step <= 0 || r.Max < r.Min {
			return nil, fmt.Errorf("parameter range %q is degenerate: %w", r.Name, ports.ErrConfigurationError)
		}
	}
	if cfg.BaseHiddenSize <= 0 || cfg.OutputLength <= 0 {
		return nil, fmt.Errorf("base model dimensions must be positive: %w", ports.ErrConfigurationError)
	}
	return &Optimizer{cfg: cfg}, nil
}

// Optimize trains one fresh model per parameter combination on the same
// train/val partitions and ranks the combinations by validation error,
// best first. Combinations run sequentially; every model starts from the
// same weight seed so only the swept parameters differ between runs.
func (o *Optimizer) Optimize(ctx context.Context, train, val domain.Dataset) ([]Result, error) {
	if len(train) == 0 {
		return nil, fmt.Errorf("training set is empty: %w", ports.ErrEmptyDataset)
	}
	featureCount := len(train[0].Input[0])

	combinations := o.generateParameterCombinations()
	results := make([]Result, 0, len(combinations))

	for _, params := range combinations {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("sweep interrupted: %w: %w", ports.ErrContextCanceled, err)
		}

		trainerCfg, hiddenSize := o.applyParams(params)
		model, err := nn.NewLSTM(featureCount, hiddenSize, o.cfg.OutputLength, featureCount, o.cfg.WeightSeed)
		if err != nil {
			return results, err
		}
		trainer, err := nn.NewTrainer(model, trainerCfg, o.cfg.Logger)
		if err != nil {
			return results, err
		}

		o.cfg.Logger.Info(ctx, "Sweep combination starting", map[string]interface{}{"params": params})
		history, err := trainer.Train(ctx, train, val)
		if err != nil {
			return results, fmt.Errorf("sweep combination failed: %w", err)
		}

		result := Result{
			Parameters:   params,
			BestValError: history.BestValError,
			StoppedEarly: history.StoppedEarly,
		}
		if len(history.Records) > 0 {
			result.FinalLoss = history.Records[len(history.Records)-1].Loss
		}
		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].BestValError < results[j].BestValError
	})
	return results, nil
}

// applyParams merges one combination into the base trainer configuration.
func (o *Optimizer) applyParams(params map[string]float64) (nn.TrainerConfig, int) {
	cfg := o.cfg.Base
	hiddenSize := o.cfg.BaseHiddenSize
	if v, ok := params["learning_rate"]; ok {
		cfg.LearningRate = v
	}
	if v, ok := params["batch_size"]; ok {
		cfg.BatchSize = int(v)
	}
	if v, ok := params["hidden_size"]; ok {
		hiddenSize = int(v)
	}
	return cfg, hiddenSize
}

// generateParameterCombinations generates all possible parameter combinations.
func (o *Optimizer) generateParameterCombinations() []map[string]float64 {
	var combinations []map[string]float64
	currentCombination := make(map[string]float64)

	var generate func(int)
	generate = func(paramIndex int) {
		if paramIndex == len(o.cfg.ParameterRanges) {
			// Create a copy of the current combination
			combination := make(map[string]float64)
			for k, v := range currentCombination {
				combination[k] = v
			}
			combinations = append(combinations, combination)
			return
		}

		param := o.cfg.ParameterRanges[paramIndex]
		value := param.Min
		for value <= param.Max+param.Step/2 { // Small epsilon to handle floating point comparison
			if param.IsInt {
				value = math.Round(value)
			}
			currentCombination[param.Name] = value
			generate(paramIndex + 1)
			value += param.Step
		}
	}

	generate(0)
	return combinations
}
