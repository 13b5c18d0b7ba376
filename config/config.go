package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"marketseq/internal/adapters/logger" // Import the logger package for LogLevel
)

// Config holds all application configuration.
type Config struct {
	// Data Preparation
	DataDir      string // Directory of per-symbol CSV files
	SplitMode    string // "date" (all symbols share date boundaries) or "symbol" (files are split first)
	InputLength  int    // Lookback window length
	OutputLength int    // Lookahead window length
	OHLCOnly     bool   // Drop volume/open-interest columns before windowing

	// Date boundaries (YYYY-MM-DD)
	TrainStartDate string
	TrainEndDate   string
	ValStartDate   string
	ValEndDate     string
	TestStartDate  string
	TestEndDate    string

	// Symbol split
	SymbolSplitSeed int64

	// Augmentation
	AugmentProportion float64 // Proportion of new noise examples to append to the training set
	AugmentSeed       int64

	// Normalization
	Normalize bool // Min-max scale all partitions using the training range

	// Training Parameters
	Epochs       int
	BatchSize    int
	LearningRate float64
	HiddenSize   int
	Loss         string // "mse" or "huber"
	Patience     int    // Early-stopping patience in epochs; 0 disables
	WeightSeed   int64
	ShuffleSeed  int64

	// Outputs
	DBPath    string
	ReportDir string

	// Binance API (only needed by the fetch command; public endpoints work unauthenticated)
	APIKey        string
	SecretKey     string
	IsTestnet     bool
	FetchSymbols  []string
	FetchInterval string
	FetchDays     int

	// Logging
	LogLevel logger.LogLevel // Use the LogLevel type from the logger adapter
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Data Preparation
	cfg.DataDir = getEnv("DATA_DIR", "./data/ETFs")
	if cfg.DataDir == "" {
		errs = append(errs, "DATA_DIR must be set")
	}

	cfg.SplitMode = strings.ToLower(getEnv("SPLIT_MODE", "date"))
	if cfg.SplitMode != "date" && cfg.SplitMode != "symbol" {
		errs = append(errs, "SPLIT_MODE must be 'date' or 'symbol'")
	}

	cfg.InputLength, err = getEnvAsIntRequired("INPUT_LENGTH", 30)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid INPUT_LENGTH: %v", err))
	} else if cfg.InputLength <= 0 {
		errs = append(errs, "INPUT_LENGTH must be positive")
	}

	cfg.OutputLength, err = getEnvAsIntRequired("OUTPUT_LENGTH", 5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid OUTPUT_LENGTH: %v", err))
	} else if cfg.OutputLength <= 0 {
		errs = append(errs, "OUTPUT_LENGTH must be positive")
	}

	cfg.OHLCOnly = getEnvAsBool("OHLC_ONLY", true)

	// Date boundaries; defaults mirror a long training range, a year and a
	// half of validation, and everything afterwards as test.
	cfg.TrainStartDate = getEnv("TRAIN_START_DATE", "2000-01-01")
	cfg.TrainEndDate = getEnv("TRAIN_END_DATE", "2014-01-01")
	cfg.ValStartDate = getEnv("VAL_START_DATE", "2014-01-02")
	cfg.ValEndDate = getEnv("VAL_END_DATE", "2015-06-01")
	cfg.TestStartDate = getEnv("TEST_START_DATE", "2015-06-01")
	cfg.TestEndDate = getEnv("TEST_END_DATE", "2030-01-01")

	cfg.SymbolSplitSeed = int64(getEnvAsInt("SYMBOL_SPLIT_SEED", 42))

	cfg.AugmentProportion, err = getEnvAsFloatRequired("AUGMENT_PROPORTION", 0.0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid AUGMENT_PROPORTION: %v", err))
	} else if cfg.AugmentProportion < 0 {
		errs = append(errs, "AUGMENT_PROPORTION cannot be negative")
	}
	cfg.AugmentSeed = int64(getEnvAsInt("AUGMENT_SEED", 42))

	cfg.Normalize = getEnvAsBool("NORMALIZE", false)

	// Training Parameters
	cfg.Epochs, err = getEnvAsIntRequired("EPOCHS", 10)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid EPOCHS: %v", err))
	} else if cfg.Epochs <= 0 {
		errs = append(errs, "EPOCHS must be positive")
	}

	cfg.BatchSize, err = getEnvAsIntRequired("BATCH_SIZE", 256)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BATCH_SIZE: %v", err))
	} else if cfg.BatchSize <= 0 {
		errs = append(errs, "BATCH_SIZE must be positive")
	}

	cfg.LearningRate, err = getEnvAsFloatRequired("LEARNING_RATE", 0.001)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid LEARNING_RATE: %v", err))
	} else if cfg.LearningRate <= 0 {
		errs = append(errs, "LEARNING_RATE must be positive")
	}

	cfg.HiddenSize, err = getEnvAsIntRequired("HIDDEN_SIZE", 50)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid HIDDEN_SIZE: %v", err))
	} else if cfg.HiddenSize <= 0 {
		errs = append(errs, "HIDDEN_SIZE must be positive")
	}

	cfg.Loss = strings.ToLower(getEnv("LOSS", "mse"))
	if cfg.Loss != "mse" && cfg.Loss != "huber" {
		errs = append(errs, "LOSS must be 'mse' or 'huber'")
	}

	cfg.Patience = getEnvAsInt("PATIENCE", 0)
	if cfg.Patience < 0 {
		errs = append(errs, "PATIENCE cannot be negative")
	}

	cfg.WeightSeed = int64(getEnvAsInt("WEIGHT_SEED", 1))
	cfg.ShuffleSeed = int64(getEnvAsInt("SHUFFLE_SEED", 1))

	// Outputs
	cfg.DBPath = getEnv("DB_PATH", "./data/marketseq.db")
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	cfg.ReportDir = getEnv("REPORT_DIR", "./reports")

	// Binance API (optional; klines are public endpoints)
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)
	cfg.FetchInterval = getEnv("FETCH_INTERVAL", "1d")
	cfg.FetchDays = getEnvAsInt("FETCH_DAYS", 365)
	if cfg.FetchDays <= 0 {
		errs = append(errs, "FETCH_DAYS must be positive")
	}
	for _, s := range strings.Split(getEnv("FETCH_SYMBOLS", "BTCUSDT,ETHUSDT"), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			cfg.FetchSymbols = append(cfg.FetchSymbols, strings.ToUpper(s))
		}
	}

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// For non-required fields, default is acceptable.
		return defaultValue
	}
	return value
}

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
