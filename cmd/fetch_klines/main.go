package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"marketseq/config"
	"marketseq/internal/adapters/binanceclient"
	"marketseq/internal/adapters/logger"
	"marketseq/internal/utils"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Initialize Exchange Client (Binance Adapter)
	client, err := binanceclient.New(binanceclient.Config{
		APIKey:     cfg.APIKey,
		SecretKey:  cfg.SecretKey,
		UseTestnet: cfg.IsTestnet,
		Logger:     appLogger,
	})
	if err != nil {
		appLogger.Error(context.Background(), err, "FATAL: Failed to initialize Binance client")
		log.Fatalf("FATAL: Failed to initialize Binance client: %v", err)
	}
	appLogger.Info(context.Background(), "Binance client initialized")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("FATAL: Failed to create data directory %s: %v", cfg.DataDir, err)
	}

	end := time.Now()
	start := end.AddDate(0, 0, -cfg.FetchDays)

	for _, symbol := range cfg.FetchSymbols {
		fmt.Printf("Fetching %s bars for %s from %s to %s...\n",
			cfg.FetchInterval, symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))
		bars, err := client.GetBarsRange(context.Background(), symbol, cfg.FetchInterval, start, end)
		if err != nil {
			appLogger.Error(context.Background(), err, "Error fetching bars", map[string]interface{}{"symbol": symbol})
			log.Fatalf("Error fetching bars for %s: %v", symbol, err)
		}
		appLogger.Info(context.Background(), "Fetched bars", map[string]interface{}{"symbol": symbol, "count": len(bars)})

		filename := filepath.Join(cfg.DataDir, fmt.Sprintf("%s.csv", strings.ToLower(symbol)))
		if err := utils.WriteBarsToCSV(bars, filename); err != nil {
			appLogger.Error(context.Background(), err, "Error writing CSV", map[string]interface{}{"symbol": symbol})
			log.Fatalf("Error writing CSV for %s: %v", symbol, err)
		}
		appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename})
	}
}
