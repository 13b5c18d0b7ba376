package main

import (
	"fmt"
	"log"

	"marketseq/config"
	"marketseq/internal/dataset"
)

// split_report prints how many sequence pairs each partition receives under
// both split modes, without training anything. Useful for sizing date
// ranges before a run.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	bounds, err := dataset.ParseBoundaries(
		cfg.TrainStartDate, cfg.TrainEndDate,
		cfg.ValStartDate, cfg.ValEndDate,
		cfg.TestStartDate, cfg.TestEndDate,
	)
	if err != nil {
		log.Fatalf("FATAL: Invalid date boundaries: %v", err)
	}

	var proc dataset.ProcessFunc
	if cfg.OHLCOnly {
		proc = dataset.DropTrailingColumns(2)
	}

	files, err := dataset.ListSeriesFiles(cfg.DataDir)
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}
	fmt.Printf("Data directory: %s (%d files)\n\n", cfg.DataDir, len(files))

	byDate, err := dataset.BuildByDate(cfg.DataDir, bounds, cfg.InputLength, cfg.OutputLength, proc)
	if err != nil {
		log.Fatalf("FATAL: date split failed: %v", err)
	}
	fmt.Println("Date-range split:")
	fmt.Printf("  train: %d pairs\n", len(byDate.Train))
	fmt.Printf("  val:   %d pairs\n", len(byDate.Val))
	fmt.Printf("  test:  %d pairs\n\n", len(byDate.Test))

	split := dataset.SplitSymbols(files, cfg.SymbolSplitSeed)
	bySymbol, err := dataset.BuildBySymbolAndDate(cfg.DataDir, split, bounds, cfg.InputLength, cfg.OutputLength, proc)
	if err != nil {
		log.Fatalf("FATAL: symbol split failed: %v", err)
	}
	fmt.Printf("Symbol split (seed %d): %d/%d/%d files train/val/test\n",
		cfg.SymbolSplitSeed, len(split.Train), len(split.Val), len(split.Test))
	fmt.Printf("  train: %d pairs\n", len(bySymbol.Train))
	fmt.Printf("  val:   %d pairs\n", len(bySymbol.Val))
	fmt.Printf("  test:  %d pairs\n", len(bySymbol.Test))
}
