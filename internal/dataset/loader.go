package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"marketseq/internal/domain"
	"marketseq/internal/ports"
)

// dateLayout is the calendar format of the first CSV column.
const dateLayout = "2006-01-02"

// ProcessFunc transforms the numeric feature matrix of a loaded series
// before windowing. It receives rows of shape (N, M) and returns rows of
// shape (N, Q).
type ProcessFunc func(values [][]float64) [][]float64

// DropTrailingColumns returns a ProcessFunc that removes the last n columns
// from every row. DropTrailingColumns(2) reduces the reference
// Date,Open,High,Low,Close,Volume,OpenInt layout to OHLC only.
func DropTrailingColumns(n int) ProcessFunc {
	return func(values [][]float64) [][]float64 {
		out := make([][]float64, len(values))
		for i, row := range values {
			keep := len(row) - n
			if keep < 0 {
				keep = 0
			}
			out[i] = row[:keep]
		}
		return out
	}
}

// LoadSeriesCSV reads one per-symbol CSV file into a Series.
//
// The file must have a header row; the first column of every data row is a
// YYYY-MM-DD date stamp and the remaining columns are numeric features.
// Dates are parsed once at load time. If proc is non-nil it is applied to
// the feature matrix before the series is returned.
func LoadSeriesCSV(path string, proc ProcessFunc) (*domain.Series, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file %q: %w: %w", path, ports.ErrNotFound, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read series file %q: %w: %w", path, ports.ErrMalformedCSV, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("series file %q has no data rows: %w", path, ports.ErrEmptySeries)
	}

	header := records[0]
	if len(header) < 2 {
		return nil, fmt.Errorf("series file %q needs a date column and at least one feature column: %w", path, ports.ErrMalformedCSV)
	}
	width := len(header) - 1

	rows := records[1:]
	dates := make([]time.Time, 0, len(rows))
	values := make([][]float64, 0, len(rows))
	for i, record := range rows {
		if len(record) != width+1 {
			return nil, fmt.Errorf("series file %q row %d has %d columns, want %d: %w",
				path, i+2, len(record), width+1, ports.ErrRaggedRow)
		}
		date, err := time.Parse(dateLayout, record[0])
		if err != nil {
			return nil, fmt.Errorf("series file %q row %d: %w: %w", path, i+2, ports.ErrBadDateFormat, err)
		}
		row := make([]float64, width)
		for j, cell := range record[1:] {
			row[j], err = strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("series file %q row %d column %d: %w: %w",
					path, i+2, j+2, ports.ErrMalformedCSV, err)
			}
		}
		dates = append(dates, date)
		values = append(values, row)
	}

	if proc != nil {
		values = proc(values)
	}

	return &domain.Series{
		Symbol: symbolFromFilename(path),
		Dates:  dates,
		Values: values,
	}, nil
}

// ListSeriesFiles returns the names (not paths) of the regular files in a
// data directory, sorted lexically.
func ListSeriesFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data directory %q: %w: %w", dir, ports.ErrNotFound, err)
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	return files, nil
}

// symbolFromFilename derives the symbol from a data file name by stripping
// the directory and the final extension ("data/aadr.us.txt" -> "aadr.us").
func symbolFromFilename(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
