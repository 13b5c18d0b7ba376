package utils

import (
	"encoding/csv"
	"os"
	"strconv"

	"marketseq/internal/domain"
)

// WriteBarsToCSV writes daily bars in the per-symbol layout the dataset
// loader expects: a header row, then YYYY-MM-DD dates followed by numeric
// feature columns.
func WriteBarsToCSV(bars []*domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"Date", "Open", "High", "Low", "Close", "Volume", "OpenInt"})

	for _, b := range bars {
		writer.Write([]string{
			b.Date.Format("2006-01-02"),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
			strconv.FormatFloat(b.OpenInterest, 'f', -1, 64),
		})
	}
	return writer.Error()
}
