package utils

import (
	"path/filepath"
	"testing"
	"time"

	"marketseq/internal/dataset"
	"marketseq/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBarsToCSV(t *testing.T) {
	bars := []*domain.Bar{
		{
			Symbol: "BTCUSDT",
			Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Open:   62000.5, High: 63100, Low: 61500, Close: 62800.25,
			Volume: 12345.5,
		},
		{
			Symbol: "BTCUSDT",
			Date:   time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
			Open:   62800.25, High: 64000, Low: 62500, Close: 63900,
			Volume: 9876.25,
		},
	}

	path := filepath.Join(t.TempDir(), "btcusdt.csv")
	require.NoError(t, WriteBarsToCSV(bars, path))

	// The written file round-trips through the dataset loader.
	series, err := dataset.LoadSeriesCSV(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "btcusdt", series.Symbol)
	require.Equal(t, 2, series.Len())
	assert.Equal(t, 6, series.FeatureCount())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), series.Dates[0])
	assert.Equal(t, []float64{62000.5, 63100, 61500, 62800.25, 12345.5, 0}, series.Values[0])
	assert.Equal(t, 63900.0, series.Values[1][3])
}

func TestWriteBarsToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, WriteBarsToCSV(nil, path))

	// Header-only files are rejected downstream, not here.
	_, err := dataset.LoadSeriesCSV(path, nil)
	assert.Error(t, err)
}
