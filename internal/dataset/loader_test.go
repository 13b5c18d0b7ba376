package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"marketseq/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeDataFile creates one CSV fixture in dir and returns its path.
func writeDataFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleCSV = `Date,Open,High,Low,Close,Volume,OpenInt
2020-01-02,10,11,9,10.5,1000,0
2020-01-03,10.5,12,10,11.5,1200,0
2020-01-06,11.5,12.5,11,12,900,0
`

func TestLoadSeriesCSV(t *testing.T) {
	dir := t.TempDir()

	t.Run("parses dates and features", func(t *testing.T) {
		path := writeDataFile(t, dir, "spy.us.txt", sampleCSV)

		series, err := LoadSeriesCSV(path, nil)
		require.NoError(t, err)

		assert.Equal(t, "spy.us", series.Symbol)
		assert.Equal(t, 3, series.Len())
		assert.Equal(t, 6, series.FeatureCount())
		assert.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), series.Dates[0])
		assert.Equal(t, []float64{10, 11, 9, 10.5, 1000, 0}, series.Values[0])
		assert.Equal(t, []float64{11.5, 12.5, 11, 12, 900, 0}, series.Values[2])
	})

	t.Run("applies process func", func(t *testing.T) {
		path := writeDataFile(t, dir, "ohlc.csv", sampleCSV)

		series, err := LoadSeriesCSV(path, DropTrailingColumns(2))
		require.NoError(t, err)

		assert.Equal(t, 4, series.FeatureCount())
		assert.Equal(t, []float64{10, 11, 9, 10.5}, series.Values[0])
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSeriesCSV(filepath.Join(dir, "nope.csv"), nil)
		assert.ErrorIs(t, err, ports.ErrNotFound)
	})

	t.Run("header only", func(t *testing.T) {
		path := writeDataFile(t, dir, "empty.csv", "Date,Open,High,Low,Close,Volume,OpenInt\n")
		_, err := LoadSeriesCSV(path, nil)
		assert.ErrorIs(t, err, ports.ErrEmptySeries)
	})

	t.Run("bad date", func(t *testing.T) {
		path := writeDataFile(t, dir, "baddate.csv", "Date,Close\n02/01/2020,10\n")
		_, err := LoadSeriesCSV(path, nil)
		assert.ErrorIs(t, err, ports.ErrBadDateFormat)
	})

	t.Run("bad number", func(t *testing.T) {
		path := writeDataFile(t, dir, "badnum.csv", "Date,Close\n2020-01-02,ten\n")
		_, err := LoadSeriesCSV(path, nil)
		assert.ErrorIs(t, err, ports.ErrMalformedCSV)
	})
}

func TestDropTrailingColumns(t *testing.T) {
	values := [][]float64{
		{1, 2, 3, 4, 5},
		{6, 7, 8, 9, 10},
	}

	out := DropTrailingColumns(2)(values)
	require.Len(t, out, 2)
	assert.Equal(t, []float64{1, 2, 3}, out[0])
	assert.Equal(t, []float64{6, 7, 8}, out[1])

	// Dropping more columns than exist yields empty rows, not a panic.
	out = DropTrailingColumns(9)(values)
	assert.Empty(t, out[0])
}

func TestListSeriesFiles(t *testing.T) {
	dir := t.TempDir()
	writeDataFile(t, dir, "b.csv", sampleCSV)
	writeDataFile(t, dir, "a.csv", sampleCSV)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0755))

	files, err := ListSeriesFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "b.csv"}, files)

	_, err = ListSeriesFiles(filepath.Join(dir, "missing"))
	assert.True(t, errors.Is(err, ports.ErrNotFound))
}
