package dataset

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"time"

	"marketseq/internal/domain"
	"marketseq/internal/ports"
)

// Boundaries holds the six calendar boundaries of a three-way date split.
// Each partition is the half-open interval [Start, End).
type Boundaries struct {
	TrainStart time.Time
	TrainEnd   time.Time
	ValStart   time.Time
	ValEnd     time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// ParseBoundaries builds Boundaries from YYYY-MM-DD strings and validates
// their ordering.
func ParseBoundaries(trainStart, trainEnd, valStart, valEnd, testStart, testEnd string) (Boundaries, error) {
	var b Boundaries
	var err error
	parse := func(name, value string) time.Time {
		if err != nil {
			return time.Time{}
		}
		var t time.Time
		t, err = time.Parse(dateLayout, value)
		if err != nil {
			err = fmt.Errorf("parse %s date %q: %w: %w", name, value, ports.ErrBadDateBounds, err)
		}
		return t
	}
	b.TrainStart = parse("train start", trainStart)
	b.TrainEnd = parse("train end", trainEnd)
	b.ValStart = parse("val start", valStart)
	b.ValEnd = parse("val end", valEnd)
	b.TestStart = parse("test start", testStart)
	b.TestEnd = parse("test end", testEnd)
	if err != nil {
		return Boundaries{}, err
	}
	if err := b.Validate(); err != nil {
		return Boundaries{}, err
	}
	return b, nil
}

// Validate checks that the boundaries are non-zero and in calendar order.
func (b Boundaries) Validate() error {
	ordered := []struct {
		name string
		t    time.Time
	}{
		{"train start", b.TrainStart},
		{"train end", b.TrainEnd},
		{"val start", b.ValStart},
		{"val end", b.ValEnd},
		{"test start", b.TestStart},
		{"test end", b.TestEnd},
	}
	for i, bound := range ordered {
		if bound.t.IsZero() {
			return fmt.Errorf("%s date is unset: %w", bound.name, ports.ErrBadDateBounds)
		}
		if i > 0 && bound.t.Before(ordered[i-1].t) {
			return fmt.Errorf("%s date precedes %s date: %w", bound.name, ordered[i-1].name, ports.ErrBadDateBounds)
		}
	}
	return nil
}

// firstIndexAtOrAfter returns the first index in dates, starting the scan at
// from, whose date is >= bound. Returns len(dates) when no such row exists.
// A linear scan is deliberate: series are modest and already sorted, and
// successive boundary searches resume where the previous one stopped.
func firstIndexAtOrAfter(dates []time.Time, from int, bound time.Time) int {
	for i := from; i < len(dates); i++ {
		if !dates[i].Before(bound) {
			return i
		}
	}
	return len(dates)
}

// PartitionByDate slices one series into train/val/test segments by calendar
// boundary: train covers [TrainStart, TrainEnd), val covers
// [ValStart, ValEnd), and test covers everything from ValEnd onward. The
// returned series share backing arrays with the input.
func PartitionByDate(series *domain.Series, bounds Boundaries) (train, val, test *domain.Series) {
	trainStart := firstIndexAtOrAfter(series.Dates, 0, bounds.TrainStart)
	trainEnd := firstIndexAtOrAfter(series.Dates, trainStart, bounds.TrainEnd)
	valStart := firstIndexAtOrAfter(series.Dates, trainEnd, bounds.ValStart)
	valEnd := firstIndexAtOrAfter(series.Dates, valStart, bounds.ValEnd)

	train = series.Slice(trainStart, trainEnd)
	val = series.Slice(valStart, valEnd)
	test = series.Slice(valEnd, series.Len())
	return train, val, test
}

// PairsInRange windows only the rows of a series whose dates fall within
// [start, end).
func PairsInRange(series *domain.Series, start, end time.Time, inputLen, outputLen int) domain.Dataset {
	startIdx := firstIndexAtOrAfter(series.Dates, 0, start)
	endIdx := firstIndexAtOrAfter(series.Dates, startIdx, end)
	return MakePairs(series.Values[startIdx:endIdx], inputLen, outputLen)
}

// BuildByDate loads every file in a data directory, partitions each series
// by the date boundaries, windows each segment, and concatenates the results
// into three datasets. Files whose date range misses a partition simply
// contribute nothing to it; windows never span a file boundary.
func BuildByDate(dir string, bounds Boundaries, inputLen, outputLen int, proc ProcessFunc) (*domain.SplitSets, error) {
	files, err := ListSeriesFiles(dir)
	if err != nil {
		return nil, err
	}

	sets := &domain.SplitSets{}
	for _, file := range files {
		series, err := LoadSeriesCSV(filepath.Join(dir, file), proc)
		if err != nil {
			return nil, err
		}
		train, val, test := PartitionByDate(series, bounds)
		sets.Train = append(sets.Train, MakePairs(train.Values, inputLen, outputLen)...)
		sets.Val = append(sets.Val, MakePairs(val.Values, inputLen, outputLen)...)
		sets.Test = append(sets.Test, MakePairs(test.Values, inputLen, outputLen)...)
	}
	return sets, nil
}

// SymbolSplit partitions a list of data file names into train/val/test groups.
type SymbolSplit struct {
	Train []string
	Val   []string
	Test  []string
}

// SplitSymbols shuffles the file list with a seeded generator and partitions
// it by tenths: the first 2/10 become the test group, the next 2/10 the
// validation group, and the remaining 6/10 the training group. The input
// slice is not modified. The same seed always yields the same grouping.
func SplitSymbols(files []string, seed int64) SymbolSplit {
	shuffled := make([]string, len(files))
	copy(shuffled, files)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	tenth := len(shuffled) / 10
	testEnd := 2 * tenth
	valEnd := 4 * tenth
	return SymbolSplit{
		Test:  shuffled[:testEnd],
		Val:   shuffled[testEnd:valEnd],
		Train: shuffled[valEnd:],
	}
}

// BuildBySymbolAndDate constructs the three datasets from a symbol-level
// split: each group's files are windowed only within that group's own date
// range.
func BuildBySymbolAndDate(dir string, split SymbolSplit, bounds Boundaries, inputLen, outputLen int, proc ProcessFunc) (*domain.SplitSets, error) {
	collect := func(files []string, start, end time.Time) (domain.Dataset, error) {
		var pairs domain.Dataset
		for _, file := range files {
			series, err := LoadSeriesCSV(filepath.Join(dir, file), proc)
			if err != nil {
				return nil, err
			}
			pairs = append(pairs, PairsInRange(series, start, end, inputLen, outputLen)...)
		}
		return pairs, nil
	}

	sets := &domain.SplitSets{}
	var err error
	if sets.Train, err = collect(split.Train, bounds.TrainStart, bounds.TrainEnd); err != nil {
		return nil, err
	}
	if sets.Val, err = collect(split.Val, bounds.ValStart, bounds.ValEnd); err != nil {
		return nil, err
	}
	if sets.Test, err = collect(split.Test, bounds.TestStart, bounds.TestEnd); err != nil {
		return nil, err
	}
	return sets, nil
}
