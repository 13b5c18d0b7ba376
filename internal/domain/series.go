package domain

import "time"

// Bar represents a single daily price bar for one symbol.
type Bar struct {
	Symbol       string    // Symbol the bar belongs to (e.g., "SPY")
	Date         time.Time // Calendar date of the bar
	Open         float64   // Opening price
	High         float64   // Highest price
	Low          float64   // Lowest price
	Close        float64   // Closing price
	Volume       float64   // Traded volume
	OpenInterest float64   // Open interest (zero for instruments without one)
}

// Series is the in-memory form of one symbol's time series: parallel arrays
// of calendar dates and numeric feature rows, sorted ascending by date.
// Invariant: len(Dates) == len(Values), and every row in Values has the
// same width.
type Series struct {
	Symbol string
	Dates  []time.Time
	Values [][]float64
}

// Len returns the number of rows in the series.
func (s *Series) Len() int {
	return len(s.Dates)
}

// FeatureCount returns the width of the feature rows, or 0 for an empty series.
func (s *Series) FeatureCount() int {
	if len(s.Values) == 0 {
		return 0
	}
	return len(s.Values[0])
}

// Slice returns a view of the series restricted to rows [start, end).
// The returned series shares backing arrays with the receiver.
func (s *Series) Slice(start, end int) *Series {
	return &Series{
		Symbol: s.Symbol,
		Dates:  s.Dates[start:end],
		Values: s.Values[start:end],
	}
}
