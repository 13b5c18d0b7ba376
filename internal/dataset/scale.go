package dataset

import (
	"fmt"
	"math"

	"marketseq/internal/domain"
	"marketseq/internal/ports"
)

// MinMaxScaler rescales every feature to [0, 1] using per-feature minima and
// maxima. Fit on the training partition only, then apply to all partitions,
// so validation and test values never leak into the fitted range.
type MinMaxScaler struct {
	Min []float64
	Max []float64
}

// FitMinMax computes per-feature minima and maxima over every row of every
// window in the given dataset.
func FitMinMax(data domain.Dataset) (*MinMaxScaler, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("fit scaler: %w", ports.ErrEmptyDataset)
	}
	width := len(data[0].Input[0])
	s := &MinMaxScaler{
		Min: make([]float64, width),
		Max: make([]float64, width),
	}
	for j := 0; j < width; j++ {
		s.Min[j] = math.Inf(1)
		s.Max[j] = math.Inf(-1)
	}
	observe := func(window [][]float64) {
		for _, row := range window {
			for j, v := range row {
				if v < s.Min[j] {
					s.Min[j] = v
				}
				if v > s.Max[j] {
					s.Max[j] = v
				}
			}
		}
	}
	for _, pair := range data {
		observe(pair.Input)
		observe(pair.Target)
	}
	return s, nil
}

// Transform returns a copy of the dataset with every value rescaled.
// Windows alias backing series rows and the same row appears in many
// windows, so scaling copies instead of mutating in place. Features with a
// constant value map to 0.
func (s *MinMaxScaler) Transform(data domain.Dataset) domain.Dataset {
	out := make(domain.Dataset, len(data))
	for i, pair := range data {
		out[i] = domain.SequencePair{
			Input:  s.transformWindow(pair.Input),
			Target: s.transformWindow(pair.Target),
		}
	}
	return out
}

func (s *MinMaxScaler) transformWindow(window [][]float64) [][]float64 {
	out := make([][]float64, len(window))
	for i, row := range window {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			span := s.Max[j] - s.Min[j]
			if span == 0 {
				out[i][j] = 0
				continue
			}
			out[i][j] = (v - s.Min[j]) / span
		}
	}
	return out
}

// Inverse maps a scaled window back to the original value range.
func (s *MinMaxScaler) Inverse(window [][]float64) [][]float64 {
	out := make([][]float64, len(window))
	for i, row := range window {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = v*(s.Max[j]-s.Min[j]) + s.Min[j]
		}
	}
	return out
}
