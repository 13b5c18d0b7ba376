package nn

import (
	"fmt"
	"math"

	"marketseq/internal/ports"
)

// LossKind selects the training criterion.
type LossKind string

const (
	// LossMSE is mean squared error with mean reduction.
	LossMSE LossKind = "mse"
	// LossHuber is the smooth-L1 loss with delta 1.0, mean reduction.
	LossHuber LossKind = "huber"
)

// ParseLossKind validates a loss name from configuration.
func ParseLossKind(s string) (LossKind, error) {
	switch LossKind(s) {
	case LossMSE:
		return LossMSE, nil
	case LossHuber:
		return LossHuber, nil
	default:
		return "", fmt.Errorf("unsupported loss %q (want %q or %q): %w", s, LossMSE, LossHuber, ports.ErrConfigurationError)
	}
}

// lossAndGrad computes the scalar loss and its gradient with respect to the
// flattened prediction.
func lossAndGrad(kind LossKind, pred, target []float64) (float64, []float64) {
	n := float64(len(pred))
	grad := make([]float64, len(pred))
	loss := 0.0
	switch kind {
	case LossHuber:
		for k, p := range pred {
			e := p - target[k]
			if math.Abs(e) <= 1 {
				loss += 0.5 * e * e
				grad[k] = e / n
			} else {
				loss += math.Abs(e) - 0.5
				if e > 0 {
					grad[k] = 1 / n
				} else {
					grad[k] = -1 / n
				}
			}
		}
	default: // MSE
		for k, p := range pred {
			e := p - target[k]
			loss += e * e
			grad[k] = 2 * e / n
		}
	}
	return loss / n, grad
}

// flattenWindow lays a (rows, cols) window out row-major, matching the
// readout ordering of the LSTM.
func flattenWindow(window [][]float64) []float64 {
	if len(window) == 0 {
		return nil
	}
	out := make([]float64, 0, len(window)*len(window[0]))
	for _, row := range window {
		out = append(out, row...)
	}
	return out
}
