package nn

import (
	"math"
	"math/rand"
	"testing"

	"marketseq/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randWindow(rng *rand.Rand, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = rng.NormFloat64()
		}
	}
	return out
}

func TestNewLSTM(t *testing.T) {
	t.Run("valid dimensions", func(t *testing.T) {
		m, err := NewLSTM(4, 10, 5, 4, 1)
		require.NoError(t, err)
		assert.Len(t, m.Wi, 10)
		assert.Len(t, m.Wi[0], 14) // input + hidden
		assert.Len(t, m.Wy, 20)    // outputLen * outputSize
		assert.Len(t, m.Wy[0], 10)
		assert.Len(t, m.By, 20)
	})

	t.Run("rejects non-positive dimensions", func(t *testing.T) {
		for _, dims := range [][4]int{{0, 10, 5, 4}, {4, 0, 5, 4}, {4, 10, 0, 4}, {4, 10, 5, -1}} {
			_, err := NewLSTM(dims[0], dims[1], dims[2], dims[3], 1)
			assert.ErrorIs(t, err, ports.ErrConfigurationError)
		}
	})

	t.Run("same seed same weights", func(t *testing.T) {
		a, err := NewLSTM(3, 5, 2, 3, 99)
		require.NoError(t, err)
		b, err := NewLSTM(3, 5, 2, 3, 99)
		require.NoError(t, err)
		assert.Equal(t, a.Wi, b.Wi)
		assert.Equal(t, a.Wy, b.Wy)
		assert.Equal(t, a.Bg, b.Bg)
	})
}

func TestLSTMPredict(t *testing.T) {
	m, err := NewLSTM(2, 4, 3, 2, 1)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(2))

	t.Run("output shape", func(t *testing.T) {
		out, err := m.Predict(randWindow(rng, 6, 2))
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, row := range out {
			assert.Len(t, row, 2)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		input := randWindow(rng, 6, 2)
		a, err := m.Predict(input)
		require.NoError(t, err)
		b, err := m.Predict(input)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})

	t.Run("empty window", func(t *testing.T) {
		_, err := m.Predict(nil)
		assert.ErrorIs(t, err, ports.ErrShapeMismatch)
	})

	t.Run("wrong feature width", func(t *testing.T) {
		_, err := m.Predict(randWindow(rng, 6, 3))
		assert.ErrorIs(t, err, ports.ErrShapeMismatch)
	})
}

// exampleLoss runs a forward pass and evaluates the training criterion, the
// scalar the analytic gradients differentiate.
func exampleLoss(t *testing.T, m *LSTM, input [][]float64, target []float64) float64 {
	t.Helper()
	cache, err := m.forward(input)
	require.NoError(t, err)
	loss, _ := lossAndGrad(LossMSE, cache.y, target)
	return loss
}

// TestLSTMBackwardMatchesFiniteDifferences checks every parameter gradient
// of one example against a central-difference estimate.
func TestLSTMBackwardMatchesFiniteDifferences(t *testing.T) {
	m, err := NewLSTM(2, 3, 2, 2, 5)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(6))
	input := randWindow(rng, 4, 2)
	target := flattenWindow(randWindow(rng, 2, 2))

	cache, err := m.forward(input)
	require.NoError(t, err)
	_, dy := lossAndGrad(LossMSE, cache.y, target)
	grads := m.NewGradients()
	m.backward(cache, dy, grads)

	const eps = 1e-6
	checkScalar := func(name string, param *float64, analytic float64) {
		orig := *param
		*param = orig + eps
		plus := exampleLoss(t, m, input, target)
		*param = orig - eps
		minus := exampleLoss(t, m, input, target)
		*param = orig

		numeric := (plus - minus) / (2 * eps)
		if math.Abs(numeric-analytic) > 1e-6 {
			t.Errorf("%s: analytic gradient %v, numeric %v", name, analytic, numeric)
		}
	}
	checkMatrix := func(name string, param, analytic [][]float64) {
		for i := range param {
			for j := range param[i] {
				checkScalar(name, &param[i][j], analytic[i][j])
			}
		}
	}
	checkVector := func(name string, param, analytic []float64) {
		for i := range param {
			checkScalar(name, &param[i], analytic[i])
		}
	}

	checkMatrix("Wi", m.Wi, grads.Wi)
	checkMatrix("Wf", m.Wf, grads.Wf)
	checkMatrix("Wo", m.Wo, grads.Wo)
	checkMatrix("Wg", m.Wg, grads.Wg)
	checkMatrix("Wy", m.Wy, grads.Wy)
	checkVector("Bi", m.Bi, grads.Bi)
	checkVector("Bf", m.Bf, grads.Bf)
	checkVector("Bo", m.Bo, grads.Bo)
	checkVector("Bg", m.Bg, grads.Bg)
	checkVector("By", m.By, grads.By)
}

func TestGradientsZero(t *testing.T) {
	m, err := NewLSTM(2, 3, 2, 2, 1)
	require.NoError(t, err)
	grads := m.NewGradients()
	grads.Wi[0][0] = 1.5
	grads.By[1] = -2

	grads.Zero()
	assert.Equal(t, 0.0, grads.Wi[0][0])
	assert.Equal(t, 0.0, grads.By[1])
}
