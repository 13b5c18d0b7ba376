package nn

import (
	"fmt"
	"math"
	"math/rand"

	"marketseq/internal/ports"
)

// LSTM is a single-layer long short-term-memory network with a linear
// readout head. It consumes an input window of shape (inputLen, InputSize)
// and predicts a target window of shape (OutputLen, OutputSize) from the
// final hidden state. All arithmetic is plain float64 slices.
type LSTM struct {
	InputSize  int
	HiddenSize int
	OutputLen  int
	OutputSize int

	// Gate weights over the concatenated [x_t; h_{t-1}] vector, one row per
	// hidden unit: input, forget, output, and candidate gates.
	Wi, Wf, Wo, Wg [][]float64
	Bi, Bf, Bo, Bg []float64

	// Readout from the final hidden state to the flattened target window.
	Wy [][]float64
	By []float64
}

// NewLSTM creates an LSTM with small seeded random weights.
func NewLSTM(inputSize, hiddenSize, outputLen, outputSize int, seed int64) (*LSTM, error) {
	if inputSize <= 0 || hiddenSize <= 0 || outputLen <= 0 || outputSize <= 0 {
		return nil, fmt.Errorf("all LSTM dimensions must be positive: %w", ports.ErrConfigurationError)
	}
	rng := rand.New(rand.NewSource(seed))
	concat := inputSize + hiddenSize
	readout := outputLen * outputSize
	return &LSTM{
		InputSize:  inputSize,
		HiddenSize: hiddenSize,
		OutputLen:  outputLen,
		OutputSize: outputSize,
		Wi:         randMatrix(rng, hiddenSize, concat),
		Wf:         randMatrix(rng, hiddenSize, concat),
		Wo:         randMatrix(rng, hiddenSize, concat),
		Wg:         randMatrix(rng, hiddenSize, concat),
		Bi:         randVector(rng, hiddenSize),
		Bf:         randVector(rng, hiddenSize),
		Bo:         randVector(rng, hiddenSize),
		Bg:         randVector(rng, hiddenSize),
		Wy:         randMatrix(rng, readout, hiddenSize),
		By:         randVector(rng, readout),
	}, nil
}

// forwardCache keeps per-timestep activations needed for backpropagation
// through time.
type forwardCache struct {
	zs    [][]float64 // concatenated [x_t; h_{t-1}] per step
	is    [][]float64 // input gate activations
	fs    [][]float64 // forget gate activations
	os    [][]float64 // output gate activations
	gs    [][]float64 // candidate activations
	cs    [][]float64 // cell states, cs[0] is the initial zero state
	tanhC [][]float64 // tanh of each cell state
	hLast []float64   // hidden state after the final step
	y     []float64   // flattened readout
}

// Predict runs a forward pass and reshapes the readout into the target
// window shape.
func (m *LSTM) Predict(input [][]float64) ([][]float64, error) {
	cache, err := m.forward(input)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, m.OutputLen)
	for t := 0; t < m.OutputLen; t++ {
		out[t] = cache.y[t*m.OutputSize : (t+1)*m.OutputSize]
	}
	return out, nil
}

func (m *LSTM) forward(input [][]float64) (*forwardCache, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("empty input window: %w", ports.ErrShapeMismatch)
	}
	steps := len(input)
	cache := &forwardCache{
		zs:    make([][]float64, steps),
		is:    make([][]float64, steps),
		fs:    make([][]float64, steps),
		os:    make([][]float64, steps),
		gs:    make([][]float64, steps),
		cs:    make([][]float64, steps+1),
		tanhC: make([][]float64, steps),
	}
	cache.cs[0] = make([]float64, m.HiddenSize)

	h := make([]float64, m.HiddenSize)
	for t, x := range input {
		if len(x) != m.InputSize {
			return nil, fmt.Errorf("input row has %d features, model expects %d: %w",
				len(x), m.InputSize, ports.ErrShapeMismatch)
		}
		z := make([]float64, m.InputSize+m.HiddenSize)
		copy(z, x)
		copy(z[m.InputSize:], h)

		iGate := gate(m.Wi, m.Bi, z, sigmoid)
		fGate := gate(m.Wf, m.Bf, z, sigmoid)
		oGate := gate(m.Wo, m.Bo, z, sigmoid)
		gGate := gate(m.Wg, m.Bg, z, math.Tanh)

		c := make([]float64, m.HiddenSize)
		tc := make([]float64, m.HiddenSize)
		h = make([]float64, m.HiddenSize)
		for u := 0; u < m.HiddenSize; u++ {
			c[u] = fGate[u]*cache.cs[t][u] + iGate[u]*gGate[u]
			tc[u] = math.Tanh(c[u])
			h[u] = oGate[u] * tc[u]
		}

		cache.zs[t] = z
		cache.is[t] = iGate
		cache.fs[t] = fGate
		cache.os[t] = oGate
		cache.gs[t] = gGate
		cache.cs[t+1] = c
		cache.tanhC[t] = tc
	}
	cache.hLast = h

	y := make([]float64, len(m.By))
	for r := range y {
		y[r] = m.By[r]
		for u, hv := range h {
			y[r] += m.Wy[r][u] * hv
		}
	}
	cache.y = y
	return cache, nil
}

// backward accumulates parameter gradients for one example given the
// gradient of the loss with respect to the flattened readout.
func (m *LSTM) backward(cache *forwardCache, dy []float64, grads *Gradients) {
	// Readout head.
	dh := make([]float64, m.HiddenSize)
	for r, d := range dy {
		grads.By[r] += d
		for u := 0; u < m.HiddenSize; u++ {
			grads.Wy[r][u] += d * cache.hLast[u]
			dh[u] += m.Wy[r][u] * d
		}
	}

	// Backpropagation through time.
	dc := make([]float64, m.HiddenSize)
	steps := len(cache.zs)
	for t := steps - 1; t >= 0; t-- {
		iGate, fGate, oGate, gGate := cache.is[t], cache.fs[t], cache.os[t], cache.gs[t]
		dai := make([]float64, m.HiddenSize)
		daf := make([]float64, m.HiddenSize)
		dao := make([]float64, m.HiddenSize)
		dag := make([]float64, m.HiddenSize)
		for u := 0; u < m.HiddenSize; u++ {
			tc := cache.tanhC[t][u]
			do := dh[u] * tc
			dcu := dc[u] + dh[u]*oGate[u]*(1-tc*tc)

			di := dcu * gGate[u]
			df := dcu * cache.cs[t][u]
			dg := dcu * iGate[u]

			dai[u] = di * iGate[u] * (1 - iGate[u])
			daf[u] = df * fGate[u] * (1 - fGate[u])
			dao[u] = do * oGate[u] * (1 - oGate[u])
			dag[u] = dg * (1 - gGate[u]*gGate[u])

			dc[u] = dcu * fGate[u] // flows to c_{t-1}
		}

		z := cache.zs[t]
		dz := make([]float64, len(z))
		for u := 0; u < m.HiddenSize; u++ {
			grads.Bi[u] += dai[u]
			grads.Bf[u] += daf[u]
			grads.Bo[u] += dao[u]
			grads.Bg[u] += dag[u]
			for k, zv := range z {
				grads.Wi[u][k] += dai[u] * zv
				grads.Wf[u][k] += daf[u] * zv
				grads.Wo[u][k] += dao[u] * zv
				grads.Wg[u][k] += dag[u] * zv
				dz[k] += m.Wi[u][k]*dai[u] + m.Wf[u][k]*daf[u] + m.Wo[u][k]*dao[u] + m.Wg[u][k]*dag[u]
			}
		}
		dh = dz[m.InputSize:] // flows to h_{t-1}
	}
}

// Gradients mirrors the parameter shapes of an LSTM.
type Gradients struct {
	Wi, Wf, Wo, Wg [][]float64
	Bi, Bf, Bo, Bg []float64
	Wy             [][]float64
	By             []float64
}

// NewGradients allocates a zeroed gradient accumulator for the model.
func (m *LSTM) NewGradients() *Gradients {
	concat := m.InputSize + m.HiddenSize
	readout := m.OutputLen * m.OutputSize
	return &Gradients{
		Wi: zeroMatrix(m.HiddenSize, concat),
		Wf: zeroMatrix(m.HiddenSize, concat),
		Wo: zeroMatrix(m.HiddenSize, concat),
		Wg: zeroMatrix(m.HiddenSize, concat),
		Bi: make([]float64, m.HiddenSize),
		Bf: make([]float64, m.HiddenSize),
		Bo: make([]float64, m.HiddenSize),
		Bg: make([]float64, m.HiddenSize),
		Wy: zeroMatrix(readout, m.HiddenSize),
		By: make([]float64, readout),
	}
}

// Zero resets every accumulated gradient.
func (g *Gradients) Zero() {
	for _, mat := range [][][]float64{g.Wi, g.Wf, g.Wo, g.Wg, g.Wy} {
		for _, row := range mat {
			for k := range row {
				row[k] = 0
			}
		}
	}
	for _, vec := range [][]float64{g.Bi, g.Bf, g.Bo, g.Bg, g.By} {
		for k := range vec {
			vec[k] = 0
		}
	}
}

func gate(w [][]float64, b []float64, z []float64, activate func(float64) float64) []float64 {
	out := make([]float64, len(b))
	for u := range b {
		sum := b[u]
		row := w[u]
		for k, zv := range z {
			sum += row[k] * zv
		}
		out[u] = activate(sum)
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func randMatrix(rng *rand.Rand, rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
		for j := range out[i] {
			out[i][j] = (rng.Float64() - 0.5) * 0.1
		}
	}
	return out
}

func randVector(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = (rng.Float64() - 0.5) * 0.1
	}
	return out
}

func zeroMatrix(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
