package nn

import "math"

// Adam implements the Adam optimizer over all LSTM parameters, with
// first- and second-moment estimates mirroring the parameter shapes.
type Adam struct {
	LearningRate float64
	Beta1        float64
	Beta2        float64
	Epsilon      float64

	step int
	m    *Gradients
	v    *Gradients
}

// NewAdam creates an optimizer for the given model with the standard
// Adam defaults (beta1 0.9, beta2 0.999, epsilon 1e-8).
func NewAdam(model *LSTM, learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
		m:            model.NewGradients(),
		v:            model.NewGradients(),
	}
}

// Step applies one Adam update using gradients accumulated over scale
// examples (the mini-batch size). Gradients are averaged by scale before
// the moment updates.
func (a *Adam) Step(model *LSTM, grads *Gradients, scale int) {
	a.step++
	if scale < 1 {
		scale = 1
	}
	inv := 1 / float64(scale)
	corr1 := 1 - math.Pow(a.Beta1, float64(a.step))
	corr2 := 1 - math.Pow(a.Beta2, float64(a.step))

	updateMatrix := func(param, grad, m, v [][]float64) {
		for i := range param {
			for j := range param[i] {
				g := grad[i][j] * inv
				m[i][j] = a.Beta1*m[i][j] + (1-a.Beta1)*g
				v[i][j] = a.Beta2*v[i][j] + (1-a.Beta2)*g*g
				param[i][j] -= a.LearningRate * (m[i][j] / corr1) / (math.Sqrt(v[i][j]/corr2) + a.Epsilon)
			}
		}
	}
	updateVector := func(param, grad, m, v []float64) {
		for i := range param {
			g := grad[i] * inv
			m[i] = a.Beta1*m[i] + (1-a.Beta1)*g
			v[i] = a.Beta2*v[i] + (1-a.Beta2)*g*g
			param[i] -= a.LearningRate * (m[i] / corr1) / (math.Sqrt(v[i]/corr2) + a.Epsilon)
		}
	}

	updateMatrix(model.Wi, grads.Wi, a.m.Wi, a.v.Wi)
	updateMatrix(model.Wf, grads.Wf, a.m.Wf, a.v.Wf)
	updateMatrix(model.Wo, grads.Wo, a.m.Wo, a.v.Wo)
	updateMatrix(model.Wg, grads.Wg, a.m.Wg, a.v.Wg)
	updateMatrix(model.Wy, grads.Wy, a.m.Wy, a.v.Wy)
	updateVector(model.Bi, grads.Bi, a.m.Bi, a.v.Bi)
	updateVector(model.Bf, grads.Bf, a.m.Bf, a.v.Bf)
	updateVector(model.Bo, grads.Bo, a.m.Bo, a.v.Bo)
	updateVector(model.Bg, grads.Bg, a.m.Bg, a.v.Bg)
	updateVector(model.By, grads.By, a.m.By, a.v.By)
}
