package dataset

import (
	"math"
	"math/rand"

	"marketseq/internal/domain"
)

// AugmentFunc derives a new sequence pair from an existing one.
type AugmentFunc func(rng *rand.Rand, pair domain.SequencePair) domain.SequencePair

// GaussianNoise replaces both windows of a pair with standard-normal noise
// of the same shape. The resulting pair carries no price information; it
// acts as a regularizing negative example.
func GaussianNoise(rng *rand.Rand, pair domain.SequencePair) domain.SequencePair {
	return domain.SequencePair{
		Input:  randnLike(rng, pair.Input),
		Target: randnLike(rng, pair.Target),
	}
}

// Jitter returns an AugmentFunc that copies a pair and perturbs every value
// with zero-mean Gaussian noise of the given standard deviation.
func Jitter(stddev float64) AugmentFunc {
	return func(rng *rand.Rand, pair domain.SequencePair) domain.SequencePair {
		perturb := func(window [][]float64) [][]float64 {
			out := make([][]float64, len(window))
			for i, row := range window {
				out[i] = make([]float64, len(row))
				for j, v := range row {
					out[i][j] = v + rng.NormFloat64()*stddev
				}
			}
			return out
		}
		return domain.SequencePair{
			Input:  perturb(pair.Input),
			Target: perturb(pair.Target),
		}
	}
}

// Augment grows a dataset by floor(proportion*N) new pairs, each derived
// from a uniformly chosen existing pair via fn. Source pairs are drawn from
// the original N examples only, so augmented pairs never feed back into the
// draw. The same seed always yields the same augmented dataset.
func Augment(data domain.Dataset, fn AugmentFunc, proportion float64, seed int64) domain.Dataset {
	n := len(data)
	if n == 0 || proportion <= 0 || fn == nil {
		return data
	}
	added := int(math.Floor(proportion * float64(n)))
	rng := rand.New(rand.NewSource(seed))
	for i := 0; i < added; i++ {
		data = append(data, fn(rng, data[rng.Intn(n)]))
	}
	return data
}

func randnLike(rng *rand.Rand, window [][]float64) [][]float64 {
	out := make([][]float64, len(window))
	for i, row := range window {
		out[i] = make([]float64, len(row))
		for j := range row {
			out[i][j] = rng.NormFloat64()
		}
	}
	return out
}
