package dataset

import "marketseq/internal/domain"

// MakePairs turns a feature matrix into fixed-length supervised sequence
// pairs: for every position i, the input window is rows [i, i+inputLen) and
// the target window is the following rows [i+inputLen, i+inputLen+outputLen).
// The windows are subslices of the backing rows, not copies.
//
// A matrix shorter than inputLen+outputLen+1 rows yields an empty dataset.
func MakePairs(values [][]float64, inputLen, outputLen int) domain.Dataset {
	if inputLen <= 0 || outputLen <= 0 {
		return nil
	}
	n := len(values) - inputLen - outputLen
	if n <= 0 {
		return nil
	}
	pairs := make(domain.Dataset, 0, n)
	for i := 0; i < n; i++ {
		end := i + inputLen
		pairs = append(pairs, domain.SequencePair{
			Input:  values[i:end],
			Target: values[end : end+outputLen],
		})
	}
	return pairs
}
