package domain

// SequencePair is one supervised example for sequence prediction: a
// fixed-length lookback window and a fixed-length lookahead window, both
// drawn from contiguous rows of the same series. Pairs never span a file
// boundary.
type SequencePair struct {
	Input  [][]float64 // shape (inputLen, featureCount)
	Target [][]float64 // shape (outputLen, featureCount)
}

// Dataset is an unordered list of sequence pairs.
type Dataset []SequencePair

// SplitSets bundles the three partitions a pipeline run produces.
type SplitSets struct {
	Train Dataset
	Val   Dataset
	Test  Dataset
}
