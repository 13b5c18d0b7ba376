package dataset

import "testing"

func rampMatrix(rows, cols int) [][]float64 {
	values := make([][]float64, rows)
	for i := range values {
		row := make([]float64, cols)
		for j := range row {
			row[j] = float64(i*cols + j)
		}
		values[i] = row
	}
	return values
}

func TestMakePairs(t *testing.T) {
	tests := []struct {
		name      string
		rows      int
		inputLen  int
		outputLen int
		wantPairs int
	}{
		{name: "typical", rows: 20, inputLen: 5, outputLen: 2, wantPairs: 13},
		{name: "exactly one short", rows: 7, inputLen: 5, outputLen: 2, wantPairs: 0},
		{name: "one pair", rows: 8, inputLen: 5, outputLen: 2, wantPairs: 1},
		{name: "empty input", rows: 0, inputLen: 5, outputLen: 2, wantPairs: 0},
		{name: "long output", rows: 40, inputLen: 10, outputLen: 10, wantPairs: 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pairs := MakePairs(rampMatrix(tt.rows, 3), tt.inputLen, tt.outputLen)
			if len(pairs) != tt.wantPairs {
				t.Fatalf("got %d pairs, want %d", len(pairs), tt.wantPairs)
			}
			for i, pair := range pairs {
				if len(pair.Input) != tt.inputLen {
					t.Errorf("pair %d: input window has %d rows, want %d", i, len(pair.Input), tt.inputLen)
				}
				if len(pair.Target) != tt.outputLen {
					t.Errorf("pair %d: target window has %d rows, want %d", i, len(pair.Target), tt.outputLen)
				}
			}
		})
	}
}

func TestMakePairsWindowsAreContiguous(t *testing.T) {
	values := rampMatrix(12, 2)
	pairs := MakePairs(values, 4, 3)

	for i, pair := range pairs {
		if pair.Input[0][0] != values[i][0] {
			t.Errorf("pair %d: input starts at %v, want %v", i, pair.Input[0][0], values[i][0])
		}
		// The target picks up exactly where the input ends.
		if pair.Target[0][0] != values[i+4][0] {
			t.Errorf("pair %d: target starts at %v, want %v", i, pair.Target[0][0], values[i+4][0])
		}
		if pair.Target[2][0] != values[i+6][0] {
			t.Errorf("pair %d: target ends at %v, want %v", i, pair.Target[2][0], values[i+6][0])
		}
	}
}

func TestMakePairsRejectsBadLengths(t *testing.T) {
	values := rampMatrix(10, 2)
	if pairs := MakePairs(values, 0, 2); pairs != nil {
		t.Errorf("inputLen 0: got %d pairs, want none", len(pairs))
	}
	if pairs := MakePairs(values, 4, -1); pairs != nil {
		t.Errorf("negative outputLen: got %d pairs, want none", len(pairs))
	}
}
