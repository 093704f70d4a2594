package analysis

import (
	"math"
	"slices"
	"testing"
)

var (
	scenarioLeft  = []uint32{3, 4, 2, 1, 3, 3}
	scenarioRight = []uint32{4, 3, 5, 3, 9, 3}
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name        string
		left, right []uint32
		want        uint64
	}{
		{"scenario", scenarioLeft, scenarioRight, 11},
		{"empty", nil, nil, 0},
		{"single", []uint32{7}, []uint32{2}, 5},
		{"extremes", []uint32{0, math.MaxUint32}, []uint32{math.MaxUint32, math.MaxUint32}, math.MaxUint32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.left, tt.right); got != tt.want {
				t.Errorf("Distance = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDistanceDoesNotMutate(t *testing.T) {
	left := slices.Clone(scenarioLeft)
	right := slices.Clone(scenarioRight)
	Distance(left, right)
	if !slices.Equal(left, scenarioLeft) || !slices.Equal(right, scenarioRight) {
		t.Errorf("inputs mutated: %v %v", left, right)
	}
}

func TestDistancePermutationInvariant(t *testing.T) {
	// rows reversed, and rotated
	left := []uint32{3, 3, 1, 2, 4, 3}
	right := []uint32{3, 9, 3, 5, 3, 4}
	if got := Distance(left, right); got != 11 {
		t.Errorf("reversed rows: Distance = %d, want 11", got)
	}
	left = append(slices.Clone(scenarioLeft[2:]), scenarioLeft[:2]...)
	right = append(slices.Clone(scenarioRight[2:]), scenarioRight[:2]...)
	if got := Distance(left, right); got != 11 {
		t.Errorf("rotated rows: Distance = %d, want 11", got)
	}
}

func TestDistanceAgainstItself(t *testing.T) {
	shuffled := []uint32{4, 1, 3, 3, 2, 3}
	if got := Distance(scenarioLeft, shuffled); got != 0 {
		t.Errorf("Distance = %d, want 0", got)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name        string
		left, right []uint32
		want        uint32
	}{
		{"scenario", scenarioLeft, scenarioRight, 31},
		{"empty", nil, nil, 0},
		{"disjoint", []uint32{1, 2, 3}, []uint32{4, 5, 6}, 0},
		{"zero value", []uint32{0, 0}, []uint32{0, 0, 0}, 0},
		{"repeat", []uint32{5}, []uint32{5, 5, 5, 5}, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Similarity(tt.left, tt.right)
			if err != nil {
				t.Fatalf("Similarity: %v", err)
			}
			if got != tt.want {
				t.Errorf("Similarity = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSimilarityPermutationInvariant(t *testing.T) {
	left := []uint32{1, 3, 3, 2, 4, 3}
	got, err := Similarity(left, scenarioRight)
	if err != nil {
		t.Fatal(err)
	}
	if got != 31 {
		t.Errorf("Similarity = %d, want 31", got)
	}
}

func TestSimilarityOverflow(t *testing.T) {
	_, err := Similarity([]uint32{math.MaxUint32}, []uint32{math.MaxUint32, math.MaxUint32})
	if KindOf(err) != KindOverflow {
		t.Fatalf("err = %v, want overflow", err)
	}

	got, err := Similarity([]uint32{math.MaxUint32}, []uint32{math.MaxUint32})
	if err != nil {
		t.Fatalf("boundary value rejected: %v", err)
	}
	if got != math.MaxUint32 {
		t.Errorf("Similarity = %d, want %d", got, uint32(math.MaxUint32))
	}
}

func TestFrequencies(t *testing.T) {
	freq := Frequencies(scenarioRight)
	want := map[uint32]uint32{3: 3, 4: 1, 5: 1, 9: 1}
	if len(freq) != len(want) {
		t.Fatalf("freq = %v, want %v", freq, want)
	}
	for k, v := range want {
		if freq[k] != v {
			t.Errorf("freq[%d] = %d, want %d", k, freq[k], v)
		}
	}
}
