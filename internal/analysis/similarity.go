package analysis

import (
	"fmt"
	"math"
)

// Frequencies counts occurrences of each value in column.
func Frequencies(column []uint32) map[uint32]uint32 {
	freq := make(map[uint32]uint32, len(column))
	for _, v := range column {
		freq[v]++
	}
	return freq
}

// Similarity sums value * count(value in right) over every left value.
// A result that does not fit in 32 bits is reported as KindOverflow.
func Similarity(left, right []uint32) (uint32, error) {
	freq := Frequencies(right)

	var total uint64
	for i, v := range left {
		total += uint64(v) * uint64(freq[v])
		if total > math.MaxUint32 {
			return 0, &Error{
				Kind: KindOverflow,
				Msg:  fmt.Sprintf("similarity score exceeds %d at record %d", uint64(math.MaxUint32), i+1),
			}
		}
	}
	return uint32(total), nil
}
