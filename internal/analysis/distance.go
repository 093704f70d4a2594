package analysis

import "slices"

// Distance pairs the i-th smallest left value with the i-th smallest right
// value and sums the absolute differences. Inputs are not modified.
// Values beyond the shorter column are ignored.
func Distance(left, right []uint32) uint64 {
	l := slices.Clone(left)
	r := slices.Clone(right)
	slices.Sort(l)
	slices.Sort(r)

	n := min(len(l), len(r))
	var total uint64
	for i := 0; i < n; i++ {
		total += absDiff(uint64(l[i]), uint64(r[i]))
	}
	return total
}

func absDiff(a, b uint64) uint64 {
	if a >= b {
		return a - b
	}
	return b - a
}
