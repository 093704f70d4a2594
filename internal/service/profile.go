package service

import (
	"math"

	"listdist/internal/models"
)

// ColumnProfiler computes summary metrics for a parsed column
type ColumnProfiler struct{}

// NewColumnProfiler creates a new profiler
func NewColumnProfiler() *ColumnProfiler {
	return &ColumnProfiler{}
}

// ProfileColumn analyzes a single column
func (cp *ColumnProfiler) ProfileColumn(name string, column []uint32) models.ColumnProfile {
	profile := models.ColumnProfile{
		Name:  name,
		Count: len(column),
	}
	if len(column) == 0 {
		return profile
	}

	counts := make(map[uint32]int)
	profile.Min = column[0]
	profile.Max = column[0]
	for _, v := range column {
		counts[v]++
		profile.Sum += uint64(v)
		if v < profile.Min {
			profile.Min = v
		}
		if v > profile.Max {
			profile.Max = v
		}
	}

	profile.DistinctCount = len(counts)
	profile.UniquenessRatio = float64(profile.DistinctCount) / float64(profile.Count)
	profile.Entropy = cp.calculateEntropy(counts, profile.Count)

	return profile
}

// calculateEntropy computes Shannon entropy
func (cp *ColumnProfiler) calculateEntropy(valueCounts map[uint32]int, total int) float64 {
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, count := range valueCounts {
		if count > 0 {
			p := float64(count) / float64(total)
			entropy -= p * math.Log2(p)
		}
	}

	return entropy
}
