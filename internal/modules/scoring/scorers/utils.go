package scorers

import (
	"math"
	"sort"
)

// Result is the raw outcome of one pillar scorer: a 0-100 score, whether any
// usable input existed, and display reasons ordered by contribution.
type Result struct {
	Score   float64
	HasData bool
	Reasons []string
}

// NoData is the canonical empty result for a pillar with zero usable inputs.
func NoData() Result {
	return Result{Score: 0, HasData: false}
}

// reason pairs a display string with the magnitude of its contribution so the
// final list can be ordered largest-first.
type reason struct {
	text   string
	weight float64
}

// topReasons orders reasons by absolute contribution descending and keeps the
// first n. Ties keep insertion order (sort is stable) so output stays
// deterministic.
func topReasons(rs []reason, n int) []string {
	sorted := make([]reason, len(rs))
	copy(sorted, rs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return math.Abs(sorted[i].weight) > math.Abs(sorted[j].weight)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]string, 0, len(sorted))
	for _, r := range sorted {
		out = append(out, r.text)
	}
	return out
}

// clamp bounds a raw score to the 0-100 scale.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// round1 rounds to 1 decimal place
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
