package formulas

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Median returns the median of values, or nil for an empty slice.
func Median(values []float64) *float64 {
	return Percentile(values, 0.5)
}

// Percentile returns the p-quantile (0..1) of values using linear
// interpolation, or nil for an empty slice.
func Percentile(values []float64, p float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	v := stat.Quantile(p, stat.LinInterp, sorted, nil)
	return &v
}

// StdDev returns the sample standard deviation, or nil when fewer than
// two values are available.
func StdDev(values []float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	v := stat.StdDev(values, nil)
	return &v
}

// Mean returns the arithmetic mean, or nil for an empty slice.
func Mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	v := stat.Mean(values, nil)
	return &v
}
