package formulas

import (
	"math"

	"github.com/markcheno/go-talib"
)

// trendEMAPeriod smooths quarterly price-index points before comparing the
// start and end of the series.
const trendEMAPeriod = 3

// MarketEvolutionPct derives a market evolution percentage from a price-index
// series (e.g. quarterly notaire price indices). The series is EMA-smoothed so
// a single noisy quarter does not flip the trend sign. Returns nil when the
// series is too short to say anything.
func MarketEvolutionPct(series []float64) *float64 {
	if len(series) < trendEMAPeriod+1 {
		return nil
	}
	smoothed := talib.Ema(series, trendEMAPeriod)

	// talib leaves the warm-up prefix at zero; first usable point is at
	// index period-1.
	first := smoothed[trendEMAPeriod-1]
	last := smoothed[len(smoothed)-1]
	if first <= 0 || math.IsNaN(first) || math.IsNaN(last) {
		return nil
	}
	v := (last - first) / first * 100
	return finiteTrend(v)
}

// SmoothedIndexLevel returns the SMA-smoothed latest level of a price-index
// series, used for display alongside the evolution figure.
func SmoothedIndexLevel(series []float64) *float64 {
	if len(series) < trendEMAPeriod {
		return nil
	}
	sma := talib.Sma(series, trendEMAPeriod)
	last := sma[len(sma)-1]
	return finiteTrend(last)
}

func finiteTrend(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
