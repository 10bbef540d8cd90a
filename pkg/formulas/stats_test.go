package formulas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedian(t *testing.T) {
	m := Median([]float64{3, 1, 2})
	require.NotNil(t, m)
	assert.InDelta(t, 2.0, *m, 1e-9)

	m = Median([]float64{4, 1, 3, 2})
	require.NotNil(t, m)
	assert.InDelta(t, 2.5, *m, 1e-9)

	assert.Nil(t, Median(nil))
}

func TestMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	_ = Median(values)
	assert.Equal(t, []float64{3, 1, 2}, values)
}

func TestPercentile(t *testing.T) {
	values := []float64{10, 20, 30, 40, 50}

	p25 := Percentile(values, 0.25)
	require.NotNil(t, p25)
	assert.InDelta(t, 20.0, *p25, 1e-9)

	p100 := Percentile(values, 1)
	require.NotNil(t, p100)
	assert.InDelta(t, 50.0, *p100, 1e-9)

	assert.Nil(t, Percentile(nil, 0.5))
}

func TestMeanAndStdDev(t *testing.T) {
	mean := Mean([]float64{2, 4, 6})
	require.NotNil(t, mean)
	assert.InDelta(t, 4.0, *mean, 1e-9)
	assert.Nil(t, Mean(nil))

	sd := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	require.NotNil(t, sd)
	assert.InDelta(t, 2.138, *sd, 0.001)

	assert.Nil(t, StdDev([]float64{5}), "one sample has no spread")
}

func TestMarketEvolutionPct(t *testing.T) {
	rising := []float64{100, 102, 104, 106, 108, 110}
	v := MarketEvolutionPct(rising)
	require.NotNil(t, v)
	assert.Greater(t, *v, 0.0)

	falling := []float64{110, 108, 106, 104, 102, 100}
	v = MarketEvolutionPct(falling)
	require.NotNil(t, v)
	assert.Less(t, *v, 0.0)

	assert.Nil(t, MarketEvolutionPct([]float64{100, 101}), "too short to smooth")
	assert.Nil(t, MarketEvolutionPct(nil))
}

func TestSmoothedIndexLevel(t *testing.T) {
	v := SmoothedIndexLevel([]float64{100, 102, 104})
	require.NotNil(t, v)
	assert.InDelta(t, 102.0, *v, 1e-9)

	assert.Nil(t, SmoothedIndexLevel([]float64{100}))
}
