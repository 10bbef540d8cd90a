package scorers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avelin/comite/internal/modules/normalize"
)

func fp(v float64) *float64 { return &v }

func TestValueScorerPricePositioning(t *testing.T) {
	scorer := NewValueScorer()

	tests := []struct {
		name       string
		costPerSqm float64
		marketSqm  float64
		want       float64
	}{
		{"deep discount", 2000, 2600, 90},
		{"at parity", 2600, 2600, 70},
		{"twenty percent over", 3120, 2600, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op := normalize.OperationSummary{
				Budget: normalize.Budget{CostPerSqm: fp(tt.costPerSqm)},
				Market: normalize.Market{PricePerSqm: fp(tt.marketSqm)},
			}
			res := scorer.Calculate(op)
			assert.True(t, res.HasData)
			assert.InDelta(t, tt.want, res.Score, 0.5)
		})
	}
}

func TestValueScorerMarginAlone(t *testing.T) {
	scorer := NewValueScorer()

	res := scorer.Calculate(normalize.OperationSummary{
		KPIs: normalize.KPIs{Margin: fp(20)},
	})
	assert.True(t, res.HasData)
	assert.Equal(t, 90.0, res.Score)

	res = scorer.Calculate(normalize.OperationSummary{
		KPIs: normalize.KPIs{Margin: fp(-10)},
	})
	assert.True(t, res.HasData)
	assert.Equal(t, 30.0, res.Score)
}

func TestValueScorerCompsQuartileBonus(t *testing.T) {
	op := normalize.OperationSummary{
		Budget: normalize.Budget{CostPerSqm: fp(2000)},
		Market: normalize.Market{
			PricePerSqm: fp(2600),
			CompsPrices: []float64{2500, 2600, 2700, 2800},
		},
	}
	res := NewValueScorer().Calculate(op)

	// Deep discount (90) plus the low-quartile bonus: 2000 sits below the
	// P25 of the comps (2575).
	assert.Equal(t, 95.0, res.Score)
}

func TestValueScorerNoData(t *testing.T) {
	res := NewValueScorer().Calculate(normalize.OperationSummary{})
	assert.False(t, res.HasData)
	assert.Equal(t, 0.0, res.Score)
}

func TestLocationScorerComposite(t *testing.T) {
	scorer := NewLocationScorer()

	op := normalize.OperationSummary{
		Market: normalize.Market{
			EvolutionPct:      fp(3),
			PopulationCommune: fp(60000),
			TensionIndex:      fp(8),
		},
	}
	res := scorer.Calculate(op)

	// Mean of 75 (evolution), 75 (population) and 80 (tension).
	assert.True(t, res.HasData)
	assert.InDelta(t, 76.7, res.Score, 0.05)
}

func TestLocationScorerDerivesTrendFromSeries(t *testing.T) {
	op := normalize.OperationSummary{
		Market: normalize.Market{
			PriceIndexSeries: []float64{100, 103, 106, 109, 112},
		},
	}
	res := NewLocationScorer().Calculate(op)
	assert.True(t, res.HasData, "index series stands in for an explicit evolution figure")
}

func TestLocationScorerNoData(t *testing.T) {
	assert.False(t, NewLocationScorer().Calculate(normalize.OperationSummary{}).HasData)
}

func TestLiquidityScorerDepth(t *testing.T) {
	scorer := NewLiquidityScorer()

	res := scorer.Calculate(normalize.OperationSummary{
		Market: normalize.Market{CompsCount: fp(25)},
	})
	assert.True(t, res.HasData)
	assert.Equal(t, 85.0, res.Score)

	res = scorer.Calculate(normalize.OperationSummary{
		Market: normalize.Market{CompsCount: fp(2)},
	})
	assert.Equal(t, 40.0, res.Score)
}

func TestLiquidityScorerDispersionPenalty(t *testing.T) {
	// Tight comps around 3000: low dispersion bonus applies.
	tight := normalize.OperationSummary{
		Market: normalize.Market{CompsPrices: []float64{2950, 3000, 3050}},
	}
	resTight := NewLiquidityScorer().Calculate(tight)

	spread := normalize.OperationSummary{
		Market: normalize.Market{CompsPrices: []float64{1500, 3000, 4800}},
	}
	resSpread := NewLiquidityScorer().Calculate(spread)

	assert.Greater(t, resTight.Score, resSpread.Score)
}

func TestWorksRiskScorerShares(t *testing.T) {
	scorer := NewWorksRiskScorer()

	tests := []struct {
		works float64
		want  float64
	}{
		{50000, 85},  // 6% of total
		{160000, 70}, // 20%
		{280000, 50}, // 35%
		{400000, 30}, // 50%
	}
	for _, tt := range tests {
		op := normalize.OperationSummary{
			Budget: normalize.Budget{TotalCost: fp(800000), WorksBudget: fp(tt.works)},
		}
		res := scorer.Calculate(op)
		assert.True(t, res.HasData)
		assert.Equal(t, tt.want, res.Score, "works %.0f", tt.works)
	}
}

func TestWorksRiskScorerRestructuringMalus(t *testing.T) {
	op := normalize.OperationSummary{
		Project: normalize.Project{OperationType: "réhabilitation lourde"},
		Budget:  normalize.Budget{TotalCost: fp(800000), WorksBudget: fp(50000)},
	}
	res := NewWorksRiskScorer().Calculate(op)
	assert.Equal(t, 75.0, res.Score)
}

func TestWorksRiskScorerNoData(t *testing.T) {
	assert.False(t, NewWorksRiskScorer().Calculate(normalize.OperationSummary{}).HasData)
}

func TestDealStructureScorerLeverageLadder(t *testing.T) {
	scorer := NewDealStructureScorer()

	tests := []struct {
		ltv  float64
		want float64
	}{
		{45, 90},
		{60, 75},
		{70, 60},
		{80, 45},
		{90, 30},
		{95, 15},
	}
	for _, tt := range tests {
		res := scorer.Calculate(normalize.OperationSummary{
			KPIs: normalize.KPIs{LTV: fp(tt.ltv)},
		})
		assert.Equal(t, tt.want, res.Score, "ltv %.0f", tt.ltv)
	}
}

func TestDealStructureScorerDSCRAdjustment(t *testing.T) {
	scorer := NewDealStructureScorer()

	strong := scorer.Calculate(normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(60), DSCR: fp(1.6)},
	})
	assert.Equal(t, 85.0, strong.Score)

	weak := scorer.Calculate(normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(60), DSCR: fp(0.9)},
	})
	assert.Equal(t, 55.0, weak.Score)
}

func TestDealStructureScorerEquityBonus(t *testing.T) {
	res := NewDealStructureScorer().Calculate(normalize.OperationSummary{
		Budget:    normalize.Budget{TotalCost: fp(800000)},
		Financing: normalize.Financing{Equity: fp(200000)},
		KPIs:      normalize.KPIs{LTV: fp(60)},
	})
	assert.Equal(t, 80.0, res.Score, "25% equity earns the bonus")
}

func TestRiskScorerPenalties(t *testing.T) {
	scorer := NewRiskScorer()

	res := scorer.Calculate(normalize.OperationSummary{
		Risks: normalize.Risks{Geo: []normalize.RiskItem{
			{Key: "flood", Label: "Inondation", Level: normalize.RiskHigh},
			{Key: "clay", Label: "Argile", Level: normalize.RiskMedium},
		}},
	})
	assert.True(t, res.HasData)
	assert.Equal(t, 48.0, res.Score, "85 - 25 - 12")
}

func TestRiskScorerFloor(t *testing.T) {
	var items []normalize.RiskItem
	for i := 0; i < 5; i++ {
		items = append(items, normalize.RiskItem{Key: "r", Label: "Risque", Level: normalize.RiskHigh})
	}
	res := NewRiskScorer().Calculate(normalize.OperationSummary{Risks: normalize.Risks{Geo: items}})
	assert.Equal(t, 5.0, res.Score)
}

func TestRiskScorerIgnoresLegalItems(t *testing.T) {
	res := NewRiskScorer().Calculate(normalize.OperationSummary{
		Risks: normalize.Risks{Geo: []normalize.RiskItem{
			{Key: "permis", Label: "Permis contesté", Level: normalize.RiskHigh},
		}},
	})
	assert.True(t, res.HasData)
	assert.Equal(t, 85.0, res.Score, "legal items belong to the urbanism pillar")
}

func TestLegalUrbanismScorer(t *testing.T) {
	scorer := NewLegalUrbanismScorer()

	res := scorer.Calculate(normalize.OperationSummary{
		Risks: normalize.Risks{Geo: []normalize.RiskItem{
			{Key: "permis", Label: "Permis contesté", Level: normalize.RiskHigh},
			{Key: "servitude", Label: "Servitude de passage", Level: normalize.RiskLow},
		}},
	})
	assert.True(t, res.HasData)
	assert.Equal(t, 40.0, res.Score, "75 - 30 - 5")

	clean := scorer.Calculate(normalize.OperationSummary{
		Risks: normalize.Risks{Geo: []normalize.RiskItem{
			{Key: "flood", Label: "Inondation", Level: normalize.RiskHigh},
		}},
	})
	assert.Equal(t, 85.0, clean.Score)

	assert.False(t, scorer.Calculate(normalize.OperationSummary{}).HasData)
}

func TestTopReasonsOrdering(t *testing.T) {
	rs := []reason{
		{text: "small", weight: 2},
		{text: "big", weight: -20},
		{text: "medium", weight: 10},
	}
	out := topReasons(rs, 2)
	assert.Equal(t, []string{"big", "medium"}, out)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-3))
	assert.Equal(t, 100.0, clamp(250))
	assert.Equal(t, 61.0, clamp(61))
}
