package scoring

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelin/comite/internal/modules/normalize"
)

func fp(v float64) *float64 { return &v }

func TestScoreEmptyOperationIsInsufficient(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSetFull, zerolog.Nop())

	result := svc.Score(normalize.OperationSummary{})

	assert.True(t, result.InsufficientData)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, "F", result.Grade)
	assert.Contains(t, result.Verdict, "Données insuffisantes")
	assert.Len(t, result.Pillars, 7)
	for _, p := range result.Pillars {
		assert.False(t, p.HasData, p.Key)
	}
}

func TestScoreSinglePillarRenormalizes(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSetFull, zerolog.Nop())

	// LTV 50 alone: deal structure raw 90, every other pillar silent, so the
	// aggregate renormalizes to 90 before penalties. The sparse file costs the
	// full penalty cap of 25.
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(50)},
	}
	result := svc.Score(op)

	assert.False(t, result.InsufficientData)
	assert.Equal(t, 65.0, result.Score)
	assert.Equal(t, "B", result.Grade)
	assert.Equal(t, 25.0, result.TotalMissingPenalty)

	var deal Pillar
	for _, p := range result.Pillars {
		if p.Key == PillarDealStructure {
			deal = p
		}
	}
	assert.True(t, deal.HasData)
	assert.Equal(t, 90.0, deal.RawScore)
	assert.Equal(t, 13.5, deal.Points)
}

func TestScoreIsDeterministic(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSetFull, zerolog.Nop())
	op := normalize.OperationSummary{
		Budget:    normalize.Budget{TotalCost: fp(800000), CostPerSqm: fp(2000)},
		Financing: normalize.Financing{LoanAmount: fp(600000), Equity: fp(200000)},
		Revenues:  normalize.Revenues{ExitValue: fp(1000000)},
		Market:    normalize.Market{PricePerSqm: fp(2500), CompsCount: fp(12)},
		Risks: normalize.Risks{Geo: []normalize.RiskItem{
			{Key: "flood", Label: "Inondation", Level: normalize.RiskLow},
		}},
		KPIs: normalize.KPIs{LTV: fp(60), Margin: fp(25)},
	}

	first := svc.Score(op)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, svc.Score(op))
	}
	assert.GreaterOrEqual(t, first.Score, 0.0)
	assert.LessOrEqual(t, first.Score, 100.0)
}

func TestScorePillarOrderIsStable(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSetFull, zerolog.Nop())

	result := svc.Score(normalize.OperationSummary{KPIs: normalize.KPIs{LTV: fp(50)}})

	keys := make([]string, 0, len(result.Pillars))
	for _, p := range result.Pillars {
		keys = append(keys, p.Key)
	}
	assert.Equal(t, []string{
		PillarValue, PillarLocation, PillarLiquidity, PillarWorksRisk,
		PillarDealStructure, PillarLegalUrbanism, PillarRisk,
	}, keys)
}

func TestScoreMinimalSet(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSetMinimal, zerolog.Nop())

	result := svc.Score(normalize.OperationSummary{KPIs: normalize.KPIs{LTV: fp(50)}})

	require.Len(t, result.Pillars, 3)
	total := 0.0
	for _, p := range result.Pillars {
		total += p.MaxPoints
	}
	assert.Equal(t, 100.0, total)
}

func TestScoreUnknownSetFallsBackToFull(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSet("whatever"), zerolog.Nop())
	result := svc.Score(normalize.OperationSummary{})
	assert.Len(t, result.Pillars, 7)
}

func TestScoreRecommendationsNameBlockers(t *testing.T) {
	svc := NewService(DefaultThresholds(), PillarSetFull, zerolog.Nop())
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(50)},
		Missing: []normalize.MissingDataItem{
			{Key: "dpe", Label: "Diagnostic DPE", Severity: normalize.SeverityBlocker},
		},
	}

	result := svc.Score(op)

	require.NotEmpty(t, result.Recommendations)
	assert.Contains(t, result.Recommendations[0], "Diagnostic DPE")
}
