package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
)

func fp(v float64) *float64 { return &v }

func TestClassifyNoDataIsNeutral(t *testing.T) {
	m := Classify(normalize.OperationSummary{}, scoring.SmartScoreResult{})

	assert.Equal(t, 50.0, m.RiskScore)
	assert.Equal(t, 50.0, m.ReturnScore)
	assert.Equal(t, QuadrantEquilibre, m.Quadrant)
	assert.Contains(t, m.Commentary, "placement neutre")
}

func TestClassifyOptimal(t *testing.T) {
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(40), YieldGross: fp(8), Margin: fp(20)},
	}
	smart := scoring.SmartScoreResult{
		Pillars: []scoring.Pillar{
			{Key: scoring.PillarRisk, HasData: true, RawScore: 80},
			{Key: scoring.PillarWorksRisk, HasData: true, RawScore: 80},
		},
	}

	m := Classify(op, smart)

	// Risk: (20 + 20 + 15) / 3, return: (90 + 90) / 2.
	assert.InDelta(t, 18.3, m.RiskScore, 0.05)
	assert.Equal(t, 90.0, m.ReturnScore)
	assert.Equal(t, QuadrantOptimal, m.Quadrant)
}

func TestClassifyDefavorable(t *testing.T) {
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(90), Margin: fp(-5)},
	}
	smart := scoring.SmartScoreResult{
		Pillars: []scoring.Pillar{
			{Key: scoring.PillarRisk, HasData: true, RawScore: 10},
		},
	}

	m := Classify(op, smart)

	// Risk: (90 + 90) / 2 = 90, return: margin score 15.
	assert.Equal(t, 90.0, m.RiskScore)
	assert.Equal(t, 15.0, m.ReturnScore)
	assert.Equal(t, QuadrantDefavorable, m.Quadrant)
}

func TestClassifySpeculatif(t *testing.T) {
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(90), YieldGross: fp(7)},
	}
	smart := scoring.SmartScoreResult{
		Pillars: []scoring.Pillar{
			{Key: scoring.PillarRisk, HasData: true, RawScore: 10},
		},
	}

	m := Classify(op, smart)

	assert.Greater(t, m.RiskScore, riskHighMin)
	assert.Equal(t, 75.0, m.ReturnScore)
	assert.Equal(t, QuadrantSpeculatif, m.Quadrant)
}

func TestClassifyVigilance(t *testing.T) {
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(60), YieldGross: fp(1)},
	}

	m := Classify(op, smartNeutral())

	assert.Equal(t, 50.0, m.RiskScore, "leverage only")
	assert.Equal(t, 20.0, m.ReturnScore)
	assert.Equal(t, QuadrantVigilance, m.Quadrant)
}

func smartNeutral() scoring.SmartScoreResult {
	return scoring.SmartScoreResult{}
}

func TestLeverageRiskLadder(t *testing.T) {
	tests := []struct {
		ltv  float64
		want float64
	}{
		{30, 15},
		{40, 15},
		{55, 30},
		{70, 50},
		{85, 70},
		{95, 90},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, leverageRisk(tt.ltv), "ltv %.0f", tt.ltv)
	}
}

func TestClassifyLeverageFallsBackToLTC(t *testing.T) {
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTC: fp(95)},
	}

	m := Classify(op, scoring.SmartScoreResult{})

	assert.Equal(t, 90.0, m.RiskScore)
}

func TestClassifyCommentaryNamesDominantFactors(t *testing.T) {
	op := normalize.OperationSummary{
		KPIs: normalize.KPIs{LTV: fp(90), YieldGross: fp(8), Margin: fp(2)},
	}

	m := Classify(op, scoring.SmartScoreResult{})

	assert.Contains(t, m.Commentary, "principal facteur de risque: levier")
	assert.Contains(t, m.Commentary, "moteur de rendement: rendement brut")
}

func TestUndocumentedPillarsIgnored(t *testing.T) {
	smart := scoring.SmartScoreResult{
		Pillars: []scoring.Pillar{
			{Key: scoring.PillarRisk, HasData: false, RawScore: 0},
		},
	}

	m := Classify(normalize.OperationSummary{}, smart)

	assert.Equal(t, 50.0, m.RiskScore, "a silent pillar must not read as maximum risk")
}
