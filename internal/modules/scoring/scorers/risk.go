package scorers

import (
	"fmt"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// RiskScorer rates the general geo/environmental exposure: flood, seismic,
// clay shrinkage, industrial neighbours and similar flags.
type RiskScorer struct{}

// NewRiskScorer creates a new risk scorer
func NewRiskScorer() *RiskScorer {
	return &RiskScorer{}
}

// Penalty per identified risk, by level.
const (
	riskPenaltyHigh   = 25.0
	riskPenaltyMedium = 12.0
	riskPenaltyLow    = 4.0
)

// Calculate scores the geo-risk pillar: base 85 minus a penalty per
// identified non-legal risk, floored at 5.
func (rs *RiskScorer) Calculate(op normalize.OperationSummary) Result {
	if len(op.Risks.Geo) == 0 {
		return NoData()
	}

	score := 85.0
	var reasons []reason
	counted := 0
	for _, item := range op.Risks.Geo {
		if isLegalRisk(item) {
			continue // scored by the legal/urbanism pillar
		}
		counted++
		var penalty float64
		switch item.Level {
		case normalize.RiskHigh:
			penalty = riskPenaltyHigh
		case normalize.RiskMedium:
			penalty = riskPenaltyMedium
		default:
			penalty = riskPenaltyLow
		}
		score -= penalty
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("%s (niveau %s)", item.Label, item.Level),
			weight: -penalty,
		})
	}

	if counted == 0 {
		return Result{
			Score:   85,
			HasData: true,
			Reasons: []string{"Aucun risque géographique identifié"},
		}
	}
	if score < 5 {
		score = 5
	}

	return Result{
		Score:   formulas.Round1(score),
		HasData: true,
		Reasons: topReasons(reasons, 3),
	}
}
