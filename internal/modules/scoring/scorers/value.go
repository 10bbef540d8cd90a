package scorers

import (
	"fmt"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// ValueScorer rates the acquisition price against the local market and the
// expected margin of the operation.
type ValueScorer struct{}

// NewValueScorer creates a new value scorer
func NewValueScorer() *ValueScorer {
	return &ValueScorer{}
}

// Price ratio breakpoints (cost per sqm / market median per sqm).
const (
	valueRatioDeep    = 0.80 // clearly below market
	valueRatioFair    = 1.00
	valueRatioStretch = 1.20
)

// Calculate scores the value pillar.
// Components:
// - Price positioning vs market median per sqm (dominant)
// - Expected margin bonus/malus
func (vs *ValueScorer) Calculate(op normalize.OperationSummary) Result {
	var reasons []reason
	hasData := false
	score := 0.0

	costPerSqm := op.Budget.CostPerSqm
	marketPerSqm := op.Market.PricePerSqm

	if costPerSqm != nil && marketPerSqm != nil && *marketPerSqm > 0 {
		hasData = true
		ratio := *costPerSqm / *marketPerSqm
		var positioning float64
		switch {
		case ratio <= valueRatioDeep:
			positioning = 90
		case ratio <= valueRatioFair:
			// 90 at 0.80 down to 70 at parity
			positioning = 90 - (ratio-valueRatioDeep)/(valueRatioFair-valueRatioDeep)*20
		case ratio <= valueRatioStretch:
			// 70 at parity down to 40 at +20%
			positioning = 70 - (ratio-valueRatioFair)/(valueRatioStretch-valueRatioFair)*30
		default:
			positioning = clamp(40 - (ratio-valueRatioStretch)*100)
		}
		score = positioning
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Prix de revient %.0f €/m² vs marché %.0f €/m² (ratio %.2f)", *costPerSqm, *marketPerSqm, ratio),
			weight: positioning,
		})

		// A cost below the first quartile of actual comps is stronger
		// evidence than the median ratio alone.
		if len(op.Market.CompsPrices) >= 4 {
			if p25 := formulas.Percentile(op.Market.CompsPrices, 0.25); p25 != nil && *costPerSqm <= *p25 {
				score = clamp(score + 5)
				reasons = append(reasons, reason{
					text:   fmt.Sprintf("Prix de revient dans le quartile bas des comparables (P25 %.0f €/m²)", *p25),
					weight: 5,
				})
			}
		}
	}

	if op.KPIs.Margin != nil {
		margin := *op.KPIs.Margin
		var bonus float64
		switch {
		case margin >= 15:
			bonus = 10
		case margin >= 8:
			bonus = 5
		case margin < 0:
			bonus = -15
		}
		if !hasData {
			// Margin alone can carry the pillar when no market comp exists.
			hasData = true
			score = clamp(50 + margin*2)
			reasons = append(reasons, reason{
				text:   fmt.Sprintf("Marge attendue %.1f%% (aucun comparable marché)", margin),
				weight: score,
			})
		} else if bonus != 0 {
			score = clamp(score + bonus)
			reasons = append(reasons, reason{
				text:   fmt.Sprintf("Marge attendue %.1f%%", margin),
				weight: bonus,
			})
		}
	}

	if !hasData {
		return NoData()
	}
	return Result{
		Score:   formulas.Round1(clamp(score)),
		HasData: true,
		Reasons: topReasons(reasons, 3),
	}
}
