package scorers

import (
	"fmt"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// LiquidityScorer rates how quickly the asset could be resold: market depth
// (number of comparables), price dispersion and demand pressure.
type LiquidityScorer struct{}

// NewLiquidityScorer creates a new liquidity scorer
func NewLiquidityScorer() *LiquidityScorer {
	return &LiquidityScorer{}
}

// Calculate scores the liquidity pillar.
func (ls *LiquidityScorer) Calculate(op normalize.OperationSummary) Result {
	var reasons []reason
	hasData := false
	score := 50.0

	compsCount := op.Market.CompsCount
	if compsCount == nil && len(op.Market.CompsPrices) > 0 {
		n := float64(len(op.Market.CompsPrices))
		compsCount = &n
	}
	if compsCount != nil {
		hasData = true
		depth := compsDepthScore(*compsCount)
		score = depth
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("%.0f transactions comparables recensées", *compsCount),
			weight: depth - 50,
		})
	}

	// High dispersion among comps means pricing risk at resale.
	if len(op.Market.CompsPrices) >= 2 {
		hasData = true
		if sd, mean := formulas.StdDev(op.Market.CompsPrices), formulas.Mean(op.Market.CompsPrices); sd != nil && mean != nil && *mean > 0 {
			cv := *sd / *mean
			var adj float64
			switch {
			case cv <= 0.10:
				adj = 10
			case cv <= 0.25:
				adj = 0
			default:
				adj = -15
			}
			if adj != 0 {
				score = clamp(score + adj)
				reasons = append(reasons, reason{
					text:   fmt.Sprintf("Dispersion des prix comparables: %.0f%%", cv*100),
					weight: adj,
				})
			}
		}
	}

	if op.Market.TensionIndex != nil {
		hasData = true
		adj := (*op.Market.TensionIndex - 5) * 3 // ±15 around neutral 5/10
		score = clamp(score + adj)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Tension de la demande %.1f/10", *op.Market.TensionIndex),
			weight: adj,
		})
	}

	if op.Market.EvolutionPct != nil && *op.Market.EvolutionPct < -3 {
		score = clamp(score - 10)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Marché en repli (%.1f%%), délais de revente allongés", *op.Market.EvolutionPct),
			weight: -10,
		})
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

func compsDepthScore(count float64) float64 {
	switch {
	case count >= 20:
		return 85
	case count >= 10:
		return 70
	case count >= 5:
		return 55
	case count >= 1:
		return 40
	default:
		return 25
	}
}
