package scorers

import (
	"fmt"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// LocationScorer rates the catchment area from the market/INSEE composite:
// price dynamics, commune size, median household revenue and rental tension.
type LocationScorer struct{}

// NewLocationScorer creates a new location scorer
func NewLocationScorer() *LocationScorer {
	return &LocationScorer{}
}

// National median household revenue used as the reference point for the
// revenue sub-score (INSEE, rounded).
const nationalRevenueMedian = 23000.0

// Calculate scores the location pillar as the mean of whichever sub-scores
// have data: price evolution, population depth, revenue level, tension index.
func (ls *LocationScorer) Calculate(op normalize.OperationSummary) Result {
	var reasons []reason
	var subScores []float64

	evolution := op.Market.EvolutionPct
	if evolution == nil {
		// Derive the trend from the raw index series when available.
		evolution = formulas.MarketEvolutionPct(op.Market.PriceIndexSeries)
	}
	if evolution != nil {
		sub := evolutionScore(*evolution)
		subScores = append(subScores, sub)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Évolution du marché local: %+.1f%%", *evolution),
			weight: sub - 50,
		})
	}

	if op.Market.PopulationCommune != nil {
		sub := populationScore(*op.Market.PopulationCommune)
		subScores = append(subScores, sub)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Commune de %.0f habitants", *op.Market.PopulationCommune),
			weight: sub - 50,
		})
	}

	if op.Market.RevenueMedian != nil {
		ratio := *op.Market.RevenueMedian / nationalRevenueMedian
		sub := clamp(50 + (ratio-1)*80)
		subScores = append(subScores, sub)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Revenu médian %.0f € (%.0f%% de la médiane nationale)", *op.Market.RevenueMedian, ratio*100),
			weight: sub - 50,
		})
	}

	if op.Market.TensionIndex != nil {
		// Tension index normalized 0-10 upstream: higher = more demand.
		sub := clamp(*op.Market.TensionIndex * 10)
		subScores = append(subScores, sub)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Indice de tension locative %.1f/10", *op.Market.TensionIndex),
			weight: sub - 50,
		})
	}

	if len(subScores) == 0 {
		return NoData()
	}

	total := 0.0
	for _, s := range subScores {
		total += s
	}
	return Result{
		Score:   formulas.Round1(clamp(total / float64(len(subScores)))),
		HasData: true,
		Reasons: topReasons(reasons, 3),
	}
}

func evolutionScore(evolutionPct float64) float64 {
	switch {
	case evolutionPct >= 5:
		return 90
	case evolutionPct >= 2:
		return 75
	case evolutionPct >= 0:
		return 60
	case evolutionPct >= -3:
		return 40
	default:
		return 20
	}
}

func populationScore(population float64) float64 {
	switch {
	case population >= 200000:
		return 85
	case population >= 50000:
		return 75
	case population >= 20000:
		return 65
	case population >= 5000:
		return 50
	default:
		return 35
	}
}
