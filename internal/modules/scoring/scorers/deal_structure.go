package scorers

import (
	"fmt"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// DealStructureScorer rates the financing structure: leverage, debt coverage
// and sponsor equity.
type DealStructureScorer struct{}

// NewDealStructureScorer creates a new deal structure scorer
func NewDealStructureScorer() *DealStructureScorer {
	return &DealStructureScorer{}
}

// Calculate scores the deal structure pillar.
// Components:
// - LTV level (dominant)
// - DSCR adequacy bonus/malus
// - Equity share bonus
func (ds *DealStructureScorer) Calculate(op normalize.OperationSummary) Result {
	var reasons []reason
	hasData := false
	score := 0.0

	if op.KPIs.LTV != nil {
		hasData = true
		ltv := *op.KPIs.LTV
		score = ltvScore(ltv)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("LTV %.0f%%", ltv),
			weight: score - 50,
		})
	} else if op.KPIs.LTC != nil {
		hasData = true
		ltc := *op.KPIs.LTC
		score = ltvScore(ltc) // same ladder, cost basis
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("LTC %.0f%% (valeur de sortie inconnue)", ltc),
			weight: score - 50,
		})
	}

	if op.KPIs.DSCR != nil {
		dscr := *op.KPIs.DSCR
		var adj float64
		switch {
		case dscr >= 1.5:
			adj = 10
		case dscr >= 1.2:
			adj = 5
		case dscr < 1.0:
			adj = -20
		}
		if !hasData {
			hasData = true
			score = clamp(50 + adj*2)
		} else {
			score = clamp(score + adj)
		}
		if adj != 0 {
			reasons = append(reasons, reason{
				text:   fmt.Sprintf("DSCR %.2f", dscr),
				weight: adj,
			})
		}
	}

	if op.Financing.Equity != nil && op.Budget.TotalCost != nil && *op.Budget.TotalCost > 0 {
		equityShare := *op.Financing.Equity / *op.Budget.TotalCost
		if equityShare >= 0.20 {
			score = clamp(score + 5)
			reasons = append(reasons, reason{
				text:   fmt.Sprintf("Apport %.0f%% du coût total", equityShare*100),
				weight: 5,
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

func ltvScore(ltv float64) float64 {
	switch {
	case ltv <= 50:
		return 90
	case ltv <= 60:
		return 75
	case ltv <= 70:
		return 60
	case ltv <= 80:
		return 45
	case ltv <= 90:
		return 30
	default:
		return 15
	}
}
