package scorers

import (
	"fmt"
	"strings"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// WorksRiskScorer rates execution risk on the works programme: the heavier
// the works relative to total cost, the higher the overrun exposure.
type WorksRiskScorer struct{}

// NewWorksRiskScorer creates a new works risk scorer
func NewWorksRiskScorer() *WorksRiskScorer {
	return &WorksRiskScorer{}
}

// Works share of total cost breakpoints.
const (
	worksShareLight    = 0.10
	worksShareModerate = 0.25
	worksShareHeavy    = 0.40
)

// Calculate scores the works risk pillar.
func (ws *WorksRiskScorer) Calculate(op normalize.OperationSummary) Result {
	total := op.Budget.TotalCost
	if total == nil || *total <= 0 {
		return NoData()
	}

	works := 0.0
	if op.Budget.WorksBudget != nil {
		works = *op.Budget.WorksBudget
	} else if op.Budget.PurchasePrice == nil {
		// Neither a works line nor a purchase line: nothing to reason on.
		return NoData()
	}

	share := works / *total
	var score float64
	switch {
	case share <= worksShareLight:
		score = 85
	case share <= worksShareModerate:
		score = 70
	case share <= worksShareHeavy:
		score = 50
	default:
		score = 30
	}

	var reasons []reason
	if works == 0 {
		reasons = append(reasons, reason{text: "Pas de budget travaux, risque d'exécution limité", weight: score})
	} else {
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Travaux %.0f €, soit %.0f%% du coût total", works, share*100),
			weight: score - 50,
		})
	}

	// Heavy-restructuring operations carry overrun risk beyond the budget share.
	opType := strings.ToLower(op.Project.OperationType)
	if strings.Contains(opType, "rehab") || strings.Contains(opType, "réhab") ||
		strings.Contains(opType, "restructuration") {
		score = clamp(score - 10)
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("Opération de type %s: aléas de chantier accrus", op.Project.OperationType),
			weight: -10,
		})
	}

	return Result{
		Score:   formulas.Round1(clamp(score)),
		HasData: true,
		Reasons: topReasons(reasons, 3),
	}
}
