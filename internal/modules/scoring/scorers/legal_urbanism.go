package scorers

import (
	"fmt"
	"strings"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/pkg/formulas"
)

// LegalUrbanismScorer rates the legal and planning exposure from identified
// risks whose keys belong to the legal taxonomy.
type LegalUrbanismScorer struct{}

// NewLegalUrbanismScorer creates a new legal/urbanism scorer
func NewLegalUrbanismScorer() *LegalUrbanismScorer {
	return &LegalUrbanismScorer{}
}

// legalKeywords identify risk items belonging to this pillar rather than the
// general geo-risk pillar.
var legalKeywords = []string{
	"permis", "urbanisme", "urbanism", "plu", "servitude",
	"preemption", "préemption", "erp", "abf", "copropriete", "copropriété",
}

// Calculate scores the legal/urbanism pillar from matching risk items.
// Base 75, penalized per item by severity.
func (ls *LegalUrbanismScorer) Calculate(op normalize.OperationSummary) Result {
	if len(op.Risks.Geo) == 0 {
		return NoData()
	}

	score := 75.0
	var reasons []reason
	matched := false
	for _, item := range op.Risks.Geo {
		if !isLegalRisk(item) {
			continue
		}
		matched = true
		var penalty float64
		switch item.Level {
		case normalize.RiskHigh:
			penalty = 30
		case normalize.RiskMedium:
			penalty = 15
		default:
			penalty = 5
		}
		score -= penalty
		reasons = append(reasons, reason{
			text:   fmt.Sprintf("%s (niveau %s)", item.Label, item.Level),
			weight: -penalty,
		})
	}

	if !matched {
		// Risks were documented and none is legal: clean file.
		return Result{
			Score:   85,
			HasData: true,
			Reasons: []string{"Aucun risque juridique ou d'urbanisme identifié"},
		}
	}

	return Result{
		Score:   formulas.Round1(clamp(score)),
		HasData: true,
		Reasons: topReasons(reasons, 3),
	}
}

func isLegalRisk(item normalize.RiskItem) bool {
	key := strings.ToLower(item.Key + " " + item.Label)
	for _, kw := range legalKeywords {
		if strings.Contains(key, kw) {
			return true
		}
	}
	return false
}
