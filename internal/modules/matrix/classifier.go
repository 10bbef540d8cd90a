// Package matrix places the operation on the committee's risk/return grid.
// Risk and return sub-scores are derived independently of the SmartScore so
// the quadrant stays readable even when the aggregate is dominated by
// missing-data penalties.
package matrix

import (
	"fmt"
	"sort"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
)

// Matrix is the quadrant placement with its sub-scores.
type Matrix struct {
	RiskScore   float64 `json:"riskScore"`   // 0-100, higher = riskier
	ReturnScore float64 `json:"returnScore"` // 0-100, higher = more attractive
	Quadrant    string  `json:"quadrant"`
	Commentary  string  `json:"commentary"`
}

// Quadrant labels.
const (
	QuadrantOptimal     = "optimal"
	QuadrantEquilibre   = "equilibre"
	QuadrantVigilance   = "vigilance"
	QuadrantSpeculatif  = "speculatif"
	QuadrantDefavorable = "defavorable"
)

// Quadrant thresholds.
const (
	riskLowMax    = 35.0
	riskHighMin   = 65.0
	returnGoodMin = 65.0
	returnWeakMax = 35.0
)

// component is one named contribution to a sub-score, kept for commentary.
type component struct {
	label string
	value float64
}

// Classify computes the risk/return placement of a scored operation.
func Classify(op normalize.OperationSummary, smart scoring.SmartScoreResult) Matrix {
	riskComponents := riskSide(op, smart)
	returnComponents := returnSide(op)

	risk := average(riskComponents, 50)
	ret := average(returnComponents, 50)

	m := Matrix{
		RiskScore:   risk,
		ReturnScore: ret,
		Quadrant:    quadrant(risk, ret),
	}
	m.Commentary = commentary(m, riskComponents, returnComponents)
	return m
}

func quadrant(risk, ret float64) string {
	switch {
	case risk <= riskLowMax && ret >= returnGoodMin:
		return QuadrantOptimal
	case risk > riskHighMin && ret < returnWeakMax:
		return QuadrantDefavorable
	case risk > riskHighMin:
		return QuadrantSpeculatif
	case ret < returnWeakMax:
		return QuadrantVigilance
	default:
		return QuadrantEquilibre
	}
}

// riskSide inverts the defensive pillar scores: a weak risk pillar means a
// high risk placement.
func riskSide(op normalize.OperationSummary, smart scoring.SmartScoreResult) []component {
	var out []component
	for _, p := range smart.Pillars {
		if !p.HasData {
			continue
		}
		switch p.Key {
		case scoring.PillarRisk:
			out = append(out, component{"exposition géographique", 100 - p.RawScore})
		case scoring.PillarWorksRisk:
			out = append(out, component{"risque travaux", 100 - p.RawScore})
		case scoring.PillarLegalUrbanism:
			out = append(out, component{"risque juridique", 100 - p.RawScore})
		}
	}
	if ltv := op.KPIs.LTV; ltv != nil {
		out = append(out, component{"levier", leverageRisk(*ltv)})
	} else if ltc := op.KPIs.LTC; ltc != nil {
		out = append(out, component{"levier", leverageRisk(*ltc)})
	}
	return out
}

func leverageRisk(ltv float64) float64 {
	switch {
	case ltv <= 40:
		return 15
	case ltv <= 55:
		return 30
	case ltv <= 70:
		return 50
	case ltv <= 85:
		return 70
	default:
		return 90
	}
}

func returnSide(op normalize.OperationSummary) []component {
	var out []component
	if y := op.KPIs.YieldGross; y != nil {
		out = append(out, component{"rendement brut", yieldScore(*y)})
	}
	if m := op.KPIs.Margin; m != nil {
		out = append(out, component{"marge", marginScore(*m)})
	}
	if r := op.KPIs.ROI; r != nil {
		out = append(out, component{"retour sur fonds propres", roiScore(*r)})
	}
	return out
}

func yieldScore(yieldPct float64) float64 {
	switch {
	case yieldPct >= 8:
		return 90
	case yieldPct >= 6:
		return 75
	case yieldPct >= 4:
		return 55
	case yieldPct >= 2:
		return 35
	default:
		return 20
	}
}

func marginScore(marginPct float64) float64 {
	switch {
	case marginPct >= 20:
		return 90
	case marginPct >= 12:
		return 75
	case marginPct >= 6:
		return 55
	case marginPct >= 0:
		return 40
	default:
		return 15
	}
}

func roiScore(roiPct float64) float64 {
	switch {
	case roiPct >= 30:
		return 90
	case roiPct >= 15:
		return 70
	case roiPct >= 5:
		return 50
	default:
		return 30
	}
}

// commentary names the metric driving each axis.
func commentary(m Matrix, riskComponents, returnComponents []component) string {
	text := fmt.Sprintf("Risque %.0f/100, rendement %.0f/100", m.RiskScore, m.ReturnScore)
	if worst := dominant(riskComponents, true); worst != "" {
		text += fmt.Sprintf("; principal facteur de risque: %s", worst)
	}
	if best := dominant(returnComponents, true); best != "" {
		text += fmt.Sprintf("; moteur de rendement: %s", best)
	}
	if len(riskComponents) == 0 && len(returnComponents) == 0 {
		text += "; placement neutre faute de données"
	}
	return text
}

// dominant returns the label of the highest-valued component.
func dominant(components []component, _ bool) string {
	if len(components) == 0 {
		return ""
	}
	sorted := make([]component, len(components))
	copy(sorted, components)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value > sorted[j].value })
	return sorted[0].label
}

func average(components []component, fallback float64) float64 {
	if len(components) == 0 {
		return fallback
	}
	total := 0.0
	for _, c := range components {
		total += c.value
	}
	return total / float64(len(components))
}
