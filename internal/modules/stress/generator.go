// Package stress re-evaluates the operation under adverse shifts of its
// inputs. Each scenario mutates a copy of the canonical summary, re-derives
// the impacted ratios and runs the full scoring and acceptance chain again.
package stress

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/modules/acceptance"
	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
	"github.com/avelin/comite/pkg/formulas"
	"github.com/avelin/comite/pkg/logger"
)

// Shift describes one adverse move applied to the base case.
type Shift struct {
	Key           string
	Label         string
	RateDeltaPct  float64 // added to the annual interest rate, in points
	VacancyPts    float64 // removed from the occupancy rate, in points
	CostUpliftPct float64 // applied to works budget and total cost, in percent
}

// Scenario is the outcome of one stressed evaluation.
type Scenario struct {
	Key             string   `json:"key"`
	Label           string   `json:"label"`
	Score           float64  `json:"score"`
	ScoreDelta      float64  `json:"scoreDelta"`
	Acceptance      float64  `json:"acceptance"`
	AcceptanceDelta float64  `json:"acceptanceDelta"`
	DSCR            *float64 `json:"dscr,omitempty"`
	YieldGross      *float64 `json:"yieldGross,omitempty"`
	Margin          *float64 `json:"margin,omitempty"`
	Findings        []string `json:"findings,omitempty"`
}

// Pack is the complete stress test result.
type Pack struct {
	Scenarios   []Scenario `json:"scenarios"`
	KeyFindings []string   `json:"keyFindings,omitempty"`
}

// Generator runs the stress scenarios against the scoring chain.
type Generator struct {
	scoring    *scoring.Service
	acceptance *acceptance.Model
	shifts     []Shift
	log        zerolog.Logger
}

// defaultShifts are the committee's standard adverse cases.
func defaultShifts() []Shift {
	return []Shift{
		{Key: "rate_up", Label: "Taux +150 bp", RateDeltaPct: 1.5},
		{Key: "vacancy_up", Label: "Vacance +10 pts", VacancyPts: 10},
		{Key: "cost_overrun", Label: "Dérive des coûts +15%", CostUpliftPct: 15},
	}
}

// NewGenerator creates a stress generator with the standard scenarios.
func NewGenerator(sc *scoring.Service, acc *acceptance.Model, log zerolog.Logger) *Generator {
	return &Generator{
		scoring:    sc,
		acceptance: acc,
		shifts:     defaultShifts(),
		log:        logger.ForComponent(log, "stress"),
	}
}

// Run evaluates every scenario against the already scored base case.
func (g *Generator) Run(base normalize.OperationSummary, baseSmart scoring.SmartScoreResult, baseAcceptance acceptance.Probability) Pack {
	pack := Pack{Scenarios: make([]Scenario, 0, len(g.shifts))}

	for _, shift := range g.shifts {
		shifted := ApplyShift(base, shift)
		smart := g.scoring.Score(shifted)
		prob := g.acceptance.Estimate(shifted, smart)

		sc := Scenario{
			Key:             shift.Key,
			Label:           shift.Label,
			Score:           smart.Score,
			ScoreDelta:      formulas.Round1(smart.Score - baseSmart.Score),
			Acceptance:      prob.Score,
			AcceptanceDelta: formulas.Round1(prob.Score - baseAcceptance.Score),
			DSCR:            shifted.KPIs.DSCR,
			YieldGross:      shifted.KPIs.YieldGross,
			Margin:          shifted.KPIs.Margin,
		}
		sc.Findings = findings(base, shifted, shift)
		pack.Scenarios = append(pack.Scenarios, sc)

		g.log.Debug().
			Str("scenario", shift.Key).
			Float64("score", sc.Score).
			Float64("delta", sc.ScoreDelta).
			Msg("stress scenario evaluated")
	}

	pack.KeyFindings = keyFindings(pack.Scenarios)
	return pack
}

// ApplyShift returns a deep-enough copy of the summary with the shift applied.
// KPIs touched by the shifted inputs are cleared and re-derived; ratios that
// cannot be recomputed keep their base value so the scenario stays comparable.
func ApplyShift(base normalize.OperationSummary, shift Shift) normalize.OperationSummary {
	op := base

	if shift.RateDeltaPct != 0 && op.Financing.InterestRate != nil {
		op.Financing.InterestRate = ptr(*op.Financing.InterestRate + shift.RateDeltaPct)
		op.KPIs.DSCR = nil
	}

	if shift.VacancyPts != 0 {
		occ := 100.0
		if op.Revenues.OccupancyRate != nil {
			occ = *op.Revenues.OccupancyRate
		}
		op.Revenues.OccupancyRate = ptr(formulas.Clamp(occ-shift.VacancyPts, 0, 100))
		op.KPIs.DSCR = nil
	}

	if shift.CostUpliftPct != 0 {
		factor := 1 + shift.CostUpliftPct/100
		if op.Budget.WorksBudget != nil {
			op.Budget.WorksBudget = ptr(*op.Budget.WorksBudget * factor)
		}
		if op.Budget.TotalCost != nil {
			op.Budget.TotalCost = ptr(*op.Budget.TotalCost * factor)
		}
		op.KPIs.LTC = nil
		op.KPIs.Margin = nil
		op.KPIs.ROI = nil
		op.KPIs.YieldGross = nil
		if op.Revenues.ExitValue == nil {
			// LTV was cost-based, it moves with the uplift.
			op.KPIs.LTV = nil
		}
	}

	op.KPIs = normalize.DeriveKPIs(op)
	restoreUnderivable(&op.KPIs, base.KPIs)
	return op
}

// restoreUnderivable keeps the base ratio when the shifted inputs were too
// sparse to recompute it.
func restoreUnderivable(shifted *normalize.KPIs, base normalize.KPIs) {
	if shifted.DSCR == nil {
		shifted.DSCR = base.DSCR
	}
	if shifted.LTV == nil {
		shifted.LTV = base.LTV
	}
	if shifted.LTC == nil {
		shifted.LTC = base.LTC
	}
	if shifted.Margin == nil {
		shifted.Margin = base.Margin
	}
	if shifted.ROI == nil {
		shifted.ROI = base.ROI
	}
	if shifted.YieldGross == nil {
		shifted.YieldGross = base.YieldGross
	}
}

// findings names the ratio crossings caused by the shift.
func findings(base, shifted normalize.OperationSummary, shift Shift) []string {
	var out []string
	if base.KPIs.DSCR != nil && shifted.KPIs.DSCR != nil {
		b, s := *base.KPIs.DSCR, *shifted.KPIs.DSCR
		if b >= 1.0 && s < 1.0 {
			out = append(out, fmt.Sprintf("Le DSCR passe sous 1.0 (%.2f) en scénario %s", s, shift.Label))
		} else if s < b {
			out = append(out, fmt.Sprintf("DSCR dégradé de %.2f à %.2f", b, s))
		}
	}
	if base.KPIs.Margin != nil && shifted.KPIs.Margin != nil {
		b, s := *base.KPIs.Margin, *shifted.KPIs.Margin
		if b >= 0 && s < 0 {
			out = append(out, fmt.Sprintf("La marge devient négative (%.1f%%)", s))
		}
	}
	if base.KPIs.LTV != nil && shifted.KPIs.LTV != nil && *shifted.KPIs.LTV > *base.KPIs.LTV {
		out = append(out, fmt.Sprintf("LTV portée à %.0f%%", *shifted.KPIs.LTV))
	}
	return out
}

// keyFindings summarizes the pack. The headline names the scenario with the
// worst acceptance outlook; score and acceptance can diverge when a shift
// hurts the financing facts more than the pillar aggregate.
func keyFindings(scenarios []Scenario) []string {
	if len(scenarios) == 0 {
		return nil
	}
	worst := scenarios[0]
	for _, sc := range scenarios[1:] {
		if sc.Acceptance < worst.Acceptance {
			worst = sc
		}
	}
	out := []string{fmt.Sprintf(
		"Scénario le plus pénalisant: %s (acceptation %.0f%%, score %+.1f pts)",
		worst.Label, worst.Acceptance, worst.ScoreDelta)}
	for _, sc := range scenarios {
		if sc.DSCR != nil && *sc.DSCR < 1.0 {
			out = append(out, fmt.Sprintf("Couverture de dette insuffisante en scénario %s", sc.Label))
			break
		}
	}
	return out
}

func ptr(v float64) *float64 { return &v }
