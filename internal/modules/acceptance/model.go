// Package acceptance estimates the likelihood that the committee accepts the
// operation. The estimate is independent from the SmartScore: it aggregates
// signed driver contributions around a neutral baseline and keeps the ranked
// driver list for explainability.
package acceptance

import (
	"fmt"
	"math"
	"sort"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
)

// Driver is one signed contribution to the acceptance estimate. A positive
// impact pushes towards acceptance.
type Driver struct {
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Impact int    `json:"impact"`
}

// Probability is the acceptance estimate with its ranked drivers.
type Probability struct {
	Score   float64  `json:"score"`
	Drivers []Driver `json:"drivers"`
}

// Model computes acceptance probabilities.
type Model struct {
	topN int
}

const (
	baseline    = 50.0
	defaultTopN = 6
)

// NewModel creates an acceptance model keeping the default number of ranked
// drivers for presentation.
func NewModel() *Model {
	return &Model{topN: defaultTopN}
}

// Estimate computes the acceptance probability for a scored operation.
// Drivers are sorted by absolute impact descending (ties keep evaluation
// order) and truncated for presentation; the score always reflects every
// driver, displayed or not.
func (m *Model) Estimate(op normalize.OperationSummary, smart scoring.SmartScoreResult) Probability {
	var drivers []Driver

	if op.KPIs.DSCR != nil {
		dscr := *op.KPIs.DSCR
		var impact int
		switch {
		case dscr >= 1.5:
			impact = 15
		case dscr >= 1.2:
			impact = 10
		case dscr >= 1.0:
			impact = 3
		default:
			impact = -20
		}
		drivers = append(drivers, Driver{
			Label:  "Couverture de la dette",
			Detail: fmt.Sprintf("DSCR %.2f", dscr),
			Impact: impact,
		})
	}

	if ltv := leverage(op); ltv != nil {
		var impact int
		switch {
		case *ltv <= 40:
			impact = 12
		case *ltv <= 55:
			impact = 8
		case *ltv <= 70:
			impact = 0
		case *ltv <= 80:
			impact = -8
		default:
			impact = -15
		}
		if impact != 0 {
			drivers = append(drivers, Driver{
				Label:  "Niveau de levier",
				Detail: fmt.Sprintf("LTV %.0f%%", *ltv),
				Impact: impact,
			})
		}
	}

	for _, p := range smart.Pillars {
		if p.Key != scoring.PillarLocation || !p.HasData {
			continue
		}
		var impact int
		switch {
		case p.RawScore >= 70:
			impact = 10
		case p.RawScore >= 50:
			impact = 4
		case p.RawScore < 40:
			impact = -8
		}
		if impact != 0 {
			drivers = append(drivers, Driver{
				Label:  "Qualité du marché local",
				Detail: fmt.Sprintf("Score localisation %.0f/100", p.RawScore),
				Impact: impact,
			})
		}
	}

	drivers = append(drivers, geoDriver(op.Risks)...)
	drivers = append(drivers, documentationDrivers(smart)...)
	drivers = append(drivers, returnDrivers(op)...)

	total := baseline
	for _, d := range drivers {
		total += float64(d.Impact)
	}
	total = math.Max(0, math.Min(100, total))

	sort.SliceStable(drivers, func(i, j int) bool {
		return abs(drivers[i].Impact) > abs(drivers[j].Impact)
	})
	if len(drivers) > m.topN {
		drivers = drivers[:m.topN]
	}

	return Probability{Score: total, Drivers: drivers}
}

func geoDriver(risks normalize.Risks) []Driver {
	if len(risks.Geo) == 0 {
		return []Driver{{
			Label:  "Risques géographiques",
			Detail: "Exposition non étudiée",
			Impact: -4,
		}}
	}
	high, medium := 0, 0
	for _, item := range risks.Geo {
		switch item.Level {
		case normalize.RiskHigh:
			high++
		case normalize.RiskMedium:
			medium++
		}
	}
	switch {
	case high > 0:
		return []Driver{{
			Label:  "Risques géographiques",
			Detail: fmt.Sprintf("%d risque(s) de niveau fort", high),
			Impact: -12,
		}}
	case medium > 1:
		return []Driver{{
			Label:  "Risques géographiques",
			Detail: fmt.Sprintf("%d risques de niveau moyen", medium),
			Impact: -5,
		}}
	default:
		return []Driver{{
			Label:  "Risques géographiques",
			Detail: "Exposition faible",
			Impact: 6,
		}}
	}
}

func documentationDrivers(smart scoring.SmartScoreResult) []Driver {
	blockers := scoring.CountBlockers(smart.Missing)
	warns := 0
	for _, item := range smart.Missing {
		if item.Severity == normalize.SeverityWarn {
			warns++
		}
	}
	if blockers == 0 && warns == 0 {
		return []Driver{{
			Label:  "Complétude du dossier",
			Detail: "Dossier complet",
			Impact: 8,
		}}
	}
	impact := -10 * blockers
	if impact < -20 {
		impact = -20
	}
	warnImpact := -2 * warns
	if warnImpact < -6 {
		warnImpact = -6
	}
	return []Driver{{
		Label:  "Complétude du dossier",
		Detail: fmt.Sprintf("%d bloquant(s), %d alerte(s)", blockers, warns),
		Impact: impact + warnImpact,
	}}
}

func returnDrivers(op normalize.OperationSummary) []Driver {
	var out []Driver
	if op.KPIs.YieldGross != nil && *op.KPIs.YieldGross >= 7 {
		out = append(out, Driver{
			Label:  "Rendement locatif",
			Detail: fmt.Sprintf("Rendement brut %.1f%%", *op.KPIs.YieldGross),
			Impact: 8,
		})
	}
	if op.KPIs.Margin != nil {
		margin := *op.KPIs.Margin
		switch {
		case margin >= 15:
			out = append(out, Driver{
				Label:  "Marge de l'opération",
				Detail: fmt.Sprintf("Marge attendue %.1f%%", margin),
				Impact: 8,
			})
		case margin < 0:
			out = append(out, Driver{
				Label:  "Marge de l'opération",
				Detail: fmt.Sprintf("Marge négative %.1f%%", margin),
				Impact: -12,
			})
		}
	}
	return out
}

// leverage returns LTV, falling back to LTC when no exit value exists.
func leverage(op normalize.OperationSummary) *float64 {
	if op.KPIs.LTV != nil {
		return op.KPIs.LTV
	}
	return op.KPIs.LTC
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
