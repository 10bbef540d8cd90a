// Package decision builds the three committee decision lenses. Each lens is
// an independent pure projection of the same facts under a different risk
// tolerance - not a refinement of the previous one.
package decision

import (
	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
)

// Decision is the lens outcome.
type Decision string

const (
	DecisionGo                 Decision = "GO"
	DecisionGoPatrimonial      Decision = "GO_PATRIMONIAL"
	DecisionGoConditions       Decision = "GO_SOUS_CONDITIONS"
	DecisionGoConditionsStrict Decision = "GO_SOUS_CONDITIONS_STRICT"
	DecisionNoGo               Decision = "NO_GO"
)

// Scenario is one decision lens output.
type Scenario struct {
	Key         string   `json:"key"`
	Label       string   `json:"label"`
	Decision    Decision `json:"decision"`
	RiskReading string   `json:"riskReading"`
	Favorable   []string `json:"favorable,omitempty"`
	Unfavorable []string `json:"unfavorable,omitempty"`
	Motivation  string   `json:"motivation"`
	Conditions  []string `json:"conditions,omitempty"`
}

// Facts gathers every input the lenses branch on, extracted once so all
// three read exactly the same numbers.
type Facts struct {
	Score       float64
	DSCR        *float64
	LTV         *float64
	MarketScore *float64 // location pillar raw score, when documented

	Blockers             int
	Warnings             []normalize.MissingDataItem
	BlockerItems         []normalize.MissingDataItem
	UndocumentedPillars  []string
	DealPillarDocumented bool
	GeoRiskLow           bool
	GeoRiskDocumented    bool
}

// Config holds the tunable lens thresholds (spec-level open question: these
// are configuration validated against the worked examples, not frozen
// business rules).
type Config struct {
	DSCRFloor            float64 `yaml:"dscr_floor"`             // below: income does not cover debt
	ConservativeLTVMax   float64 `yaml:"conservative_ltv_max"`   // above: strict conditions
	ConservativeScoreMin float64 `yaml:"conservative_score_min"` // below: conditional GO
	BalancedLTVGo        float64 `yaml:"balanced_ltv_go"`
	BalancedMarketMin    float64 `yaml:"balanced_market_min"`
	BalancedDSCRGo       float64 `yaml:"balanced_dscr_go"`
	OpportunisticLTVMax  float64 `yaml:"opportunistic_ltv_max"`
}

// DefaultConfig returns the compiled-in lens thresholds.
func DefaultConfig() Config {
	return Config{
		DSCRFloor:            1.0,
		ConservativeLTVMax:   60,
		ConservativeScoreMin: 70,
		BalancedLTVGo:        40,
		BalancedMarketMin:    60,
		BalancedDSCRGo:       1.2,
		OpportunisticLTVMax:  50,
	}
}

// ExtractFacts derives the lens facts from the scored operation.
func ExtractFacts(op normalize.OperationSummary, score scoring.SmartScoreResult) Facts {
	f := Facts{
		Score:             score.Score,
		DSCR:              op.KPIs.DSCR,
		LTV:               op.KPIs.LTV,
		GeoRiskDocumented: len(op.Risks.Geo) > 0,
	}
	if f.LTV == nil {
		f.LTV = op.KPIs.LTC // leverage proxy when no exit value exists
	}

	for _, p := range score.Pillars {
		if p.Key == scoring.PillarLocation && p.HasData {
			v := p.RawScore
			f.MarketScore = &v
		}
		if p.Key == scoring.PillarDealStructure {
			f.DealPillarDocumented = p.HasData
		}
		if !p.HasData {
			f.UndocumentedPillars = append(f.UndocumentedPillars, p.Label)
		}
	}

	for _, item := range score.Missing {
		switch item.Severity {
		case normalize.SeverityBlocker:
			f.Blockers++
			f.BlockerItems = append(f.BlockerItems, item)
		case normalize.SeverityWarn:
			f.Warnings = append(f.Warnings, item)
		}
	}

	f.GeoRiskLow = geoRiskIsLow(op.Risks)
	return f
}

func geoRiskIsLow(risks normalize.Risks) bool {
	if len(risks.Geo) == 0 {
		return false
	}
	medium := 0
	for _, item := range risks.Geo {
		switch item.Level {
		case normalize.RiskHigh:
			return false
		case normalize.RiskMedium:
			medium++
		}
	}
	return medium <= 1
}
