// Package scoring computes the committee SmartScore: per-pillar raw scores,
// missing-data penalties and the aggregate grade/verdict.
package scoring

import (
	"github.com/avelin/comite/internal/modules/normalize"
)

// Pillar is one scored evaluation dimension of the operation.
type Pillar struct {
	Key       string   `json:"key"`
	Label     string   `json:"label"`
	Points    float64  `json:"points"`
	MaxPoints float64  `json:"maxPoints"`
	RawScore  float64  `json:"rawScore"`
	HasData   bool     `json:"hasData"`
	Reasons   []string `json:"reasons,omitempty"`
}

// SmartScoreResult is the aggregate scoring output. It is a value object:
// computed once per (OperationSummary, engine version) pair and never mutated.
type SmartScoreResult struct {
	Score               float64                     `json:"score"`
	Grade               string                      `json:"grade"`
	Verdict             string                      `json:"verdict"`
	Pillars             []Pillar                    `json:"pillars"`
	TotalMissingPenalty float64                     `json:"totalMissingPenalty"`
	Missing             []normalize.MissingDataItem `json:"missing,omitempty"`
	Recommendations     []string                    `json:"recommendations,omitempty"`
	InsufficientData    bool                        `json:"insufficientData"`
}

// PillarSet selects which pillars participate in the aggregate.
type PillarSet string

const (
	// PillarSetFull runs all seven committee pillars.
	PillarSetFull PillarSet = "full"
	// PillarSetMinimal runs the reduced set used by the quick-look view
	// (replaces the legacy standalone quick scorer).
	PillarSetMinimal PillarSet = "minimal"
)

// Pillar keys. Stable identifiers used by verdict text, recommendations and
// the decision lenses.
const (
	PillarValue         = "value"
	PillarLocation      = "location"
	PillarLiquidity     = "liquidity"
	PillarWorksRisk     = "worksRisk"
	PillarDealStructure = "dealStructure"
	PillarLegalUrbanism = "legalUrbanism"
	PillarRisk          = "risk"
)

// Point allocation per pillar. The full set sums to 100 so points double as
// weighted contributions; when a pillar has no data its weight is implicitly
// redistributed by renormalizing over present pillars.
var fullSetMaxPoints = map[string]float64{
	PillarValue:         20,
	PillarLocation:      20,
	PillarLiquidity:     10,
	PillarWorksRisk:     15,
	PillarDealStructure: 15,
	PillarLegalUrbanism: 10,
	PillarRisk:          10,
}

var minimalSetMaxPoints = map[string]float64{
	PillarValue:         40,
	PillarDealStructure: 40,
	PillarRisk:          20,
}

var pillarLabels = map[string]string{
	PillarValue:         "Valeur",
	PillarLocation:      "Localisation",
	PillarLiquidity:     "Liquidité",
	PillarWorksRisk:     "Risque travaux",
	PillarDealStructure: "Structure du deal",
	PillarLegalUrbanism: "Juridique & urbanisme",
	PillarRisk:          "Risques",
}

// pillarOrder fixes output ordering so identical input yields byte-identical
// reports.
var pillarOrder = []string{
	PillarValue,
	PillarLocation,
	PillarLiquidity,
	PillarWorksRisk,
	PillarDealStructure,
	PillarLegalUrbanism,
	PillarRisk,
}
