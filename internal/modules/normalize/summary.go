// Package normalize coerces arbitrary, partially filled dossier payloads into
// the canonical OperationSummary consumed by every scoring component.
//
// The normalizer never fails: unknown shapes, wrong types and missing keys all
// degrade to absent fields. Its core contract is that every numeric leaf of an
// OperationSummary is either a finite number or nil - never NaN and never a
// string masquerading as a number.
package normalize

// OperationSummary is the canonical, UI-agnostic view of one financing
// operation. All fields are optional; absence is encoded as nil pointers for
// numbers and empty strings for text.
type OperationSummary struct {
	Meta      Meta              `json:"meta"`
	Project   Project           `json:"project"`
	Budget    Budget            `json:"budget"`
	Financing Financing         `json:"financing"`
	Revenues  Revenues          `json:"revenues"`
	Market    Market            `json:"market"`
	Risks     Risks             `json:"risks"`
	KPIs      KPIs              `json:"kpis"`
	Missing   []MissingDataItem `json:"missing,omitempty"`
}

// Meta identifies the dossier and the borrower profile driving the
// missing-data taxonomy.
type Meta struct {
	Profile      string `json:"profile,omitempty"`
	DossierLabel string `json:"dossierLabel,omitempty"`
}

// Project describes the asset being financed.
type Project struct {
	Label         string   `json:"label,omitempty"`
	OperationType string   `json:"operationType,omitempty"`
	AssetType     string   `json:"assetType,omitempty"`
	Address       string   `json:"address,omitempty"`
	SurfaceM2     *float64 `json:"surfaceM2,omitempty"`
	Units         *float64 `json:"units,omitempty"`
}

// Budget holds the cost side of the operation.
type Budget struct {
	PurchasePrice *float64 `json:"purchasePrice,omitempty"`
	WorksBudget   *float64 `json:"worksBudget,omitempty"`
	TotalCost     *float64 `json:"totalCost,omitempty"`
	CostPerSqm    *float64 `json:"costPerSqm,omitempty"`
	NotaryFees    *float64 `json:"notaryFees,omitempty"`
}

// Financing holds the debt structure.
type Financing struct {
	LoanAmount        *float64 `json:"loanAmount,omitempty"`
	LoanDurationMonth *float64 `json:"loanDurationMonths,omitempty"`
	InterestRate      *float64 `json:"interestRate,omitempty"`
	Equity            *float64 `json:"equity,omitempty"`
}

// Revenues holds the income side: exit proceeds for resale strategies,
// rents for hold strategies, plus optional base/upside/stress projections.
type Revenues struct {
	Strategy      string    `json:"strategy,omitempty"`
	ExitValue     *float64  `json:"exitValue,omitempty"`
	RentAnnual    *float64  `json:"rentAnnual,omitempty"`
	OccupancyRate *float64  `json:"occupancyRate,omitempty"`
	Scenarios     Scenarios `json:"scenarios"`
}

// Scenarios are alternate revenue projections supplied by the analyst.
type Scenarios struct {
	Base   *float64 `json:"base,omitempty"`
	Upside *float64 `json:"upside,omitempty"`
	Stress *float64 `json:"stress,omitempty"`
}

// Market aggregates the local market study. Data may arrive from several
// sources (manual entry, comps service, INSEE extract) and is merged
// non-destructively: explicit values always win.
type Market struct {
	PricePerSqm        *float64  `json:"pricePerSqm,omitempty"`
	CompsCount         *float64  `json:"compsCount,omitempty"`
	CompsPrices        []float64 `json:"compsPrices,omitempty"`
	EvolutionPct       *float64  `json:"evolutionPct,omitempty"`
	PriceIndexSeries   []float64 `json:"priceIndexSeries,omitempty"`
	IndexLevelSmoothed *float64  `json:"indexLevelSmoothed,omitempty"`
	PopulationCommune  *float64  `json:"populationCommune,omitempty"`
	RevenueMedian      *float64  `json:"revenueMedian,omitempty"`
	TensionIndex       *float64  `json:"tensionIndex,omitempty"`
	Insights           []string  `json:"insights,omitempty"`
}

// RiskLevel grades an identified risk.
type RiskLevel string

const (
	RiskLow    RiskLevel = "faible"
	RiskMedium RiskLevel = "moyen"
	RiskHigh   RiskLevel = "fort"
)

// RiskItem is one identified geo or regulatory risk.
type RiskItem struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Level RiskLevel `json:"level"`
}

// Risks groups the identified risks of the operation.
type Risks struct {
	Geo []RiskItem `json:"geo,omitempty"`
}

// KPIs are the headline ratios. The normalizer derives missing ones from
// budget/financing/revenues when possible; explicit input values always win.
type KPIs struct {
	LTV        *float64 `json:"ltv,omitempty"`
	LTC        *float64 `json:"ltc,omitempty"`
	Margin     *float64 `json:"margin,omitempty"`
	ROI        *float64 `json:"roi,omitempty"`
	DSCR       *float64 `json:"dscr,omitempty"`
	YieldGross *float64 `json:"yieldGross,omitempty"`
}

// Severity classifies a missing data item.
type Severity string

const (
	SeverityBlocker Severity = "blocker"
	SeverityWarn    Severity = "warn"
	SeverityInfo    Severity = "info"
)

// MissingDataItem describes one absent-but-expected field.
type MissingDataItem struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Severity Severity `json:"severity"`
}
