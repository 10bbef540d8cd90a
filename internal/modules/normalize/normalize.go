package normalize

import (
	"github.com/avelin/comite/pkg/formulas"
)

// Normalize coerces a raw dossier payload (typically a freshly decoded JSON
// document) into the canonical OperationSummary. It never returns an error:
// whatever cannot be extracted stays absent.
//
// Field lookup follows an enumerated probing order per field - the upstream
// editors historically nested the same data under different keys, so each
// accessor lists its candidate paths explicitly.
func Normalize(raw any) OperationSummary {
	op := OperationSummary{}
	if raw == nil {
		return op
	}

	op.Meta = Meta{
		Profile:      firstString(raw, "", [][]string{{"meta", "profile"}, {"profile"}, {"meta", "profil"}}),
		DossierLabel: firstString(raw, "", [][]string{{"meta", "dossierLabel"}, {"meta", "label"}, {"dossier", "label"}, {"dossierLabel"}}),
	}

	op.Project = Project{
		Label:         firstString(raw, "", [][]string{{"project", "label"}, {"project", "name"}, {"operation", "label"}}),
		OperationType: firstString(raw, "", [][]string{{"project", "operationType"}, {"project", "type"}, {"operation", "type"}}),
		AssetType:     firstString(raw, "", [][]string{{"project", "assetType"}, {"project", "typologie"}, {"asset", "type"}}),
		Address:       firstString(raw, "", [][]string{{"project", "address"}, {"project", "adresse"}, {"localisation", "address"}}),
		SurfaceM2:     firstNumber(raw, [][]string{{"project", "surfaceM2"}, {"project", "surface"}, {"asset", "surface"}}),
		Units:         firstNumber(raw, [][]string{{"project", "units"}, {"project", "lots"}, {"asset", "units"}}),
	}

	op.Budget = Budget{
		PurchasePrice: firstNumber(raw, [][]string{{"budget", "purchasePrice"}, {"budget", "prixAchat"}, {"acquisition", "price"}}),
		WorksBudget:   firstNumber(raw, [][]string{{"budget", "worksBudget"}, {"budget", "travaux"}, {"works", "budget"}}),
		TotalCost:     firstNumber(raw, [][]string{{"budget", "totalCost"}, {"budget", "coutTotal"}, {"budget", "total"}}),
		CostPerSqm:    firstNumber(raw, [][]string{{"budget", "costPerSqm"}, {"budget", "prixM2"}}),
		NotaryFees:    firstNumber(raw, [][]string{{"budget", "notaryFees"}, {"budget", "fraisNotaire"}}),
	}

	op.Financing = Financing{
		LoanAmount:        firstNumber(raw, [][]string{{"financing", "loanAmount"}, {"financing", "montantPret"}, {"loan", "amount"}}),
		LoanDurationMonth: firstNumber(raw, [][]string{{"financing", "loanDurationMonths"}, {"financing", "dureeMois"}, {"loan", "durationMonths"}}),
		InterestRate:      firstNumber(raw, [][]string{{"financing", "interestRate"}, {"financing", "taux"}, {"loan", "rate"}}),
		Equity:            firstNumber(raw, [][]string{{"financing", "equity"}, {"financing", "apport"}}),
	}

	op.Revenues = Revenues{
		Strategy:      firstString(raw, "", [][]string{{"revenues", "strategy"}, {"revenues", "strategie"}, {"strategy"}}),
		ExitValue:     firstNumber(raw, [][]string{{"revenues", "exitValue"}, {"revenues", "prixRevente"}, {"exit", "value"}}),
		RentAnnual:    firstNumber(raw, [][]string{{"revenues", "rentAnnual"}, {"revenues", "loyerAnnuel"}, {"rent", "annual"}}),
		OccupancyRate: firstNumber(raw, [][]string{{"revenues", "occupancyRate"}, {"revenues", "tauxOccupation"}}),
		Scenarios: Scenarios{
			Base:   firstNumber(raw, [][]string{{"revenues", "scenarios", "base"}}),
			Upside: firstNumber(raw, [][]string{{"revenues", "scenarios", "upside"}, {"revenues", "scenarios", "haut"}}),
			Stress: firstNumber(raw, [][]string{{"revenues", "scenarios", "stress"}, {"revenues", "scenarios", "bas"}}),
		},
	}

	// Budget completion: totalCost and costPerSqm are derivable.
	if op.Budget.TotalCost == nil && op.Budget.PurchasePrice != nil {
		total := *op.Budget.PurchasePrice
		if op.Budget.WorksBudget != nil {
			total += *op.Budget.WorksBudget
		}
		if op.Budget.NotaryFees != nil {
			total += *op.Budget.NotaryFees
		}
		op.Budget.TotalCost = &total
	}
	if op.Budget.CostPerSqm == nil && op.Budget.TotalCost != nil &&
		op.Project.SurfaceM2 != nil && *op.Project.SurfaceM2 > 0 {
		v := *op.Budget.TotalCost / *op.Project.SurfaceM2
		op.Budget.CostPerSqm = &v
	}

	op.Market = extractMarket(raw)
	op.Risks = extractRisks(raw)
	op.Missing = extractDeclaredMissing(raw)
	op.KPIs = extractKPIs(raw, op)

	return op
}

// extractMarket merges every known location of market-study data.
// Explicit values win over merged-in values; sub-objects are merged
// key-by-key, never replaced wholesale.
func extractMarket(raw any) Market {
	m := Market{}
	for _, path := range [][]string{
		{"market"},
		{"marketStudy"},
		{"etudeMarche"},
		{"project", "market"},
		{"context", "market"},
	} {
		node := Dig(raw, path...)
		if node == nil {
			continue
		}
		mergeMarket(&m, node)
	}

	// Derived market figures, after every source had its chance to provide
	// an explicit value.
	if m.PricePerSqm == nil && len(m.CompsPrices) > 0 {
		m.PricePerSqm = formulas.Median(m.CompsPrices)
	}
	if m.IndexLevelSmoothed == nil && len(m.PriceIndexSeries) > 0 {
		m.IndexLevelSmoothed = formulas.SmoothedIndexLevel(m.PriceIndexSeries)
	}
	return m
}

// mergeMarket fills only the fields of dst that are still absent.
func mergeMarket(dst *Market, node any) {
	if dst.PricePerSqm == nil {
		dst.PricePerSqm = firstNumber(node, [][]string{{"pricePerSqm"}, {"prixM2"}, {"medianPricePerSqm"}})
	}
	if dst.CompsCount == nil {
		dst.CompsCount = firstNumber(node, [][]string{{"compsCount"}, {"comps"}, {"nbTransactions"}})
	}
	if len(dst.CompsPrices) == 0 {
		dst.CompsPrices = numberSlice(Dig(node, "compsPrices"))
	}
	if dst.EvolutionPct == nil {
		dst.EvolutionPct = firstNumber(node, [][]string{{"evolutionPct"}, {"evolution"}, {"trend"}})
	}
	if len(dst.PriceIndexSeries) == 0 {
		dst.PriceIndexSeries = numberSlice(Dig(node, "priceIndexSeries"))
	}
	if dst.PopulationCommune == nil {
		dst.PopulationCommune = firstNumber(node, [][]string{{"populationCommune"}, {"population"}, {"insee", "population"}})
	}
	if dst.RevenueMedian == nil {
		dst.RevenueMedian = firstNumber(node, [][]string{{"revenueMedian"}, {"revenuMedian"}, {"insee", "revenueMedian"}})
	}
	if dst.TensionIndex == nil {
		dst.TensionIndex = firstNumber(node, [][]string{{"tensionIndex"}, {"tension"}})
	}
	if len(dst.Insights) == 0 {
		if items, ok := Dig(node, "insights").([]any); ok {
			if len(items) > maxListLen {
				items = items[:maxListLen]
			}
			for _, item := range items {
				if s := SafeString(item, ""); s != "" {
					dst.Insights = append(dst.Insights, s)
				}
			}
		}
	}
}

// extractRisks normalizes the risks block. Two historical shapes exist: a
// list of risk items under risks.geo, or a flat object of synthetic flags
// (e.g. {"flood": true, "seismic": 3}).
func extractRisks(raw any) Risks {
	r := Risks{}
	node := Dig(raw, "risks", "geo")
	if node == nil {
		node = Dig(raw, "risks")
	}
	switch val := node.(type) {
	case []any:
		for _, item := range val {
			if ri, ok := riskItemFromAny(item); ok {
				r.Geo = append(r.Geo, ri)
			}
		}
	case map[string]any:
		for _, key := range sortedKeys(val) {
			if ri, ok := riskItemFromFlag(key, val[key]); ok {
				r.Geo = append(r.Geo, ri)
			}
		}
	}
	return r
}

func riskItemFromAny(item any) (RiskItem, bool) {
	m, ok := item.(map[string]any)
	if !ok {
		// A bare string is treated as a medium risk label.
		if s := SafeString(item, ""); s != "" {
			return RiskItem{Key: s, Label: s, Level: RiskMedium}, true
		}
		return RiskItem{}, false
	}
	ri := RiskItem{
		Key:   firstString(m, "", [][]string{{"key"}, {"code"}, {"id"}}),
		Label: firstString(m, "", [][]string{{"label"}, {"name"}, {"title"}}),
		Level: parseRiskLevel(Dig(m, "level")),
	}
	if ri.Key == "" {
		ri.Key = ri.Label
	}
	if ri.Label == "" {
		ri.Label = ri.Key
	}
	return ri, ri.Key != ""
}

func riskItemFromFlag(key string, flag any) (RiskItem, bool) {
	switch v := flag.(type) {
	case bool:
		if !v {
			return RiskItem{}, false
		}
		return RiskItem{Key: key, Label: key, Level: RiskMedium}, true
	default:
		if n := SafeNumber(flag); n != nil && *n > 0 {
			return RiskItem{Key: key, Label: key, Level: levelFromScale(*n)}, true
		}
		if s := SafeString(flag, ""); s != "" {
			return RiskItem{Key: key, Label: key, Level: parseRiskLevel(s)}, true
		}
	}
	return RiskItem{}, false
}

func parseRiskLevel(v any) RiskLevel {
	switch SafeString(v, "") {
	case "faible", "low", "1":
		return RiskLow
	case "fort", "high", "eleve", "élevé", "3":
		return RiskHigh
	default:
		return RiskMedium
	}
}

func levelFromScale(n float64) RiskLevel {
	switch {
	case n <= 1:
		return RiskLow
	case n >= 3:
		return RiskHigh
	default:
		return RiskMedium
	}
}

// extractDeclaredMissing collects missing-data items already flagged by the
// caller. Items without a recognizable severity default to warn.
func extractDeclaredMissing(raw any) []MissingDataItem {
	items, ok := Dig(raw, "missing").([]any)
	if !ok {
		return nil
	}
	var out []MissingDataItem
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		mi := MissingDataItem{
			Key:      firstString(m, "", [][]string{{"key"}, {"field"}, {"id"}}),
			Label:    firstString(m, "", [][]string{{"label"}, {"name"}}),
			Severity: parseSeverity(Dig(m, "severity")),
		}
		if mi.Key == "" && mi.Label == "" {
			// Severity-only items still count (committee notes often
			// flag "a blocker exists" without naming the field).
			mi.Key = "non_precise"
			mi.Label = "Donnée manquante non précisée"
		}
		if mi.Label == "" {
			mi.Label = mi.Key
		}
		if mi.Key == "" {
			mi.Key = mi.Label
		}
		out = append(out, mi)
	}
	return out
}

func parseSeverity(v any) Severity {
	switch SafeString(v, "") {
	case string(SeverityBlocker), "bloquant":
		return SeverityBlocker
	case string(SeverityInfo):
		return SeverityInfo
	default:
		return SeverityWarn
	}
}

// extractKPIs reads explicit KPI values then derives the rest from budget,
// financing and revenues. Explicit values always win over derived ones.
func extractKPIs(raw any, op OperationSummary) KPIs {
	op.KPIs = KPIs{
		LTV:        firstNumber(raw, [][]string{{"kpis", "ltv"}}),
		LTC:        firstNumber(raw, [][]string{{"kpis", "ltc"}}),
		Margin:     firstNumber(raw, [][]string{{"kpis", "margin"}, {"kpis", "marge"}}),
		ROI:        firstNumber(raw, [][]string{{"kpis", "roi"}}),
		DSCR:       firstNumber(raw, [][]string{{"kpis", "dscr"}}),
		YieldGross: firstNumber(raw, [][]string{{"kpis", "yieldGross"}, {"kpis", "rendementBrut"}}),
	}
	return DeriveKPIs(op)
}

// DeriveKPIs completes op.KPIs from budget, financing and revenues. Fields
// already set on op.KPIs are kept untouched; only nil fields are derived.
// Also used by the stress tester to recompute ratios after shifting inputs.
func DeriveKPIs(op OperationSummary) KPIs {
	k := op.KPIs

	loan := op.Financing.LoanAmount
	total := op.Budget.TotalCost

	if k.LTV == nil && loan != nil && op.Revenues.ExitValue != nil {
		k.LTV = formulas.LTV(*loan, *op.Revenues.ExitValue)
	}
	if k.LTV == nil && loan != nil && total != nil {
		// No exit value: cost stands in for value.
		k.LTV = formulas.LTV(*loan, *total)
	}
	if k.LTC == nil && loan != nil && total != nil {
		k.LTC = formulas.LTC(*loan, *total)
	}
	if k.Margin == nil && op.Revenues.ExitValue != nil && total != nil {
		k.Margin = formulas.Margin(*op.Revenues.ExitValue, *total)
	}
	if k.ROI == nil && op.Revenues.ExitValue != nil && total != nil {
		equity := 0.0
		if op.Financing.Equity != nil {
			equity = *op.Financing.Equity
		}
		k.ROI = formulas.ROI(*op.Revenues.ExitValue, *total, equity)
	}
	if k.YieldGross == nil && op.Revenues.RentAnnual != nil && total != nil {
		k.YieldGross = formulas.GrossYield(*op.Revenues.RentAnnual, *total)
	}
	if k.DSCR == nil && op.Revenues.RentAnnual != nil && loan != nil &&
		op.Financing.InterestRate != nil && op.Financing.LoanDurationMonth != nil {
		income := *op.Revenues.RentAnnual
		if op.Revenues.OccupancyRate != nil {
			income *= formulas.Clamp(*op.Revenues.OccupancyRate/100, 0, 1)
		}
		service := formulas.AnnualDebtService(*loan, *op.Financing.InterestRate, int(*op.Financing.LoanDurationMonth))
		k.DSCR = formulas.DSCR(income, service)
	}

	return k
}

// firstString probes each candidate path in order and returns the first
// extractable string.
func firstString(raw any, fallback string, paths [][]string) string {
	for _, path := range paths {
		if s := SafeString(Dig(raw, path...), ""); s != "" {
			return s
		}
	}
	return fallback
}

// firstNumber probes each candidate path in order and returns the first
// extractable finite number.
func firstNumber(raw any, paths [][]string) *float64 {
	for _, path := range paths {
		if n := SafeNumber(Dig(raw, path...)); n != nil {
			return n
		}
	}
	return nil
}

// maxListLen bounds input-controlled lists so a pathological payload cannot
// blow up scoring time.
const maxListLen = 512

func numberSlice(v any) []float64 {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	if len(items) > maxListLen {
		items = items[:maxListLen]
	}
	var out []float64
	for _, item := range items {
		if n := SafeNumber(item); n != nil {
			out = append(out, *n)
		}
	}
	return out
}
