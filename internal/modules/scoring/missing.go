package scoring

import (
	"strings"

	"github.com/avelin/comite/internal/modules/normalize"
)

// requirement is one entry of the missing-data taxonomy: a field the
// committee expects to see, with the profiles it applies to (empty = all).
type requirement struct {
	key      string
	label    string
	severity normalize.Severity
	profiles []string
	present  func(op normalize.OperationSummary) bool
}

// The taxonomy is ordered: output follows this order so reports stay
// deterministic.
var requirements = []requirement{
	{
		key: "budget.totalCost", label: "Coût total de l'opération", severity: normalize.SeverityBlocker,
		present: func(op normalize.OperationSummary) bool { return op.Budget.TotalCost != nil },
	},
	{
		key: "financing.loanAmount", label: "Montant du financement demandé", severity: normalize.SeverityBlocker,
		present: func(op normalize.OperationSummary) bool { return op.Financing.LoanAmount != nil },
	},
	{
		key: "revenues.exitValue", label: "Prix de revente cible", severity: normalize.SeverityBlocker,
		profiles: []string{"marchand", "promotion"},
		present:  func(op normalize.OperationSummary) bool { return op.Revenues.ExitValue != nil },
	},
	{
		key: "revenues.rentAnnual", label: "Loyer annuel prévisionnel", severity: normalize.SeverityBlocker,
		profiles: []string{"investisseur", "locatif"},
		present:  func(op normalize.OperationSummary) bool { return op.Revenues.RentAnnual != nil },
	},
	{
		key: "financing.interestRate", label: "Taux d'intérêt", severity: normalize.SeverityWarn,
		present: func(op normalize.OperationSummary) bool { return op.Financing.InterestRate != nil },
	},
	{
		key: "financing.loanDurationMonths", label: "Durée du prêt", severity: normalize.SeverityWarn,
		present: func(op normalize.OperationSummary) bool { return op.Financing.LoanDurationMonth != nil },
	},
	{
		key: "project.surfaceM2", label: "Surface du bien", severity: normalize.SeverityWarn,
		present: func(op normalize.OperationSummary) bool { return op.Project.SurfaceM2 != nil },
	},
	{
		key: "market.pricePerSqm", label: "Prix médian du marché local", severity: normalize.SeverityWarn,
		present: func(op normalize.OperationSummary) bool { return op.Market.PricePerSqm != nil },
	},
	{
		key: "risks.geo", label: "Analyse des risques géographiques", severity: normalize.SeverityWarn,
		present: func(op normalize.OperationSummary) bool { return len(op.Risks.Geo) > 0 },
	},
	{
		key: "revenues.occupancyRate", label: "Taux d'occupation prévisionnel", severity: normalize.SeverityInfo,
		profiles: []string{"investisseur", "locatif"},
		present:  func(op normalize.OperationSummary) bool { return op.Revenues.OccupancyRate != nil },
	},
	{
		key: "financing.equity", label: "Apport en fonds propres", severity: normalize.SeverityInfo,
		present: func(op normalize.OperationSummary) bool { return op.Financing.Equity != nil },
	},
}

// ComputeMissing returns the missing-data items for an operation: items the
// caller already declared, followed by taxonomy detections not already
// declared. Deduplication is by key.
func ComputeMissing(op normalize.OperationSummary) []normalize.MissingDataItem {
	seen := make(map[string]bool, len(op.Missing))
	out := make([]normalize.MissingDataItem, 0, len(op.Missing))
	for _, item := range op.Missing {
		if seen[item.Key] {
			continue
		}
		seen[item.Key] = true
		out = append(out, item)
	}

	profile := effectiveProfile(op)
	for _, req := range requirements {
		if !appliesTo(req, profile) || req.present(op) || seen[req.key] {
			continue
		}
		seen[req.key] = true
		out = append(out, normalize.MissingDataItem{
			Key:      req.key,
			Label:    req.label,
			Severity: req.severity,
		})
	}
	return out
}

// TotalMissingPenalty sums per-item penalties, capped so missing data alone
// can never zero out an otherwise documented file.
func TotalMissingPenalty(items []normalize.MissingDataItem, th Thresholds) float64 {
	total := 0.0
	for _, item := range items {
		switch item.Severity {
		case normalize.SeverityBlocker:
			total += th.PenaltyBlocker
		case normalize.SeverityWarn:
			total += th.PenaltyWarn
		case normalize.SeverityInfo:
			total += th.PenaltyInfo
		}
	}
	if total > th.PenaltyCap {
		return th.PenaltyCap
	}
	return total
}

// CountBlockers returns how many blocker-severity items are present.
func CountBlockers(items []normalize.MissingDataItem) int {
	n := 0
	for _, item := range items {
		if item.Severity == normalize.SeverityBlocker {
			n++
		}
	}
	return n
}

// effectiveProfile resolves the borrower profile from meta, falling back to
// the revenue strategy.
func effectiveProfile(op normalize.OperationSummary) string {
	if op.Meta.Profile != "" {
		return strings.ToLower(op.Meta.Profile)
	}
	strategy := strings.ToLower(op.Revenues.Strategy)
	switch {
	case strings.Contains(strategy, "revente"), strings.Contains(strategy, "resale"), strings.Contains(strategy, "flip"):
		return "marchand"
	case strings.Contains(strategy, "locat"), strings.Contains(strategy, "rent"), strings.Contains(strategy, "hold"):
		return "investisseur"
	default:
		return ""
	}
}

func appliesTo(req requirement, profile string) bool {
	if len(req.profiles) == 0 {
		return true
	}
	// Profile-specific requirements are skipped when the profile is unknown:
	// without a strategy there is no basis to demand exit value over rent.
	for _, p := range req.profiles {
		if p == profile {
			return true
		}
	}
	return false
}
