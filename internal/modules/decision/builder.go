package decision

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
	"github.com/avelin/comite/pkg/logger"
)

// Builder produces the three decision lenses for one scored operation.
type Builder struct {
	cfg Config
	log zerolog.Logger
}

// NewBuilder creates a scenario builder.
func NewBuilder(cfg Config, log zerolog.Logger) *Builder {
	return &Builder{
		cfg: cfg,
		log: logger.ForComponent(log, "decision"),
	}
}

// BuildAll evaluates the three lenses. They are always produced together,
// in a fixed order: conservative, balanced, opportunistic.
func (b *Builder) BuildAll(op normalize.OperationSummary, score scoring.SmartScoreResult) []Scenario {
	facts := ExtractFacts(op, score)
	out := []Scenario{
		b.conservative(facts),
		b.balanced(facts),
		b.opportunistic(facts),
	}
	b.log.Debug().
		Str("conservative", string(out[0].Decision)).
		Str("balanced", string(out[1].Decision)).
		Str("opportunistic", string(out[2].Decision)).
		Msg("Decision lenses built")
	return out
}

// buildConditions concatenates, in order: unmet blockers (distinctly
// prefixed), unmet warnings, then lens-specific extra conditions.
func buildConditions(facts Facts, extras []string) []string {
	var out []string
	for _, item := range facts.BlockerItems {
		out = append(out, fmt.Sprintf("[BLOQUANT] Compléter: %s", item.Label))
	}
	for _, item := range facts.Warnings {
		out = append(out, fmt.Sprintf("Compléter: %s", item.Label))
	}
	out = append(out, extras...)
	return out
}

// prosAndCons lists the factual points each lens displays. The same facts
// feed all three lenses; only the decision branching differs.
func prosAndCons(facts Facts, cfg Config) (favorable, unfavorable []string) {
	if facts.DSCR != nil {
		if *facts.DSCR >= cfg.BalancedDSCRGo {
			favorable = append(favorable, fmt.Sprintf("DSCR confortable à %.2f", *facts.DSCR))
		} else if *facts.DSCR < cfg.DSCRFloor {
			unfavorable = append(unfavorable, fmt.Sprintf("DSCR %.2f: les revenus ne couvrent pas la dette", *facts.DSCR))
		} else {
			favorable = append(favorable, fmt.Sprintf("DSCR positif à %.2f", *facts.DSCR))
		}
	}
	if facts.LTV != nil {
		if *facts.LTV <= cfg.OpportunisticLTVMax {
			favorable = append(favorable, fmt.Sprintf("Levier maîtrisé (LTV %.0f%%)", *facts.LTV))
		} else if *facts.LTV > cfg.ConservativeLTVMax {
			unfavorable = append(unfavorable, fmt.Sprintf("Levier élevé (LTV %.0f%%)", *facts.LTV))
		}
	}
	if facts.MarketScore != nil {
		if *facts.MarketScore >= cfg.BalancedMarketMin {
			favorable = append(favorable, fmt.Sprintf("Marché local porteur (score %.0f/100)", *facts.MarketScore))
		} else {
			unfavorable = append(unfavorable, fmt.Sprintf("Marché local fragile (score %.0f/100)", *facts.MarketScore))
		}
	}
	if facts.GeoRiskDocumented {
		if facts.GeoRiskLow {
			favorable = append(favorable, "Exposition aux risques géographiques limitée")
		} else {
			unfavorable = append(unfavorable, "Exposition significative aux risques géographiques")
		}
	}
	if facts.Blockers > 0 {
		unfavorable = append(unfavorable, fmt.Sprintf("%d donnée(s) bloquante(s) manquante(s)", facts.Blockers))
	}
	if len(facts.UndocumentedPillars) > 0 {
		unfavorable = append(unfavorable, fmt.Sprintf("%d pilier(s) non documenté(s)", len(facts.UndocumentedPillars)))
	}
	return favorable, unfavorable
}
