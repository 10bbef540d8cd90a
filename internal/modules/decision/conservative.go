package decision

import (
	"fmt"
	"strings"
)

// conservative is the strictest lens: blockers gate any GO outright, an
// uncovered debt service is eliminatory, and leverage above the conservative
// ceiling forces strict conditions.
func (b *Builder) conservative(facts Facts) Scenario {
	cfg := b.cfg
	favorable, unfavorable := prosAndCons(facts, cfg)

	s := Scenario{
		Key:         "conservative",
		Label:       "Lecture prudente",
		RiskReading: "Priorité à la protection du capital: toute zone d'ombre est traitée comme un risque avéré",
		Favorable:   favorable,
		Unfavorable: unfavorable,
	}

	dscrBelowFloor := facts.DSCR != nil && *facts.DSCR < cfg.DSCRFloor
	ltvTooHigh := facts.LTV != nil && *facts.LTV > cfg.ConservativeLTVMax

	switch {
	case dscrBelowFloor:
		s.Decision = DecisionNoGo
		s.Motivation = fmt.Sprintf(
			"Refus: DSCR de %.2f sous le plancher de %.2f, les revenus prévisionnels ne couvrent pas le service de la dette",
			*facts.DSCR, cfg.DSCRFloor)
		s.Conditions = buildConditions(facts, []string{
			fmt.Sprintf("Restructurer le financement pour ramener le DSCR au-dessus de %.2f", cfg.DSCRFloor),
		})

	case !facts.DealPillarDocumented && facts.Blockers >= 2:
		s.Decision = DecisionNoGo
		s.Motivation = fmt.Sprintf(
			"Refus: structure de financement non documentée et %d données bloquantes manquantes, aucune garantie appréciable",
			facts.Blockers)
		s.Conditions = buildConditions(facts, nil)

	case facts.Blockers > 0 || len(facts.UndocumentedPillars) > 0 || ltvTooHigh:
		s.Decision = DecisionGoConditionsStrict
		var causes []string
		var extras []string
		if facts.Blockers > 0 {
			causes = append(causes, fmt.Sprintf("%d donnée(s) bloquante(s)", facts.Blockers))
		}
		if len(facts.UndocumentedPillars) > 0 {
			causes = append(causes, fmt.Sprintf("piliers non documentés (%s)", strings.Join(facts.UndocumentedPillars, ", ")))
		}
		if ltvTooHigh {
			causes = append(causes, fmt.Sprintf("LTV de %.0f%% au-delà du plafond prudent de %.0f%%", *facts.LTV, cfg.ConservativeLTVMax))
			extras = append(extras, fmt.Sprintf("Ramener la LTV sous %.0f%%", cfg.ConservativeLTVMax))
		}
		s.Motivation = fmt.Sprintf("Accord sous conditions strictes: %s", strings.Join(causes, "; "))
		s.Conditions = buildConditions(facts, extras)

	case facts.Score < cfg.ConservativeScoreMin:
		s.Decision = DecisionGoConditions
		s.Motivation = fmt.Sprintf(
			"Accord sous conditions: score global de %.1f sous le seuil prudent de %.0f",
			facts.Score, cfg.ConservativeScoreMin)
		s.Conditions = buildConditions(facts, []string{
			"Fournir des garanties complémentaires (caution, GAPD ou nantissement)",
		})

	default:
		s.Decision = DecisionGo
		s.Motivation = fmt.Sprintf(
			"Accord: score de %.1f, dossier complet et levier contenu, aucun signal défavorable sous lecture prudente",
			facts.Score)
		s.Conditions = buildConditions(facts, nil)
	}

	return s
}
