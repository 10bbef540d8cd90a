package decision

import (
	"fmt"
)

// balanced is the committee's default lens: a plain GO requires low leverage,
// a supportive market, comfortable coverage and a complete file, all at once.
func (b *Builder) balanced(facts Facts) Scenario {
	cfg := b.cfg
	favorable, unfavorable := prosAndCons(facts, cfg)

	s := Scenario{
		Key:         "balanced",
		Label:       "Lecture équilibrée",
		RiskReading: "Arbitrage risque/rendement standard du comité",
		Favorable:   favorable,
		Unfavorable: unfavorable,
	}

	ltvOK := facts.LTV != nil && *facts.LTV < cfg.BalancedLTVGo
	marketOK := facts.MarketScore != nil && *facts.MarketScore >= cfg.BalancedMarketMin
	dscrOK := facts.DSCR != nil && *facts.DSCR >= cfg.BalancedDSCRGo
	dscrBelowFloor := facts.DSCR != nil && *facts.DSCR < cfg.DSCRFloor

	switch {
	case ltvOK && marketOK && dscrOK && facts.Blockers == 0:
		s.Decision = DecisionGo
		s.Motivation = fmt.Sprintf(
			"Accord: LTV %.0f%% sous %.0f%%, marché à %.0f/100, DSCR %.2f et dossier sans donnée bloquante",
			*facts.LTV, cfg.BalancedLTVGo, *facts.MarketScore, *facts.DSCR)
		s.Conditions = buildConditions(facts, nil)

	case dscrBelowFloor && facts.Blockers >= 2:
		s.Decision = DecisionNoGo
		s.Motivation = fmt.Sprintf(
			"Refus: DSCR de %.2f sous %.2f cumulé à %d données bloquantes manquantes",
			*facts.DSCR, cfg.DSCRFloor, facts.Blockers)
		s.Conditions = buildConditions(facts, nil)

	default:
		s.Decision = DecisionGoConditions
		s.Motivation = balancedConditionalMotivation(facts, cfg, ltvOK, marketOK, dscrOK)
		s.Conditions = buildConditions(facts, balancedExtras(facts, cfg, ltvOK, dscrOK))
	}

	return s
}

func balancedConditionalMotivation(facts Facts, cfg Config, ltvOK, marketOK, dscrOK bool) string {
	switch {
	case facts.Blockers > 0:
		return fmt.Sprintf("Accord sous conditions: %d donnée(s) bloquante(s) à lever avant décaissement", facts.Blockers)
	case !ltvOK && facts.LTV != nil:
		return fmt.Sprintf("Accord sous conditions: LTV de %.0f%% au-dessus de la cible de %.0f%%", *facts.LTV, cfg.BalancedLTVGo)
	case !dscrOK && facts.DSCR != nil:
		return fmt.Sprintf("Accord sous conditions: DSCR de %.2f sous la cible de %.2f", *facts.DSCR, cfg.BalancedDSCRGo)
	case !marketOK && facts.MarketScore != nil:
		return fmt.Sprintf("Accord sous conditions: marché local à %.0f/100 sous le seuil de %.0f", *facts.MarketScore, cfg.BalancedMarketMin)
	default:
		return "Accord sous conditions: indicateurs clés incomplets, la lecture équilibrée exige un dossier chiffré"
	}
}

func balancedExtras(facts Facts, cfg Config, ltvOK, dscrOK bool) []string {
	var extras []string
	if !ltvOK && facts.LTV != nil {
		extras = append(extras, fmt.Sprintf("Ramener la LTV sous %.0f%%", cfg.BalancedLTVGo))
	}
	if !dscrOK && facts.DSCR != nil {
		extras = append(extras, fmt.Sprintf("Porter le DSCR au-dessus de %.2f (allongement de durée ou loyers sécurisés)", cfg.BalancedDSCRGo))
	}
	return extras
}
