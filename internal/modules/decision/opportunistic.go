package decision

import (
	"fmt"
	"strings"
)

// opportunistic is the most permissive lens: a patrimonial GO when leverage
// stays reasonable and the documented geo exposure is low, conditions
// otherwise - but never a silent pass, every concession is named.
func (b *Builder) opportunistic(facts Facts) Scenario {
	cfg := b.cfg
	favorable, unfavorable := prosAndCons(facts, cfg)

	s := Scenario{
		Key:         "opportunistic",
		Label:       "Lecture opportuniste",
		RiskReading: "Recherche de rendement: les inconnues sont tolérées si le levier et le risque physique restent contenus",
		Favorable:   favorable,
		Unfavorable: unfavorable,
	}

	ltvOK := facts.LTV != nil && *facts.LTV < cfg.OpportunisticLTVMax

	if ltvOK && facts.GeoRiskLow {
		s.Decision = DecisionGoPatrimonial
		s.Motivation = fmt.Sprintf(
			"Accord patrimonial: LTV de %.0f%% sous %.0f%% et exposition géographique faible, l'actif peut être porté long terme",
			*facts.LTV, cfg.OpportunisticLTVMax)
		s.Conditions = buildConditions(facts, nil)
		return s
	}

	var causes []string
	var extras []string
	if facts.LTV == nil {
		causes = append(causes, "levier inconnu (ni LTV ni LTC calculables)")
		extras = append(extras, "Documenter le plan de financement pour établir la LTV")
	} else if !ltvOK {
		causes = append(causes, fmt.Sprintf("LTV de %.0f%% au-dessus du plafond de %.0f%%", *facts.LTV, cfg.OpportunisticLTVMax))
		extras = append(extras, fmt.Sprintf("Ramener la LTV sous %.0f%%", cfg.OpportunisticLTVMax))
	}
	if !facts.GeoRiskLow {
		if facts.GeoRiskDocumented {
			causes = append(causes, "exposition géographique trop marquée")
			extras = append(extras, "Couvrir les risques identifiés (assurance, provisions travaux)")
		} else {
			causes = append(causes, "risques géographiques non étudiés")
			extras = append(extras, "Produire l'étude des risques (Géorisques, PPRI)")
		}
	}

	s.Decision = DecisionGoConditions
	s.Motivation = fmt.Sprintf("Accord sous conditions: %s", strings.Join(causes, "; "))
	s.Conditions = buildConditions(facts, extras)
	return s
}
