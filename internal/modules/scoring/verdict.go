package scoring

import (
	"fmt"
	"strings"

	"github.com/avelin/comite/internal/modules/normalize"
)

// Grade maps an aggregate score to the committee letter grade.
func Grade(score float64, th Thresholds) string {
	switch {
	case score >= th.GradeAPlus:
		return "A+"
	case score >= th.GradeA:
		return "A"
	case score >= th.GradeB:
		return "B"
	case score >= th.GradeC:
		return "C"
	case score >= th.GradeDPlus:
		return "D+"
	case score >= th.GradeD:
		return "D"
	case score >= th.GradeE:
		return "E"
	default:
		return "F"
	}
}

// Verdict builds the qualitative verdict line: branch label, grade, and the
// names of pillars lacking data when any.
func Verdict(score float64, grade string, pillars []Pillar, insufficient bool, th Thresholds) string {
	if insufficient {
		return "Données insuffisantes: aucun pilier ne dispose d'éléments exploitables, analyse impossible en l'état"
	}

	var label string
	switch {
	case score >= th.VerdictGo:
		label = "Dossier favorable"
	case score >= th.VerdictReserved:
		label = "Avis réservé"
	default:
		label = "Dossier défavorable"
	}

	text := fmt.Sprintf("%s (note %s, score %.1f/100)", label, grade, score)

	if absent := pillarsWithoutData(pillars); len(absent) > 0 {
		text += fmt.Sprintf(" — piliers non documentés: %s", strings.Join(absent, ", "))
	}
	return text
}

// Recommendations lists concrete follow-ups: documenting absent pillars,
// curing blockers, then shoring up the weakest scored pillar.
func Recommendations(pillars []Pillar, missing []normalize.MissingDataItem) []string {
	var out []string

	for _, item := range missing {
		if item.Severity == normalize.SeverityBlocker {
			out = append(out, fmt.Sprintf("Compléter impérativement: %s", item.Label))
		}
	}
	if absent := pillarsWithoutData(pillars); len(absent) > 0 {
		out = append(out, fmt.Sprintf("Documenter les piliers manquants: %s", strings.Join(absent, ", ")))
	}

	// Weakest documented pillar, if clearly weak.
	worst := -1.0
	worstLabel := ""
	for _, p := range pillars {
		if p.HasData && (worst < 0 || p.RawScore < worst) {
			worst = p.RawScore
			worstLabel = p.Label
		}
	}
	if worst >= 0 && worst < 50 {
		out = append(out, fmt.Sprintf("Renforcer le pilier le plus faible: %s (%.0f/100)", worstLabel, worst))
	}
	return out
}

func pillarsWithoutData(pillars []Pillar) []string {
	var names []string
	for _, p := range pillars {
		if !p.HasData {
			names = append(names, p.Label)
		}
	}
	return names
}
