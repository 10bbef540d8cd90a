package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGradeLadder(t *testing.T) {
	th := DefaultThresholds()
	tests := []struct {
		score float64
		want  string
	}{
		{100, "A+"},
		{80, "A+"},
		{79.9, "A"},
		{72, "A"},
		{71.9, "B"},
		{65, "B"},
		{64.9, "C"},
		{50, "C"},
		{49.9, "D+"},
		{42, "D+"},
		{41.9, "D"},
		{35, "D"},
		{34.9, "E"},
		{20, "E"},
		{19.9, "F"},
		{0, "F"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Grade(tt.score, th), "score %.1f", tt.score)
	}
}

func TestVerdictBranches(t *testing.T) {
	th := DefaultThresholds()

	assert.Contains(t, Verdict(70, "A", nil, false, th), "Dossier favorable")
	assert.Contains(t, Verdict(65, "B", nil, false, th), "Dossier favorable")
	assert.Contains(t, Verdict(64.9, "C", nil, false, th), "Avis réservé")
	assert.Contains(t, Verdict(40, "D", nil, false, th), "Avis réservé")
	assert.Contains(t, Verdict(39.9, "D", nil, false, th), "Dossier défavorable")
	assert.Contains(t, Verdict(0, "F", nil, true, th), "Données insuffisantes")
}

func TestVerdictNamesUndocumentedPillars(t *testing.T) {
	pillars := []Pillar{
		{Key: PillarValue, Label: "Valeur", HasData: true, RawScore: 70},
		{Key: PillarLocation, Label: "Localisation", HasData: false},
		{Key: PillarRisk, Label: "Risques", HasData: false},
	}

	text := Verdict(68, "B", pillars, false, DefaultThresholds())

	assert.Contains(t, text, "Localisation")
	assert.Contains(t, text, "Risques")
	assert.Contains(t, text, "note B")
}
