package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeString(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		fallback string
		want     string
	}{
		{"plain string", "Immeuble rue Nationale", "-", "Immeuble rue Nationale"},
		{"trims whitespace", "  Lyon 7e  ", "-", "Lyon 7e"},
		{"empty string falls back", "", "n/a", "n/a"},
		{"object object artifact falls back", "[object Object]", "n/a", "n/a"},
		{"nan string falls back", "NaN", "n/a", "n/a"},
		{"nil falls back", nil, "inconnu", "inconnu"},
		{"integer number", float64(42), "-", "42"},
		{"decimal number", 7.25, "-", "7.25"},
		{"bool true", true, "-", "oui"},
		{"bool false", false, "-", "non"},
		{"array joined", []any{"PLU", "", "servitude"}, "-", "PLU, servitude"},
		{"array of blanks falls back", []any{"", "  "}, "vide", "vide"},
		{"object with name key", map[string]any{"name": "Inondation"}, "-", "Inondation"},
		{"object probes label before fallback", map[string]any{"label": "Argile", "zzz": "autre"}, "-", "Argile"},
		{"object falls back to first string value", map[string]any{"b": "deux", "a": "un"}, "-", "un"},
		{"object falls back to number", map[string]any{"x": 3.0}, "-", "3"},
		{"empty object falls back", map[string]any{}, "-", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SafeString(tt.input, tt.fallback))
		})
	}
}

func TestSafeNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  *float64
	}{
		{"plain number", 12.5, fp(12.5)},
		{"int", 7, fp(7)},
		{"nil", nil, nil},
		{"bool rejected", true, nil},
		{"simple string", "1250", fp(1250)},
		{"french thousands", "1 250 000", fp(1250000)},
		{"nbsp thousands", "250 000", fp(250000)},
		{"comma decimal", "7,2", fp(7.2)},
		{"euro suffix", "250 000 €", fp(250000)},
		{"percent suffix", "7,2 %", fp(7.2)},
		{"garbage string", "abc", nil},
		{"nan string", "NaN", nil},
		{"single element array unwrapped", []any{3.5}, fp(3.5)},
		{"multi element array rejected", []any{1.0, 2.0}, nil},
		{"object with value key", map[string]any{"value": 9.0}, fp(9)},
		{"object with count key", map[string]any{"count": "14"}, fp(14)},
		{"object falls back to first number", map[string]any{"b": 2.0, "a": 1.0}, fp(1)},
		{"empty object", map[string]any{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SafeNumber(tt.input)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestDig(t *testing.T) {
	payload := map[string]any{
		"project": map[string]any{
			"budget": map[string]any{
				"total": 500000.0,
			},
		},
		"label": "test",
	}

	assert.Equal(t, 500000.0, Dig(payload, "project", "budget", "total"))
	assert.Nil(t, Dig(payload, "project", "missing"))
	assert.Nil(t, Dig(payload, "label", "deeper"), "short-circuits through non-object")
	assert.Nil(t, Dig(nil, "anything"))
	assert.Equal(t, payload["project"], Dig(payload, "project"))
}

func fp(v float64) *float64 { return &v }
