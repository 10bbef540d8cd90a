package report

import (
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelin/comite/internal/modules/acceptance"
	"github.com/avelin/comite/internal/modules/decision"
	"github.com/avelin/comite/internal/modules/scoring"
	"github.com/avelin/comite/internal/modules/stress"
)

func newTestEngine() *Engine {
	log := zerolog.Nop()
	sc := scoring.NewService(scoring.DefaultThresholds(), scoring.PillarSetFull, log)
	acc := acceptance.NewModel()
	return NewEngine(
		sc,
		decision.NewBuilder(decision.DefaultConfig(), log),
		acc,
		stress.NewGenerator(sc, acc, log),
		log,
	)
}

func samplePayload(t *testing.T) any {
	t.Helper()
	var raw any
	err := json.Unmarshal([]byte(`{
		"meta": {"profile": "marchand", "dossierLabel": "Immeuble Carmes"},
		"project": {"label": "Immeuble Carmes", "surfaceM2": 400},
		"budget": {"purchasePrice": 650000, "worksBudget": 150000},
		"financing": {"loanAmount": 600000, "interestRate": 3.2, "loanDurationMonths": 24},
		"revenues": {"strategy": "revente", "exitValue": 1050000},
		"market": {"pricePerSqm": 2600, "compsCount": 12},
		"risks": {"geo": [{"key": "flood", "label": "Inondation", "level": "faible"}]}
	}`), &raw)
	require.NoError(t, err)
	return raw
}

func TestEvaluateAssemblesFullReport(t *testing.T) {
	rep, err := newTestEngine().Evaluate(samplePayload(t))
	require.NoError(t, err)

	assert.Empty(t, rep.ID, "persistence assigns the ID")
	assert.Equal(t, EngineVersion, rep.EngineVersion)
	assert.NotEmpty(t, rep.ContentHash)
	assert.True(t, rep.GeneratedAt.IsZero(), "the service stamps the timestamp, not the engine")
	assert.Len(t, rep.Scenarios, 3)
	assert.Len(t, rep.StressTests.Scenarios, 3)
	assert.NotEmpty(t, rep.Summary.Project.Label)
	assert.False(t, rep.SmartScore.InsufficientData)
	assert.NotEmpty(t, rep.Matrix.Quadrant)
}

func TestEvaluateIsRepeatable(t *testing.T) {
	engine := newTestEngine()

	first, err := engine.Evaluate(samplePayload(t))
	require.NoError(t, err)
	second, err := engine.Evaluate(samplePayload(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)

	// Byte-identical serialization: callers hash the report to invalidate
	// downstream caches.
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestContentHashIgnoresKeyOrder(t *testing.T) {
	type payload struct {
		B int    `json:"b"`
		A string `json:"a"`
	}

	fromStruct, err := ContentHash(payload{B: 2, A: "x"})
	require.NoError(t, err)
	fromMap, err := ContentHash(map[string]any{"a": "x", "b": 2})
	require.NoError(t, err)

	assert.Equal(t, fromStruct, fromMap)
}

func TestContentHashDistinguishesContent(t *testing.T) {
	h1, err := ContentHash(map[string]any{"a": 1})
	require.NoError(t, err)
	h2, err := ContentHash(map[string]any{"a": 2})
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.Len(t, h1, 64, "hex-encoded SHA-256")
}

func TestCanonicalizeSortsKeys(t *testing.T) {
	out, err := Canonicalize(map[string]any{"z": 1, "a": 2, "m": 3})
	require.NoError(t, err)
	assert.Equal(t, `{"a":2,"m":3,"z":1}`, string(out))
}

func TestContentHashRejectsUnencodable(t *testing.T) {
	_, err := ContentHash(make(chan int))
	assert.Error(t, err)
}
