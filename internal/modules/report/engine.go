// Package report assembles the full committee report: normalized summary,
// SmartScore, decision scenarios, acceptance estimate, risk/return matrix and
// stress pack, stamped with the engine version and the input content hash.
package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/internal/modules/acceptance"
	"github.com/avelin/comite/internal/modules/decision"
	"github.com/avelin/comite/internal/modules/matrix"
	"github.com/avelin/comite/internal/modules/normalize"
	"github.com/avelin/comite/internal/modules/scoring"
	"github.com/avelin/comite/internal/modules/stress"
	"github.com/avelin/comite/pkg/logger"
)

// EngineVersion is stamped on every report so stored reports can be told
// apart after a scoring change.
const EngineVersion = "1.4.0"

// Report is the complete evaluation of one dossier.
//
// GeneratedAt is persistence metadata stamped by the service layer; the
// engine leaves it zero so two evaluations of the same payload encode
// byte-identically and downstream caches can hash the report.
type Report struct {
	ID            string                    `json:"id"`
	DossierID     string                    `json:"dossierId,omitempty"`
	ContentHash   string                    `json:"contentHash"`
	EngineVersion string                    `json:"engineVersion"`
	GeneratedAt   time.Time                 `json:"generatedAt"`
	Summary       normalize.OperationSummary `json:"summary"`
	SmartScore    scoring.SmartScoreResult  `json:"smartScore"`
	Scenarios     []decision.Scenario       `json:"scenarios"`
	Acceptance    acceptance.Probability    `json:"acceptance"`
	Matrix        matrix.Matrix             `json:"matrix"`
	StressTests   stress.Pack               `json:"stressTests"`
}

// Engine runs the full evaluation chain.
type Engine struct {
	scoring    *scoring.Service
	decisions  *decision.Builder
	acceptance *acceptance.Model
	stress     *stress.Generator
	log        zerolog.Logger
}

// NewEngine wires the evaluation chain.
func NewEngine(sc *scoring.Service, dec *decision.Builder, acc *acceptance.Model, st *stress.Generator, log zerolog.Logger) *Engine {
	return &Engine{
		scoring:    sc,
		decisions:  dec,
		acceptance: acc,
		stress:     st,
		log:        logger.ForComponent(log, "report_engine"),
	}
}

// Evaluate runs the chain on a raw dossier payload. The report ID is left
// empty; persistence assigns it.
func (e *Engine) Evaluate(raw any) (Report, error) {
	hash, err := ContentHash(raw)
	if err != nil {
		return Report{}, fmt.Errorf("failed to hash dossier payload: %w", err)
	}

	op := normalize.Normalize(raw)
	smart := e.scoring.Score(op)
	prob := e.acceptance.Estimate(op, smart)

	rep := Report{
		ContentHash:   hash,
		EngineVersion: EngineVersion,
		Summary:       op,
		SmartScore:    smart,
		Scenarios:     e.decisions.BuildAll(op, smart),
		Acceptance:    prob,
		Matrix:        matrix.Classify(op, smart),
		StressTests:   e.stress.Run(op, smart, prob),
	}

	e.log.Info().
		Str("hash", hash).
		Float64("score", smart.Score).
		Str("grade", smart.Grade).
		Msg("dossier evaluated")

	return rep, nil
}

// ContentHash returns the SHA-256 of the canonical JSON encoding of the
// payload. Canonicalization round-trips through a generic value so map keys
// are emitted sorted; two payloads with the same content always hash equal.
func ContentHash(raw any) (string, error) {
	canonical, err := Canonicalize(raw)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// Canonicalize returns the key-sorted JSON encoding of the payload.
func Canonicalize(raw any) ([]byte, error) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("payload is not JSON-encodable: %w", err)
	}
	var generic any
	if err := json.Unmarshal(encoded, &generic); err != nil {
		return nil, fmt.Errorf("failed to decode payload for canonicalization: %w", err)
	}
	return json.Marshal(generic)
}
