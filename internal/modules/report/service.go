package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/avelin/comite/pkg/logger"
)

// Publisher receives evaluation lifecycle events.
type Publisher interface {
	Publish(topic string, payload any)
}

// Service ties the engine to persistence, the report cache and the event
// stream.
type Service struct {
	engine *Engine
	repo   *Repository
	cache  *Cache
	events Publisher
	log    zerolog.Logger
}

// NewService wires the report service. The cache and publisher may be nil.
func NewService(engine *Engine, repo *Repository, cache *Cache, events Publisher, log zerolog.Logger) *Service {
	return &Service{
		engine: engine,
		repo:   repo,
		cache:  cache,
		events: events,
		log:    logger.ForComponent(log, "report_service"),
	}
}

// Evaluate runs the engine on a raw payload, serving identical inputs from
// the cache. The report is not persisted; use EvaluateDossier for that.
func (s *Service) Evaluate(ctx context.Context, raw any) (Report, error) {
	hash, err := ContentHash(raw)
	if err != nil {
		return Report{}, err
	}

	if s.cache != nil {
		if rep, ok := s.cache.Get(ctx, hash); ok {
			s.log.Debug().Str("hash", hash).Msg("report served from cache")
			return rep, nil
		}
	}

	rep, err := s.engine.Evaluate(raw)
	if err != nil {
		return Report{}, err
	}
	// The engine output is timestamp-free; stamp here so cached copies keep
	// their original generation time.
	rep.GeneratedAt = time.Now().UTC()

	if s.cache != nil {
		if err := s.cache.Put(ctx, rep); err != nil {
			s.log.Warn().Err(err).Msg("failed to cache report")
		}
	}
	s.publish("REPORT_GENERATED", map[string]any{
		"contentHash": rep.ContentHash,
		"score":       rep.SmartScore.Score,
		"grade":       rep.SmartScore.Grade,
	})
	return rep, nil
}

// EvaluateDossier evaluates a stored dossier and persists the report.
func (s *Service) EvaluateDossier(ctx context.Context, dossierID string) (Report, error) {
	d, err := s.repo.GetDossier(ctx, dossierID)
	if err != nil {
		return Report{}, err
	}

	var raw any
	if err := json.Unmarshal(d.Payload, &raw); err != nil {
		return Report{}, fmt.Errorf("dossier %s payload is not valid JSON: %w", dossierID, err)
	}

	rep, err := s.Evaluate(ctx, raw)
	if err != nil {
		return Report{}, err
	}

	rep.DossierID = dossierID
	rep.ID = ""
	if err := s.repo.SaveReport(ctx, &rep); err != nil {
		return Report{}, err
	}
	s.publish("REPORT_PERSISTED", map[string]any{
		"reportId":  rep.ID,
		"dossierId": dossierID,
		"score":     rep.SmartScore.Score,
		"verdict":   rep.SmartScore.Verdict,
	})
	return rep, nil
}

// ReevaluateAll re-runs the engine over every stored dossier. Used by the
// scheduler after threshold or engine changes; errors on individual dossiers
// are logged and skipped.
func (s *Service) ReevaluateAll(ctx context.Context) (int, error) {
	dossiers, err := s.repo.ListDossiers(ctx)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, d := range dossiers {
		if ctx.Err() != nil {
			return count, ctx.Err()
		}
		if _, err := s.EvaluateDossier(ctx, d.ID); err != nil {
			s.log.Warn().Err(err).Str("dossier_id", d.ID).Msg("re-evaluation failed")
			continue
		}
		count++
	}

	s.log.Info().Int("dossiers", count).Msg("re-evaluation pass completed")
	return count, nil
}

// CreateDossier stores a new dossier and announces it.
func (s *Service) CreateDossier(ctx context.Context, label, profile string, payload json.RawMessage) (Dossier, error) {
	d, err := s.repo.CreateDossier(ctx, label, profile, payload)
	if err != nil {
		return Dossier{}, err
	}
	s.publish("DOSSIER_CREATED", map[string]any{"dossierId": d.ID, "label": d.Label})
	return d, nil
}

// UpdateDossier replaces a dossier's payload and announces it.
func (s *Service) UpdateDossier(ctx context.Context, id, label, profile string, payload json.RawMessage) (Dossier, error) {
	d, err := s.repo.UpdateDossier(ctx, id, label, profile, payload)
	if err != nil {
		return Dossier{}, err
	}
	s.publish("DOSSIER_UPDATED", map[string]any{"dossierId": d.ID, "label": d.Label})
	return d, nil
}

// DeleteDossier removes a dossier and announces it.
func (s *Service) DeleteDossier(ctx context.Context, id string) error {
	if err := s.repo.DeleteDossier(ctx, id); err != nil {
		return err
	}
	s.publish("DOSSIER_DELETED", map[string]any{"dossierId": id})
	return nil
}

// Repo exposes read-side dossier and report lookups to the HTTP layer.
func (s *Service) Repo() *Repository {
	return s.repo
}

func (s *Service) publish(topic string, payload any) {
	if s.events != nil {
		s.events.Publish(topic, payload)
	}
}
