package report

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(topic string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
}

func (p *recordingPublisher) seen(topic string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.topics {
		if t == topic {
			return true
		}
	}
	return false
}

func newTestService(t *testing.T) (*Service, *recordingPublisher) {
	t.Helper()
	pub := &recordingPublisher{}
	svc := NewService(
		newTestEngine(),
		NewRepository(newTestStore(t)),
		NewCache(newTestCacheStore(t), time.Hour),
		pub,
		zerolog.Nop(),
	)
	return svc, pub
}

func TestServiceEvaluateUsesCache(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	first, err := svc.Evaluate(ctx, samplePayload(t))
	require.NoError(t, err)
	assert.True(t, pub.seen("REPORT_GENERATED"))
	assert.False(t, first.GeneratedAt.IsZero(), "the service stamps the generation time")

	second, err := svc.Evaluate(ctx, samplePayload(t))
	require.NoError(t, err)

	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, first.GeneratedAt, second.GeneratedAt, "second call served from cache")
}

func TestServiceEvaluateDossierPersists(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	payload, err := json.Marshal(samplePayload(t))
	require.NoError(t, err)
	d, err := svc.CreateDossier(ctx, "Immeuble Carmes", "marchand", payload)
	require.NoError(t, err)
	assert.True(t, pub.seen("DOSSIER_CREATED"))

	rep, err := svc.EvaluateDossier(ctx, d.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, d.ID, rep.DossierID)
	assert.True(t, pub.seen("REPORT_PERSISTED"))

	latest, err := svc.Repo().LatestReport(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, rep.ID, latest.ID)
}

func TestServiceEvaluateDossierMissing(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.EvaluateDossier(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestServiceEvaluateDossierBadPayload(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// The repository accepts any payload string; a corrupt one must surface
	// as an evaluation error, not a panic.
	d, err := svc.Repo().CreateDossier(ctx, "broken", "", json.RawMessage(`{not json`))
	require.NoError(t, err)

	_, err = svc.EvaluateDossier(ctx, d.ID)
	assert.Error(t, err)
}

func TestServiceReevaluateAll(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	payload, err := json.Marshal(samplePayload(t))
	require.NoError(t, err)
	_, err = svc.CreateDossier(ctx, "a", "", payload)
	require.NoError(t, err)
	_, err = svc.CreateDossier(ctx, "b", "", payload)
	require.NoError(t, err)
	_, err = svc.Repo().CreateDossier(ctx, "broken", "", json.RawMessage(`{not json`))
	require.NoError(t, err)

	count, err := svc.ReevaluateAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "broken dossiers are skipped, not fatal")
}

func TestServiceDeleteDossierPublishes(t *testing.T) {
	svc, pub := newTestService(t)
	ctx := context.Background()

	d, err := svc.CreateDossier(ctx, "a", "", json.RawMessage(`{}`))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteDossier(ctx, d.ID))
	assert.True(t, pub.seen("DOSSIER_DELETED"))

	assert.ErrorIs(t, svc.DeleteDossier(ctx, d.ID), ErrNotFound)
}
