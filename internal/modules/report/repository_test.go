package report

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avelin/comite/internal/database"
	"github.com/avelin/comite/internal/modules/scoring"
)

func newTestStore(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.New(database.Config{
		Path:    filepath.Join(t.TempDir(), "dossiers.db"),
		Profile: database.ProfileDurable,
		Name:    "dossiers",
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestDossierLifecycle(t *testing.T) {
	repo := NewRepository(newTestStore(t))
	ctx := context.Background()

	payload := json.RawMessage(`{"budget": {"totalCost": 800000}}`)
	created, err := repo.CreateDossier(ctx, "Immeuble Carmes", "marchand", payload)
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Immeuble Carmes", created.Label)

	loaded, err := repo.GetDossier(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, loaded.ID)
	assert.JSONEq(t, string(payload), string(loaded.Payload))

	updated, err := repo.UpdateDossier(ctx, created.ID, "Carmes v2", "promotion", json.RawMessage(`{"budget": {}}`))
	require.NoError(t, err)
	assert.Equal(t, "Carmes v2", updated.Label)
	assert.Equal(t, "promotion", updated.Profile)

	list, err := repo.ListDossiers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, repo.DeleteDossier(ctx, created.ID))
	_, err = repo.GetDossier(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMissingDossier(t *testing.T) {
	repo := NewRepository(newTestStore(t))

	_, err := repo.UpdateDossier(context.Background(), "nope", "", "", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.DeleteDossier(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListDossiersOrderedByUpdate(t *testing.T) {
	repo := NewRepository(newTestStore(t))
	ctx := context.Background()

	first, err := repo.CreateDossier(ctx, "first", "", json.RawMessage(`{}`))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := repo.CreateDossier(ctx, "second", "", json.RawMessage(`{}`))
	require.NoError(t, err)

	list, err := repo.ListDossiers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)

	time.Sleep(5 * time.Millisecond)
	_, err = repo.UpdateDossier(ctx, first.ID, "first v2", "", json.RawMessage(`{}`))
	require.NoError(t, err)

	list, err = repo.ListDossiers(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, list[0].ID, "updating bumps the dossier to the top")
}

func TestSaveAndLoadReports(t *testing.T) {
	repo := NewRepository(newTestStore(t))
	ctx := context.Background()

	d, err := repo.CreateDossier(ctx, "dossier", "", json.RawMessage(`{}`))
	require.NoError(t, err)

	older := Report{
		DossierID:     d.ID,
		ContentHash:   "hash-1",
		EngineVersion: EngineVersion,
		GeneratedAt:   time.Now().UTC().Add(-time.Hour),
		SmartScore:    scoring.SmartScoreResult{Score: 61.5, Grade: "C", Verdict: "Avis réservé"},
	}
	require.NoError(t, repo.SaveReport(ctx, &older))
	assert.NotEmpty(t, older.ID)

	newer := Report{
		DossierID:     d.ID,
		ContentHash:   "hash-2",
		EngineVersion: EngineVersion,
		GeneratedAt:   time.Now().UTC(),
		SmartScore:    scoring.SmartScoreResult{Score: 72.0, Grade: "A", Verdict: "Dossier favorable"},
	}
	require.NoError(t, repo.SaveReport(ctx, &newer))

	byID, err := repo.GetReport(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "hash-1", byID.ContentHash)
	assert.Equal(t, 61.5, byID.SmartScore.Score)

	latest, err := repo.LatestReport(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID, latest.ID)

	_, err = repo.GetReport(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.LatestReport(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteDossierCascadesToReports(t *testing.T) {
	repo := NewRepository(newTestStore(t))
	ctx := context.Background()

	d, err := repo.CreateDossier(ctx, "dossier", "", json.RawMessage(`{}`))
	require.NoError(t, err)

	rep := Report{DossierID: d.ID, ContentHash: "h", EngineVersion: EngineVersion, GeneratedAt: time.Now().UTC()}
	require.NoError(t, repo.SaveReport(ctx, &rep))

	require.NoError(t, repo.DeleteDossier(ctx, d.ID))

	_, err = repo.GetReport(ctx, rep.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
