package report

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/avelin/comite/internal/database"
)

// ErrNotFound is returned when a dossier or report does not exist.
var ErrNotFound = errors.New("not found")

// Dossier is a stored raw payload with its identity.
type Dossier struct {
	ID        string          `json:"id"`
	Label     string          `json:"label,omitempty"`
	Profile   string          `json:"profile,omitempty"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Repository persists dossiers and their reports in the dossier store.
type Repository struct {
	db *database.DB
}

// NewRepository creates a repository over the dossier store.
func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// CreateDossier stores a new raw payload and returns it with its identity.
func (r *Repository) CreateDossier(ctx context.Context, label, profile string, payload json.RawMessage) (Dossier, error) {
	now := time.Now().UTC()
	d := Dossier{
		ID:        uuid.NewString(),
		Label:     label,
		Profile:   profile,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO dossiers (id, label, profile, payload, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.ID, d.Label, d.Profile, string(d.Payload),
		d.CreatedAt.Format(time.RFC3339Nano), d.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Dossier{}, fmt.Errorf("failed to create dossier: %w", err)
	}
	return d, nil
}

// UpdateDossier replaces the payload and metadata of an existing dossier.
func (r *Repository) UpdateDossier(ctx context.Context, id, label, profile string, payload json.RawMessage) (Dossier, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE dossiers SET label = ?, profile = ?, payload = ?, updated_at = ? WHERE id = ?`,
		label, profile, string(payload), now.Format(time.RFC3339Nano), id)
	if err != nil {
		return Dossier{}, fmt.Errorf("failed to update dossier %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return Dossier{}, ErrNotFound
	}
	return r.GetDossier(ctx, id)
}

// GetDossier loads one dossier by ID.
func (r *Repository) GetDossier(ctx context.Context, id string) (Dossier, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, label, profile, payload, created_at, updated_at FROM dossiers WHERE id = ?`, id)
	return scanDossier(row)
}

// ListDossiers returns all dossiers, most recently updated first.
func (r *Repository) ListDossiers(ctx context.Context) ([]Dossier, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, label, profile, payload, created_at, updated_at
		 FROM dossiers ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list dossiers: %w", err)
	}
	defer rows.Close()

	var out []Dossier
	for rows.Next() {
		d, err := scanDossier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDossier removes a dossier and, via the foreign key, its reports.
func (r *Repository) DeleteDossier(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM dossiers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dossier %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveReport stores an evaluated report, assigning its ID.
func (r *Repository) SaveReport(ctx context.Context, rep *Report) error {
	if rep.ID == "" {
		rep.ID = uuid.NewString()
	}
	if rep.GeneratedAt.IsZero() {
		rep.GeneratedAt = time.Now().UTC()
	}
	encoded, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO reports (id, dossier_id, content_hash, engine_version, score, verdict, report, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.DossierID, rep.ContentHash, rep.EngineVersion,
		rep.SmartScore.Score, rep.SmartScore.Verdict, string(encoded),
		rep.GeneratedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	return nil
}

// GetReport loads one report by ID.
func (r *Repository) GetReport(ctx context.Context, id string) (Report, error) {
	var encoded string
	err := r.db.QueryRowContext(ctx, `SELECT report FROM reports WHERE id = ?`, id).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to load report %s: %w", id, err)
	}
	return decodeReport(encoded)
}

// LatestReport loads the newest report of a dossier.
func (r *Repository) LatestReport(ctx context.Context, dossierID string) (Report, error) {
	var encoded string
	err := r.db.QueryRowContext(ctx,
		`SELECT report FROM reports WHERE dossier_id = ? ORDER BY created_at DESC LIMIT 1`,
		dossierID).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, fmt.Errorf("failed to load latest report for %s: %w", dossierID, err)
	}
	return decodeReport(encoded)
}

func decodeReport(encoded string) (Report, error) {
	var rep Report
	if err := json.Unmarshal([]byte(encoded), &rep); err != nil {
		return Report{}, fmt.Errorf("failed to decode stored report: %w", err)
	}
	return rep, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDossier(row rowScanner) (Dossier, error) {
	var d Dossier
	var payload, createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.Label, &d.Profile, &payload, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Dossier{}, ErrNotFound
	}
	if err != nil {
		return Dossier{}, fmt.Errorf("failed to scan dossier: %w", err)
	}
	d.Payload = json.RawMessage(payload)
	if t, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
		d.CreatedAt = t
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		d.UpdatedAt = t
	}
	return d, nil
}
