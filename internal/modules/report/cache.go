package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/avelin/comite/internal/database"
)

// Cache memoizes evaluated reports by input content hash. Entries are stored
// msgpack-encoded in the cache store; the engine version is part of the
// decode check so a scoring change invalidates old entries.
type Cache struct {
	db  *database.DB
	ttl time.Duration
}

// NewCache creates a report cache with the given entry lifetime.
func NewCache(db *database.DB, ttl time.Duration) *Cache {
	return &Cache{db: db, ttl: ttl}
}

// Get returns the cached report for a content hash, or false when absent,
// expired or produced by another engine version.
func (c *Cache) Get(ctx context.Context, hash string) (Report, bool) {
	var payload []byte
	var createdAt string
	err := c.db.QueryRowContext(ctx,
		`SELECT payload, created_at FROM report_cache WHERE content_hash = ?`, hash).
		Scan(&payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) || err != nil {
		return Report{}, false
	}

	if t, err := time.Parse(time.RFC3339Nano, createdAt); err != nil || time.Since(t) > c.ttl {
		return Report{}, false
	}

	var rep Report
	if err := msgpack.Unmarshal(payload, &rep); err != nil {
		return Report{}, false
	}
	if rep.EngineVersion != EngineVersion {
		return Report{}, false
	}
	return rep, true
}

// Put stores an evaluated report under its content hash.
func (c *Cache) Put(ctx context.Context, rep Report) error {
	payload, err := msgpack.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report for cache: %w", err)
	}
	_, err = c.db.ExecContext(ctx,
		`INSERT INTO report_cache (content_hash, payload, created_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(content_hash) DO UPDATE SET payload = excluded.payload, created_at = excluded.created_at`,
		rep.ContentHash, payload, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

// Prune deletes expired cache entries, returning the number removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().Add(-c.ttl).Format(time.RFC3339Nano)
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM report_cache WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune report cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
