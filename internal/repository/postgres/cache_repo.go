package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/jackc/pgx/v5"
)

// CacheRepo implements repository.CacheRepository. Insights are stored as JSONB.
type CacheRepo struct{ db *DB }

// NewCacheRepo constructs a cache repository.
func NewCacheRepo(db *DB) *CacheRepo { return &CacheRepo{db: db} }

const cacheCols = `url_hash, url, insights, created_at, updated_at`

func scanEntry(row pgx.Row) (model.CacheEntry, error) {
	var (
		e   model.CacheEntry
		raw []byte
	)
	if err := row.Scan(&e.URLHash, &e.URL, &raw, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return model.CacheEntry{}, err
	}
	if err := json.Unmarshal(raw, &e.Insights); err != nil {
		return model.CacheEntry{}, fmt.Errorf("decode insights for %s: %w", e.URL, err)
	}
	return e, nil
}

// Get loads the entry for urlHash.
func (r *CacheRepo) Get(ctx context.Context, urlHash string) (*model.CacheEntry, error) {
	e, err := scanEntry(r.db.Pool.QueryRow(ctx, `SELECT `+cacheCols+` FROM cache_entries WHERE url_hash=$1`, urlHash))
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil, errs.ErrNotFound
	case err != nil:
		return nil, err
	}
	return &e, nil
}

// Upsert writes e with UpdatedAt as the refresh time; CreatedAt is kept on conflict.
func (r *CacheRepo) Upsert(ctx context.Context, e *model.CacheEntry) error {
	raw, err := json.Marshal(e.Insights)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cache_entries (url_hash, url, insights, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (url_hash) DO UPDATE
SET url = EXCLUDED.url, insights = EXCLUDED.insights, updated_at = EXCLUDED.updated_at
RETURNING created_at, updated_at`
	return r.db.Pool.QueryRow(ctx, q, e.URLHash, e.URL, raw, e.UpdatedAt).Scan(&e.CreatedAt, &e.UpdatedAt)
}

// List returns all entries, most recently updated first.
func (r *CacheRepo) List(ctx context.Context) ([]model.CacheEntry, error) {
	return r.query(ctx, `SELECT `+cacheCols+` FROM cache_entries ORDER BY updated_at DESC`)
}

// Recent returns at most limit entries, most recently updated first.
func (r *CacheRepo) Recent(ctx context.Context, limit int) ([]model.CacheEntry, error) {
	return r.query(ctx, `SELECT `+cacheCols+` FROM cache_entries ORDER BY updated_at DESC LIMIT $1`, limit)
}

func (r *CacheRepo) query(ctx context.Context, q string, args ...any) ([]model.CacheEntry, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.CacheEntry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
