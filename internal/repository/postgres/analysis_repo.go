package postgres

import (
	"context"
	"time"

	"github.com/and161185/sales-intel/internal/model"
)

// AnalysisRepo implements repository.AnalysisLog.
type AnalysisRepo struct{ db *DB }

// NewAnalysisRepo constructs the analysis log.
func NewAnalysisRepo(db *DB) *AnalysisRepo { return &AnalysisRepo{db: db} }

// Record appends one analysis request.
func (r *AnalysisRepo) Record(ctx context.Context, urlHash string, hit bool, at time.Time) error {
	const q = `INSERT INTO analyses (url_hash, cache_hit, analyzed_at) VALUES ($1, $2, $3)`
	_, err := r.db.Pool.Exec(ctx, q, urlHash, hit, at)
	return err
}

// Totals aggregates the whole log in one pass.
func (r *AnalysisRepo) Totals(ctx context.Context) (model.AnalysisTotals, error) {
	const q = `
SELECT count(*),
       count(*) FILTER (WHERE cache_hit),
       count(*) FILTER (WHERE NOT cache_hit),
       count(DISTINCT url_hash),
       max(analyzed_at)
FROM analyses`
	var t model.AnalysisTotals
	err := r.db.Pool.QueryRow(ctx, q).Scan(&t.Total, &t.Hits, &t.Misses, &t.UniqueURLs, &t.Last)
	return t, err
}
