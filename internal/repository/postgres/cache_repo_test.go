package postgres

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/require"
)

var cacheColumns = []string{"url_hash", "url", "insights", "created_at", "updated_at"}

func TestCacheRepo_Get(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCacheRepo(db)
	ctx := context.Background()
	now := time.Now()
	raw, _ := json.Marshal(model.Insights{NomeEmpresa: "Acme", PontosDeVendaUSP: []string{"a", "a"}})

	mock.ExpectQuery(`SELECT url_hash, url, insights, created_at, updated_at FROM cache_entries WHERE url_hash=\$1`).
		WithArgs("h1").
		WillReturnRows(pgxmock.NewRows(cacheColumns).AddRow("h1", "https://acme.io", raw, now, now))
	e, err := r.Get(ctx, "h1")
	require.NoError(t, err)
	require.Equal(t, "Acme", e.Insights.NomeEmpresa)
	require.Equal(t, []string{"a", "a"}, e.Insights.PontosDeVendaUSP)

	mock.ExpectQuery(`FROM cache_entries WHERE url_hash=\$1`).WithArgs("nope").WillReturnError(pgx.ErrNoRows)
	_, err = r.Get(ctx, "nope")
	require.ErrorIs(t, err, errs.ErrNotFound)

	mock.ExpectQuery(`FROM cache_entries WHERE url_hash=\$1`).
		WithArgs("bad").
		WillReturnRows(pgxmock.NewRows(cacheColumns).AddRow("bad", "https://x.io", []byte("{"), now, now))
	_, err = r.Get(ctx, "bad")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrNotFound)
}

func TestCacheRepo_Upsert(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCacheRepo(db)
	created := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	e := &model.CacheEntry{URLHash: "h1", URL: "https://acme.io", Insights: model.Insights{NomeEmpresa: "Acme"}, UpdatedAt: now}
	raw, _ := json.Marshal(e.Insights)

	mock.ExpectQuery(`INSERT INTO cache_entries .* ON CONFLICT \(url_hash\) DO UPDATE .* RETURNING created_at, updated_at`).
		WithArgs("h1", "https://acme.io", raw, now).
		WillReturnRows(pgxmock.NewRows([]string{"created_at", "updated_at"}).AddRow(created, now))
	require.NoError(t, r.Upsert(context.Background(), e))
	require.Equal(t, created, e.CreatedAt, "first insert time is kept")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepo_ListAndRecent(t *testing.T) {
	db, mock := newDB(t)
	defer mock.Close()
	r := NewCacheRepo(db)
	ctx := context.Background()
	now := time.Now()
	raw := []byte(`{"nome_empresa":"Acme"}`)

	mock.ExpectQuery(`FROM cache_entries ORDER BY updated_at DESC$`).
		WillReturnRows(pgxmock.NewRows(cacheColumns).
			AddRow("h2", "https://b.io", raw, now, now).
			AddRow("h1", "https://a.io", raw, now, now.Add(-time.Hour)))
	all, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "https://b.io", all[0].URL)

	mock.ExpectQuery(`FROM cache_entries ORDER BY updated_at DESC LIMIT \$1`).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(cacheColumns).AddRow("h2", "https://b.io", raw, now, now))
	recent, err := r.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
