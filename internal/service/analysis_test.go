package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/and161185/sales-intel/internal/analyzer"
	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/and161185/sales-intel/internal/repository"
	"github.com/and161185/sales-intel/internal/scraper"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]model.CacheEntry
	getErr  error
}

var _ repository.CacheRepository = (*fakeCache)(nil)

func (f *fakeCache) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	e, ok := f.entries[key]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &e, nil
}

func (f *fakeCache) Upsert(_ context.Context, e *model.CacheEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.entries == nil {
		f.entries = map[string]model.CacheEntry{}
	}
	if old, ok := f.entries[e.URLHash]; ok {
		e.CreatedAt = old.CreatedAt
	} else {
		e.CreatedAt = e.UpdatedAt
	}
	f.entries[e.URLHash] = *e
	return nil
}

func (f *fakeCache) sorted() []model.CacheEntry {
	out := make([]model.CacheEntry, 0, len(f.entries))
	for _, e := range f.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (f *fakeCache) List(context.Context) ([]model.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(), nil
}

func (f *fakeCache) Recent(_ context.Context, limit int) ([]model.CacheEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.sorted()
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type logRow struct {
	key string
	hit bool
	at  time.Time
}

type fakeLog struct {
	mu   sync.Mutex
	rows []logRow
	err  error
}

var _ repository.AnalysisLog = (*fakeLog)(nil)

func (f *fakeLog) Record(_ context.Context, key string, hit bool, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rows = append(f.rows, logRow{key, hit, at})
	return nil
}

func (f *fakeLog) Totals(context.Context) (model.AnalysisTotals, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var t model.AnalysisTotals
	uniq := map[string]bool{}
	for _, r := range f.rows {
		t.Total++
		if r.hit {
			t.Hits++
		} else {
			t.Misses++
		}
		uniq[r.key] = true
		if t.Last == nil || r.at.After(*t.Last) {
			at := r.at
			t.Last = &at
		}
	}
	t.UniqueURLs = len(uniq)
	return t, nil
}

type fakeFetcher struct {
	calls int
	err   error
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (scraper.Page, error) {
	f.calls++
	if f.err != nil {
		return scraper.Page{}, f.err
	}
	return scraper.Page{URL: u, SiteName: "Acme", Title: "Acme | Robôs", ListItems: []string{"Rápido"}}, nil
}

type analysisFixture struct {
	svc   *AnalysisServiceImpl
	cache *fakeCache
	log   *fakeLog
	fetch *fakeFetcher
	now   time.Time
}

func newAnalysis(t *testing.T) *analysisFixture {
	t.Helper()
	f := &analysisFixture{
		cache: &fakeCache{},
		log:   &fakeLog{},
		fetch: &fakeFetcher{},
		now:   time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	f.svc = NewAnalysisService(f.cache, f.log, f.fetch, analyzer.Heuristic{}, 7*24*time.Hour, 50, zaptest.NewLogger(t))
	f.svc.now = func() time.Time { return f.now }
	return f
}

func TestAnalysis_MissThenHit(t *testing.T) {
	t.Parallel()
	f := newAnalysis(t)
	ctx := context.Background()

	first, err := f.svc.Analyze(ctx, "https://acme.io")
	require.NoError(t, err)
	require.False(t, first.IsCached)
	require.Nil(t, first.CachedAt)
	require.Equal(t, "Acme", first.Insights.NomeEmpresa)
	require.Equal(t, 1, f.fetch.calls)

	firstAt := f.now
	f.now = f.now.Add(time.Hour)
	second, err := f.svc.Analyze(ctx, "https://acme.io")
	require.NoError(t, err)
	require.True(t, second.IsCached)
	require.NotNil(t, second.CachedAt)
	require.True(t, second.CachedAt.Equal(firstAt))
	require.Equal(t, first.Insights, second.Insights)
	require.Equal(t, 1, f.fetch.calls, "hit must not scrape")

	require.Len(t, f.log.rows, 2)
	require.False(t, f.log.rows[0].hit)
	require.True(t, f.log.rows[1].hit)
	require.Equal(t, URLKey("https://acme.io"), f.log.rows[0].key)
}

func TestAnalysis_StaleEntryIsRescraped(t *testing.T) {
	t.Parallel()
	f := newAnalysis(t)
	ctx := context.Background()

	_, err := f.svc.Analyze(ctx, "https://acme.io")
	require.NoError(t, err)

	f.now = f.now.Add(8 * 24 * time.Hour)
	res, err := f.svc.Analyze(ctx, "https://acme.io")
	require.NoError(t, err)
	require.False(t, res.IsCached)
	require.Equal(t, 2, f.fetch.calls)
	require.True(t, f.cache.entries[URLKey("https://acme.io")].UpdatedAt.Equal(f.now))
}

func TestAnalysis_Errors(t *testing.T) {
	t.Parallel()
	f := newAnalysis(t)
	ctx := context.Background()

	for _, bad := range []string{"", "acme.io", "ftp://acme.io", "https://"} {
		_, err := f.svc.Analyze(ctx, bad)
		require.ErrorIs(t, err, errs.ErrInvalidInput, bad)
	}
	require.Zero(t, f.fetch.calls)

	f.fetch.err = errors.Join(scraper.ErrUnscrapable, errors.New("status 404"))
	_, err := f.svc.Analyze(ctx, "https://gone.io")
	var ie *InputError
	require.ErrorAs(t, err, &ie)
	require.Equal(t, "Não foi possível acessar o site informado", ie.Detail)

	f.fetch.err = nil
	f.cache.getErr = errors.New("db down")
	_, err = f.svc.Analyze(ctx, "https://acme.io")
	require.Error(t, err)
	require.NotErrorIs(t, err, errs.ErrInvalidInput)
	require.Empty(t, f.log.rows, "failed requests are not logged")
}

func TestAnalysis_LogFailureDoesNotFailRequest(t *testing.T) {
	t.Parallel()
	f := newAnalysis(t)
	f.log.err = errors.New("log down")

	res, err := f.svc.Analyze(context.Background(), "https://acme.io")
	require.NoError(t, err)
	require.Equal(t, "https://acme.io", res.URL)
}

func TestAnalysis_PagesStatsRecent(t *testing.T) {
	t.Parallel()
	f := newAnalysis(t)
	ctx := context.Background()

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Zero(t, stats.TotalAnalyses)
	require.Equal(t, "0.0%", stats.CacheEfficiency)
	require.Nil(t, stats.LastAnalysis)
	require.NotNil(t, stats.Timestamp)

	_, _ = f.svc.Analyze(ctx, "https://old.io")
	f.now = f.now.Add(9 * 24 * time.Hour)
	_, _ = f.svc.Analyze(ctx, "https://new.io")
	_, _ = f.svc.Analyze(ctx, "https://new.io")

	pages, err := f.svc.Pages(ctx)
	require.NoError(t, err)
	require.Equal(t, []model.PageSummary{
		{URL: "https://new.io", IsCached: true},
		{URL: "https://old.io", IsCached: false},
	}, pages)

	stats, err = f.svc.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalAnalyses)
	require.Equal(t, 1, stats.CacheHits)
	require.Equal(t, 2, stats.CacheMisses)
	require.Equal(t, 2, stats.UniqueURLs)
	require.Equal(t, "33.3%", stats.CacheEfficiency)
	require.True(t, stats.LastAnalysis.Equal(f.now))

	recent, err := f.svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "https://new.io", recent[0].URL)
	require.Equal(t, 0, recent[0].CacheAgeDays)
	require.Equal(t, 9, recent[1].CacheAgeDays)
	require.Equal(t, "Acme", recent[1].Company)

	recent, err = f.svc.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
}

func TestClampLimit(t *testing.T) {
	t.Parallel()

	require.Equal(t, DefaultRecentLimit, ClampLimit(0, 50))
	require.Equal(t, DefaultRecentLimit, ClampLimit(-3, 50))
	require.Equal(t, 50, ClampLimit(500, 50))
	require.Equal(t, 7, ClampLimit(7, 50))
	require.Equal(t, 1, ClampLimit(5, 0))
}
