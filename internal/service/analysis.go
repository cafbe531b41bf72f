package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/and161185/sales-intel/internal/analyzer"
	"github.com/and161185/sales-intel/internal/errs"
	"github.com/and161185/sales-intel/internal/model"
	"github.com/and161185/sales-intel/internal/repository"
	"github.com/and161185/sales-intel/internal/scraper"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// DefaultRecentLimit is used when the caller asks for no particular size.
const DefaultRecentLimit = 10

// AnalysisService defines site analysis and its admin views.
type AnalysisService interface {
	// Analyze returns the cached insights for url while fresh, or scrapes and analyzes it.
	Analyze(ctx context.Context, rawURL string) (model.AnalysisResult, error)
	// Pages lists every analyzed URL.
	Pages(ctx context.Context) ([]model.PageSummary, error)
	// Stats aggregates the analysis log.
	Stats(ctx context.Context) (model.AdminStats, error)
	// Recent lists the most recently analyzed URLs; limit is clamped.
	Recent(ctx context.Context, limit int) ([]model.RecentAnalysis, error)
}

var analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "salesintel",
	Subsystem: "server",
	Name:      "analyses_total",
	Help:      "Analysis requests by cache outcome.",
}, []string{"cache"})

var scrapeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "salesintel",
	Subsystem: "server",
	Name:      "scrape_duration_seconds",
	Help:      "Time spent fetching and analyzing a page on a cache miss.",
	Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
})

type AnalysisServiceImpl struct {
	cache    repository.CacheRepository
	log      repository.AnalysisLog
	fetch    scraper.Fetcher
	analyze  analyzer.Analyzer
	ttl      time.Duration
	maxLimit int
	logger   *zap.Logger
	now      func() time.Time
}

// NewAnalysisService wires the cache, the analysis log and the scraping pipeline.
func NewAnalysisService(cache repository.CacheRepository, alog repository.AnalysisLog, fetch scraper.Fetcher,
	an analyzer.Analyzer, ttl time.Duration, maxLimit int, logger *zap.Logger) *AnalysisServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisServiceImpl{
		cache: cache, log: alog, fetch: fetch, analyze: an,
		ttl: ttl, maxLimit: maxLimit, logger: logger, now: time.Now,
	}
}

// URLKey is the cache key of a URL.
func URLKey(u string) string {
	sum := sha256.Sum256([]byte(u))
	return hex.EncodeToString(sum[:])
}

func validURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalid("URL inválida: informe um endereço http(s) completo")
	}
	return raw, nil
}

// Analyze serves a fresh cache entry as a hit; anything else is a miss that
// scrapes, analyzes and refreshes the entry. Both outcomes are logged.
func (s *AnalysisServiceImpl) Analyze(ctx context.Context, rawURL string) (model.AnalysisResult, error) {
	u, err := validURL(rawURL)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	key := URLKey(u)
	now := s.now()

	e, err := s.cache.Get(ctx, key)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return model.AnalysisResult{}, err
	}
	if e != nil && e.FreshAt(now, s.ttl) {
		s.record(ctx, key, true, now)
		return model.AnalysisResult{
			URL:      u,
			Insights: e.Insights,
			IsCached: true,
			CachedAt: model.NewTimestamp(e.UpdatedAt),
		}, nil
	}

	start := time.Now()
	page, err := s.fetch.Fetch(ctx, u)
	if err != nil {
		s.logger.Info("scrape failed", zap.String("url", u), zap.Error(err))
		if errors.Is(err, scraper.ErrUnscrapable) {
			return model.AnalysisResult{}, invalid("Não foi possível acessar o site informado")
		}
		return model.AnalysisResult{}, err
	}
	ins, err := s.analyze.Analyze(ctx, page)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	if ins.PontosDeVendaUSP == nil {
		ins.PontosDeVendaUSP = []string{}
	}
	scrapeDuration.Observe(time.Since(start).Seconds())

	entry := &model.CacheEntry{URLHash: key, URL: u, Insights: ins, UpdatedAt: now}
	if err := s.cache.Upsert(ctx, entry); err != nil {
		return model.AnalysisResult{}, err
	}
	s.record(ctx, key, false, now)
	return model.AnalysisResult{URL: u, Insights: ins}, nil
}

// record writes the analysis log; a failure only loses a statistic.
func (s *AnalysisServiceImpl) record(ctx context.Context, key string, hit bool, at time.Time) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	analysesTotal.WithLabelValues(outcome).Inc()
	if err := s.log.Record(ctx, key, hit, at); err != nil {
		s.logger.Warn("analysis log write failed", zap.Error(err))
	}
}

// Pages returns one summary per cached URL; is_cached tells whether the entry is still fresh.
func (s *AnalysisServiceImpl) Pages(ctx context.Context) ([]model.PageSummary, error) {
	entries, err := s.cache.List(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.PageSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.PageSummary{URL: e.URL, IsCached: e.FreshAt(now, s.ttl)})
	}
	return out, nil
}

// Stats summarizes the analysis log.
func (s *AnalysisServiceImpl) Stats(ctx context.Context) (model.AdminStats, error) {
	t, err := s.log.Totals(ctx)
	if err != nil {
		return model.AdminStats{}, err
	}
	st := model.AdminStats{
		TotalAnalyses:   t.Total,
		CacheHits:       t.Hits,
		CacheMisses:     t.Misses,
		UniqueURLs:      t.UniqueURLs,
		CacheEfficiency: model.FormatEfficiency(t.Hits, t.Total),
		Timestamp:       model.NewTimestamp(s.now()),
	}
	if t.Last != nil {
		st.LastAnalysis = model.NewTimestamp(*t.Last)
	}
	return st, nil
}

// ClampLimit bounds a requested list size to [1, upper]; zero or less selects the default.
func ClampLimit(limit, upper int) int {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > upper {
		limit = upper
	}
	if limit < 1 {
		limit = 1
	}
	return limit
}

// Recent returns the latest cache entries with their age in whole days.
func (s *AnalysisServiceImpl) Recent(ctx context.Context, limit int) ([]model.RecentAnalysis, error) {
	entries, err := s.cache.Recent(ctx, ClampLimit(limit, s.maxLimit))
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.RecentAnalysis, 0, len(entries))
	for _, e := range entries {
		age := int(now.Sub(e.UpdatedAt) / (24 * time.Hour))
		if age < 0 {
			age = 0
		}
		out = append(out, model.RecentAnalysis{
			Company:      e.Insights.NomeEmpresa,
			URL:          e.URL,
			CacheAgeDays: age,
			AnalyzedAt:   model.Timestamp{Time: e.UpdatedAt},
		})
	}
	return out, nil
}
