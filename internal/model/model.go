// Package model defines domain entities shared by the client, the services and the repositories.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Role is the capability class of an account.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleVendas Role = "vendas"
)

// ParseRole accepts the known roles case-insensitively; empty means vendas.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleVendas, "":
		return RoleVendas, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// IsAdmin reports whether the role grants the admin view.
func (r Role) IsAdmin() bool { return r == RoleAdmin }

// Session is the client's belief about authentication. A present token means
// "believed authenticated"; only the next authorized call can prove otherwise.
type Session struct {
	Token string
	Role  Role
}

// Authenticated reports whether a token is present.
func (s Session) Authenticated() bool { return s.Token != "" }

// Tokens is the credential-exchange result.
type Tokens struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	Role        Role      `json:"role,omitempty"`
	ExpiresAt   time.Time `json:"-"` // server side only, for diagnostics
}

// Insights is the sales summary extracted from a site.
type Insights struct {
	NomeEmpresa             string   `json:"nome_empresa"`
	PrincipalServicoProduto string   `json:"principal_servico_produto"`
	PublicoAlvo             string   `json:"publico_alvo"`
	PropostaDeValor         string   `json:"proposta_de_valor"`
	PontosDeVendaUSP        []string `json:"pontos_de_venda_usp"` // ordered, may repeat
	ResumoExecutivo         string   `json:"resumo_executivo"`
}

// AnalysisRequest is one submission of a URL.
type AnalysisRequest struct {
	URL         string    `json:"url"`
	RequestedAt time.Time `json:"-"`
}

// AnalysisResult is the outcome of an analysis, possibly served from the server cache.
type AnalysisResult struct {
	URL      string     `json:"url"`
	Insights Insights   `json:"insights"`
	IsCached bool       `json:"is_cached"`
	CachedAt *Timestamp `json:"cached_at,omitempty"`
}

// ErrCacheInvariant is returned when is_cached and cached_at disagree.
var ErrCacheInvariant = errors.New("is_cached=true requires cached_at")

// Normalize enforces is_cached ⇔ cached_at: a fresh result never carries cached_at,
// a cached one must.
func (r AnalysisResult) Normalize() (AnalysisResult, error) {
	if !r.IsCached {
		r.CachedAt = nil
		return r, nil
	}
	if r.CachedAt == nil || r.CachedAt.IsZero() {
		return AnalysisResult{}, ErrCacheInvariant
	}
	return r, nil
}

// PageSummary is the list projection of an analyzed URL.
type PageSummary struct {
	URL      string `json:"url"`
	IsCached bool   `json:"is_cached"`
}

// AdminStats aggregates cache usage.
type AdminStats struct {
	TotalAnalyses   int        `json:"total_analyses"`
	CacheHits       int        `json:"cache_hits"`
	CacheMisses     int        `json:"cache_misses"`
	UniqueURLs      int        `json:"unique_urls"`
	CacheEfficiency string     `json:"cache_efficiency"`
	LastAnalysis    *Timestamp `json:"last_analysis"`
	Timestamp       *Timestamp `json:"timestamp,omitempty"`
}

// FormatEfficiency renders hits/total as a percentage with one decimal.
func FormatEfficiency(hits, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(hits)*100/float64(total))
}

// Efficiency returns the server-provided percentage, computing it when absent.
func (s AdminStats) Efficiency() string {
	if s.CacheEfficiency != "" {
		return s.CacheEfficiency
	}
	return FormatEfficiency(s.CacheHits, s.TotalAnalyses)
}

// Consistent reports whether hits+misses adds up to the total. Not enforced.
func (s AdminStats) Consistent() bool {
	return s.CacheHits+s.CacheMisses == s.TotalAnalyses
}

// RecentAnalysis is one entry of the admin recent-analyses list.
type RecentAnalysis struct {
	Company      string    `json:"company"`
	URL          string    `json:"url"`
	CacheAgeDays int       `json:"cache_age_days"`
	AnalyzedAt   Timestamp `json:"analyzed_at"`
}

// User is an account as exposed by the user listing.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

// RegisterRequest creates an account.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
