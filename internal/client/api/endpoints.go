package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/and161185/sales-intel/internal/model"
)

// Login exchanges credentials for a token. An absent role means vendas.
func (c *Client) Login(ctx context.Context, username, password string) (model.Tokens, error) {
	const op = "login"
	if strings.TrimSpace(username) == "" || password == "" {
		return model.Tokens{}, invalid(op, "Informe usuário e senha")
	}
	var raw struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Role        string `json:"role"`
	}
	err := c.do(ctx, call{
		op: op, method: http.MethodPost, path: "/v1/auth/login",
		form: map[string]string{"username": username, "password": password},
	}, &raw)
	if err != nil {
		return model.Tokens{}, err
	}
	if raw.AccessToken == "" {
		return model.Tokens{}, malformed(op, http.StatusOK, "missing access_token")
	}
	role, rerr := model.ParseRole(raw.Role)
	if rerr != nil {
		return model.Tokens{}, malformed(op, http.StatusOK, "%v", rerr)
	}
	return model.Tokens{AccessToken: raw.AccessToken, TokenType: raw.TokenType, Role: role}, nil
}

// Register creates an account. Admin only on the backend side.
func (c *Client) Register(ctx context.Context, token string, req model.RegisterRequest) (model.User, error) {
	const op = "register"
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return model.User{}, invalid(op, "Informe usuário e senha")
	}
	role, err := model.ParseRole(string(req.Role))
	if err != nil {
		return model.User{}, invalid(op, "Perfil inválido")
	}
	req.Role = role

	var u model.User
	if err := c.do(ctx, call{op: op, method: http.MethodPost, path: "/v1/auth/register", token: token, body: req}, &u); err != nil {
		return model.User{}, err
	}
	return u, nil
}

// ListUsers returns every account.
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	const op = "list_users"
	var users []model.User
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/v1/auth/users", token: token}, &users); err != nil {
		return nil, err
	}
	if users == nil {
		return []model.User{}, nil
	}
	return users, nil
}

// ValidateURL is the fail-fast check applied before submission: an absolute
// http(s) URL with a host.
func ValidateURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", invalid("submit_analysis", "URL inválida: informe um endereço http(s) completo")
	}
	return s, nil
}

// SubmitAnalysis analyzes rawURL, possibly served from the backend cache.
func (c *Client) SubmitAnalysis(ctx context.Context, token, rawURL string) (model.AnalysisResult, error) {
	const op = "submit_analysis"
	u, err := ValidateURL(rawURL)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	var raw struct {
		URL      string           `json:"url"`
		Insights *model.Insights  `json:"insights"`
		IsCached *bool            `json:"is_cached"`
		CachedAt *model.Timestamp `json:"cached_at"`
	}
	if err := c.do(ctx, call{op: op, method: http.MethodPost, path: "/v1/scrape", token: token, body: map[string]string{"url": u}}, &raw); err != nil {
		return model.AnalysisResult{}, err
	}
	if raw.Insights == nil || raw.IsCached == nil {
		return model.AnalysisResult{}, malformed(op, http.StatusOK, "missing insights or is_cached")
	}
	if raw.URL == "" {
		raw.URL = u
	}
	res, nerr := model.AnalysisResult{URL: raw.URL, Insights: *raw.Insights, IsCached: *raw.IsCached, CachedAt: raw.CachedAt}.Normalize()
	if nerr != nil {
		return model.AnalysisResult{}, malformed(op, http.StatusOK, "%v", nerr)
	}
	return res, nil
}

// ListAnalyzedPages returns the vendas listing.
func (c *Client) ListAnalyzedPages(ctx context.Context, token string) ([]model.PageSummary, error) {
	const op = "list_pages"
	var raw struct {
		Pages *[]model.PageSummary `json:"pages"`
	}
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/v1/pages", token: token}, &raw); err != nil {
		return nil, err
	}
	if raw.Pages == nil {
		return nil, malformed(op, http.StatusOK, "missing pages")
	}
	if *raw.Pages == nil {
		return []model.PageSummary{}, nil
	}
	return *raw.Pages, nil
}

// FetchAdminStats returns cache usage totals.
func (c *Client) FetchAdminStats(ctx context.Context, token string) (model.AdminStats, error) {
	const op = "admin_stats"
	var raw struct {
		model.AdminStats
		TotalAnalyses *int `json:"total_analyses"`
	}
	if err := c.do(ctx, call{op: op, method: http.MethodGet, path: "/v1/admin/stats", token: token}, &raw); err != nil {
		return model.AdminStats{}, err
	}
	if raw.TotalAnalyses == nil {
		return model.AdminStats{}, malformed(op, http.StatusOK, "missing total_analyses")
	}
	st := raw.AdminStats
	st.TotalAnalyses = *raw.TotalAnalyses
	return st, nil
}

// FetchRecentAnalyses returns the most recent analyses. limit is a hint the
// backend clamps; limit <= 0 uses the backend default.
func (c *Client) FetchRecentAnalyses(ctx context.Context, token string, limit int) ([]model.RecentAnalysis, error) {
	const op = "recent_analyses"
	in := call{op: op, method: http.MethodGet, path: "/v1/admin/recent-analyses", token: token}
	if limit > 0 {
		in.query = map[string]string{"limit": strconv.Itoa(limit)}
	}
	var raw struct {
		Analyses *[]model.RecentAnalysis `json:"analyses"`
	}
	if err := c.do(ctx, in, &raw); err != nil {
		return nil, err
	}
	if raw.Analyses == nil {
		return nil, malformed(op, http.StatusOK, "missing analyses")
	}
	if *raw.Analyses == nil {
		return []model.RecentAnalysis{}, nil
	}
	return *raw.Analyses, nil
}

// Health pings the backend without a token.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, call{op: "health", method: http.MethodGet, path: "/health"}, nil)
}
