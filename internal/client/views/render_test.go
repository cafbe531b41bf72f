package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/and161185/sales-intel/internal/model"
	"github.com/stretchr/testify/require"
)

func TestRenderAnalysis(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	at := time.Date(2025, 3, 1, 13, 30, 0, 0, time.UTC)
	require.NoError(t, RenderAnalysis(&buf, model.AnalysisResult{
		URL:      "https://acme.io",
		IsCached: true,
		CachedAt: model.NewTimestamp(at),
		Insights: model.Insights{NomeEmpresa: "Acme", PontosDeVendaUSP: []string{"rápido", "barato"}},
	}))
	out := buf.String()
	require.Contains(t, out, "[Cache]")
	require.Contains(t, out, "01/03/2025 10:30:00")
	require.Contains(t, out, "Empresa: Acme")
	require.Contains(t, out, "  • rápido\n  • barato\n")
	require.Contains(t, out, "Público-alvo: -")

	buf.Reset()
	require.NoError(t, RenderAnalysis(&buf, model.AnalysisResult{URL: "https://new.io"}))
	require.Contains(t, buf.String(), "[Nova Análise]")
	require.NotContains(t, buf.String(), "Analisado em")
}

func TestRenderStats(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderStats(&buf, model.AdminStats{TotalAnalyses: 10, CacheHits: 7, CacheMisses: 3}))
	require.Contains(t, buf.String(), "70.0%")
	require.Contains(t, buf.String(), "Última análise")
}

func TestRenderLists(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, RenderPages(&buf, nil))
	require.Equal(t, "Nenhuma página analisada ainda\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderRecent(&buf, []model.RecentAnalysis{{Company: "Acme", URL: "https://acme.io", CacheAgeDays: 1}}))
	require.Contains(t, buf.String(), "1 dia")

	buf.Reset()
	require.NoError(t, RenderUsers(&buf, []model.User{{ID: "1", Username: "admin", Role: model.RoleAdmin}}))
	require.Contains(t, buf.String(), "admin")
}
