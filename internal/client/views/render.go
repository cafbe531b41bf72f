package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/and161185/sales-intel/internal/model"
)

// DateLayout is the pt-BR date format used on every screen.
const DateLayout = "02/01/2006 15:04:05"

// DisplayZone is where timestamps are shown (Brasília time).
var DisplayZone = model.NaiveZone

// FormatTime renders t for display; the zero time renders as "-".
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.In(DisplayZone).Format(DateLayout)
}

// Badge is the cache status label.
func Badge(cached bool) string {
	if cached {
		return "Cache"
	}
	return "Nova Análise"
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// RenderAnalysis prints one analysis result.
func RenderAnalysis(w io.Writer, r model.AnalysisResult) error {
	ew := &errWriter{w: w}
	ew.printf("%s  [%s]\n", r.URL, Badge(r.IsCached))
	if r.IsCached && r.CachedAt != nil {
		ew.printf("Analisado em: %s\n", FormatTime(r.CachedAt.Time))
	}
	in := r.Insights
	ew.printf("\nEmpresa: %s\n", orDash(in.NomeEmpresa))
	ew.printf("Principal serviço/produto: %s\n", orDash(in.PrincipalServicoProduto))
	ew.printf("Público-alvo: %s\n", orDash(in.PublicoAlvo))
	ew.printf("Proposta de valor: %s\n", orDash(in.PropostaDeValor))
	ew.printf("Pontos de venda:\n")
	if len(in.PontosDeVendaUSP) == 0 {
		ew.printf("  -\n")
	}
	for _, p := range in.PontosDeVendaUSP {
		ew.printf("  • %s\n", p)
	}
	ew.printf("\nResumo executivo:\n%s\n", orDash(in.ResumoExecutivo))
	return ew.err
}

// RenderPages prints the analyzed pages list.
func RenderPages(w io.Writer, pages []model.PageSummary) error {
	if len(pages) == 0 {
		_, err := fmt.Fprintln(w, "Nenhuma página analisada ainda")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "URL\tSTATUS")
	for _, p := range pages {
		fmt.Fprintf(tw, "%s\t%s\n", p.URL, Badge(p.IsCached))
	}
	return tw.Flush()
}

// RenderStats prints the cache totals.
func RenderStats(w io.Writer, s model.AdminStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total de análises\t%d\n", s.TotalAnalyses)
	fmt.Fprintf(tw, "Cache hits\t%d\n", s.CacheHits)
	fmt.Fprintf(tw, "Cache misses\t%d\n", s.CacheMisses)
	fmt.Fprintf(tw, "URLs únicas\t%d\n", s.UniqueURLs)
	fmt.Fprintf(tw, "Eficiência do cache\t%s\n", s.Efficiency())
	last := time.Time{}
	if s.LastAnalysis != nil {
		last = s.LastAnalysis.Time
	}
	fmt.Fprintf(tw, "Última análise\t%s\n", FormatTime(last))
	return tw.Flush()
}

// RenderRecent prints the recent analyses table.
func RenderRecent(w io.Writer, recs []model.RecentAnalysis) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "Nenhuma análise recente")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "EMPRESA\tURL\tIDADE DO CACHE\tANALISADO EM")
	for _, r := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", orDash(r.Company), r.URL, ageLabel(r.CacheAgeDays), FormatTime(r.AnalyzedAt.Time))
	}
	return tw.Flush()
}

func ageLabel(days int) string {
	switch {
	case days <= 0:
		return "hoje"
	case days == 1:
		return "1 dia"
	default:
		return fmt.Sprintf("%d dias", days)
	}
}

// RenderUsers prints the account list.
func RenderUsers(w io.Writer, users []model.User) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSUÁRIO\tPERFIL")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Username, u.Role)
	}
	return tw.Flush()
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
