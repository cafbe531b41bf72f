// Package analyzer turns a scraped page into sales insights.
package analyzer

import (
	"context"
	"net/url"
	"strings"

	"github.com/and161185/sales-intel/internal/model"
	"github.com/and161185/sales-intel/internal/scraper"
)

// Analyzer derives Insights from a page.
type Analyzer interface {
	Analyze(ctx context.Context, p scraper.Page) (model.Insights, error)
}

// Unknown fills fields nothing on the page could answer.
const Unknown = "Não identificado"

const (
	maxUSP     = 5
	maxUSPLen  = 120
	maxSummary = 500
)

// Heuristic is a deterministic Analyzer over page metadata and structure.
type Heuristic struct{}

// Analyze never fails; the error is part of the Analyzer contract.
func (Heuristic) Analyze(_ context.Context, p scraper.Page) (model.Insights, error) {
	in := model.Insights{
		NomeEmpresa:             company(p),
		PrincipalServicoProduto: product(p),
		PublicoAlvo:             audience(p),
		PropostaDeValor:         valueProp(p),
		PontosDeVendaUSP:        sellingPoints(p),
	}
	in.ResumoExecutivo = summary(in, p)
	return in, nil
}

var titleSeparators = []string{" | ", " - ", " – ", " — ", ": "}

func splitTitle(title string) []string {
	for _, sep := range titleSeparators {
		if strings.Contains(title, sep) {
			parts := strings.Split(title, sep)
			out := parts[:0]
			for _, s := range parts {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
	}
	if title == "" {
		return nil
	}
	return []string{title}
}

func company(p scraper.Page) string {
	if p.SiteName != "" {
		return p.SiteName
	}
	if parts := splitTitle(p.Title); len(parts) > 0 {
		return parts[0]
	}
	if u, err := url.Parse(p.URL); err == nil && u.Hostname() != "" {
		return strings.TrimPrefix(u.Hostname(), "www.")
	}
	return Unknown
}

func product(p scraper.Page) string {
	if parts := splitTitle(p.Title); len(parts) > 1 {
		return parts[1]
	}
	if len(p.Headings) > 0 {
		return p.Headings[0]
	}
	if p.Description != "" {
		return firstSentence(p.Description)
	}
	return Unknown
}

var audienceMarkers = []string{" para ", " for "}

// audience picks the phrase after the first "para"/"for" in the description,
// the headings, then the text.
func audience(p scraper.Page) string {
	sources := append([]string{p.Description}, p.Headings...)
	sources = append(sources, sentences(p.Text)...)
	for _, s := range sources {
		low := strings.ToLower(s)
		if len(low) != len(s) {
			s = low
		}
		for _, m := range audienceMarkers {
			if i := strings.Index(low, m); i >= 0 {
				if phrase := strings.Trim(s[i+len(m):], " .!,;"); phrase != "" {
					return upperFirst(phrase)
				}
			}
		}
	}
	return Unknown
}

func valueProp(p scraper.Page) string {
	if p.Description != "" {
		return p.Description
	}
	if len(p.Headings) > 0 {
		return p.Headings[0]
	}
	if s := sentences(p.Text); len(s) > 0 {
		return s[0]
	}
	return Unknown
}

func sellingPoints(p scraper.Page) []string {
	pick := func(src []string) []string {
		var out []string
		for _, s := range src {
			if n := len([]rune(s)); n < 3 || n > maxUSPLen {
				continue
			}
			out = append(out, s)
			if len(out) == maxUSP {
				break
			}
		}
		return out
	}
	if out := pick(p.ListItems); len(out) > 0 {
		return out
	}
	if len(p.Headings) > 1 {
		if out := pick(p.Headings[1:]); len(out) > 0 {
			return out
		}
	}
	return []string{}
}

func summary(in model.Insights, p scraper.Page) string {
	var b strings.Builder
	b.WriteString(in.NomeEmpresa)
	if in.PrincipalServicoProduto != Unknown {
		b.WriteString(" atua com ")
		b.WriteString(in.PrincipalServicoProduto)
	}
	b.WriteString(".")
	if in.PropostaDeValor != Unknown && in.PropostaDeValor != in.PrincipalServicoProduto {
		b.WriteString(" ")
		b.WriteString(strings.TrimSuffix(in.PropostaDeValor, "."))
		b.WriteString(".")
	}
	if s := sentences(p.Text); len(s) > 1 {
		b.WriteString(" ")
		b.WriteString(s[1])
	}
	out := []rune(b.String())
	if len(out) > maxSummary {
		out = append(out[:maxSummary-1], '…')
	}
	return string(out)
}

// sentences splits collapsed text at ". ", "! " and "? ".
func sentences(text string) []string {
	var out []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		if (text[i] == '.' || text[i] == '!' || text[i] == '?') && text[i+1] == ' ' {
			if s := strings.TrimSpace(text[start : i+1]); s != "" {
				out = append(out, s)
			}
			start = i + 2
		}
	}
	if s := strings.TrimSpace(text[min(start, len(text)):]); s != "" {
		out = append(out, s)
	}
	return out
}

func firstSentence(s string) string {
	if parts := sentences(s); len(parts) > 0 {
		return parts[0]
	}
	return s
}

func upperFirst(s string) string {
	r := []rune(s)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return string(r)
}
