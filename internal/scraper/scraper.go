// Package scraper fetches a web page and extracts the parts used for analysis.
package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	nurl "net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	readability "github.com/go-shiori/go-readability"
	"go.uber.org/zap"
)

// ErrUnscrapable is returned when the page cannot be fetched or parsed.
var ErrUnscrapable = errors.New("page could not be scraped")

// Page is the extracted content of one URL.
type Page struct {
	URL         string
	Title       string
	SiteName    string // og:site_name
	Description string // meta description or og:description
	Headings    []string
	ListItems   []string
	Text        string // visible text, whitespace collapsed, capped
}

// Fetcher retrieves and parses a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Page, error)
}

// Scraper is the HTTP Fetcher.
type Scraper struct {
	rc      *resty.Client
	maxText int
	log     *zap.Logger
}

const (
	userAgent = "Mozilla/5.0 (compatible; SalesIntelBot/1.0)"
	maxBody   = 5 << 20
)

// New returns a Scraper with a per-request timeout. maxText bounds Page.Text in runes.
func New(timeout time.Duration, maxText int, log *zap.Logger) *Scraper {
	if log == nil {
		log = zap.NewNop()
	}
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetDisableWarn(true)
	return &Scraper{rc: rc, maxText: maxText, log: log}
}

// Fetch downloads url and extracts its content.
func (s *Scraper) Fetch(ctx context.Context, url string) (Page, error) {
	resp, err := s.rc.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrUnscrapable, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		return Page{}, fmt.Errorf("%w: status %d", ErrUnscrapable, resp.StatusCode())
	}
	if ct := resp.Header().Get("Content-Type"); ct != "" && !strings.Contains(ct, "html") {
		return Page{}, fmt.Errorf("%w: content type %q", ErrUnscrapable, ct)
	}
	raw, err := io.ReadAll(io.LimitReader(body, maxBody))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrUnscrapable, err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return Page{}, fmt.Errorf("%w: %v", ErrUnscrapable, err)
	}
	p := Extract(doc, s.maxText)
	p.URL = url
	if main := mainText(raw, url); main != "" {
		p.Text = truncate(main, s.maxText)
	}
	if p.Text == "" && p.Title == "" {
		return Page{}, fmt.Errorf("%w: empty page", ErrUnscrapable)
	}
	s.log.Debug("page scraped", zap.String("url", url), zap.Int("text_len", len(p.Text)))
	return p, nil
}

// Extract reads metadata, headings, list items and visible text from doc.
// Scripts and styles are removed from doc.
func Extract(doc *goquery.Document, maxText int) Page {
	var p Page
	p.Title = Collapse(doc.Find("title").First().Text())
	p.SiteName = metaContent(doc, `meta[property="og:site_name"]`)
	p.Description = metaContent(doc, `meta[name="description"]`)
	if p.Description == "" {
		p.Description = metaContent(doc, `meta[property="og:description"]`)
	}

	doc.Find("script, style, noscript, template").Remove()

	doc.Find("h1, h2, h3").Each(func(_ int, sel *goquery.Selection) {
		if t := Collapse(sel.Text()); t != "" {
			p.Headings = append(p.Headings, t)
		}
	})
	doc.Find("li").Each(func(_ int, sel *goquery.Selection) {
		if t := Collapse(sel.Text()); t != "" {
			p.ListItems = append(p.ListItems, t)
		}
	})
	p.Text = truncate(Collapse(doc.Find("body").Text()), maxText)
	return p
}

// mainText is the readable article body of the page, or "" when none is found.
func mainText(raw []byte, pageURL string) string {
	u, err := nurl.Parse(pageURL)
	if err != nil {
		return ""
	}
	article, err := readability.FromReader(bytes.NewReader(raw), u)
	if err != nil {
		return ""
	}
	return Collapse(article.TextContent)
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return Collapse(v)
}

// Collapse trims s and folds every whitespace run into one space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	if n <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
