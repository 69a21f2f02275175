package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
	"NatureDaily/internal/scanner"
)

const (
	natureBaseURL   = "https://www.nature.com"
	defaultLimit    = 10
	maxPageAuthors  = 10
	minAbstractRune = 50
)

var (
	articleSelectors = []string{
		`article[data-test="article"]`,
		".c-article-item",
		".c-card",
		`[data-testid="article"]`,
	}

	authorSelectors = []string{
		`a[data-test="author"]`,
		`a[class*="author"]`,
		`span[class*="author"]`,
		".c-article-item__authors a",
		".c-article-item__authors span",
		`[data-test="author"]`,
		".c-article-authors a",
		".c-article-authors span",
		`ul[data-test="author-list"] li`,
		`a[data-track-action="author"]`,
		`span[data-track-action="author"]`,
	}

	abstractSelectors = []string{
		`[data-test="article-description"] p`,
		`p[class*="abstract"]`,
		`p[class*="summary"]`,
		`p[class*="description"]`,
		`p[class*="content"]`,
	}

	// Link texts that sit inside author containers but are not names.
	authorStopList = []string{
		"Author notes",
		"Search author on:",
		"Search for this author in:",
		"Google Scholar",
		"PubMed",
		"View author publications",
		"Reprints and permissions",
		"Language editing services",
		"Guide to authors",
		"Editorial policies",
		"Nature portfolio policies",
		"Research data",
		"Language editing",
		"Scientific editing",
		"Corresponding authors",
		"Show authors",
	}
)

// NatureScanner reads a Nature journal listing page such as /nphoton/research-articles.
type NatureScanner struct {
	fetcher ports.PageFetcher
	baseURL string
	logger  *slog.Logger
}

// NewNatureScanner wires a page fetcher; a nil fetcher falls back to plain HTTP.
func NewNatureScanner(fetcher ports.PageFetcher, log *slog.Logger) *NatureScanner {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil, "")
	}
	return &NatureScanner{fetcher: fetcher, baseURL: natureBaseURL, logger: log}
}

// Name identifies the strategy inside the registry.
func (n *NatureScanner) Name() string {
	return "nature"
}

// Scan downloads the listing page and returns up to req.Limit article cards.
// Date filtering is left to the report assembler.
func (n *NatureScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no listing url provided for journal %s", req.Journal)
	}

	body, err := n.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("journal %s: %w", req.Journal, err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse listing %s: %w", req.URL, err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	cards := findArticleCards(doc)
	n.debug("listing parsed", "journal", req.Journal, "cards", cards.Length())

	var results []domain.Article
	cards.EachWithBreak(func(i int, card *goquery.Selection) bool {
		if len(results) >= limit {
			return false
		}
		article, ok := n.parseCard(card, req.Journal, req.Day)
		if !ok {
			n.debug("skip card", "journal", req.Journal, "index", i)
			return true
		}
		results = append(results, article)
		return true
	})

	return results, nil
}

func findArticleCards(doc *goquery.Document) *goquery.Selection {
	for _, selector := range articleSelectors {
		if found := doc.Find(selector); found.Length() > 0 {
			return found
		}
	}
	return doc.Find("div").FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		return strings.Contains(strings.ToLower(class), "article")
	})
}

// parseCard extracts one article; cards without a title or link are skipped.
// A card without a date takes the requested day, like the listing it came from.
func (n *NatureScanner) parseCard(card *goquery.Selection, journal string, day time.Time) (domain.Article, bool) {
	titleSel := card.Find("h3, h2, h1").First()
	if titleSel.Length() == 0 {
		titleSel = card.Find(`a[class*="title"]`).First()
	}
	title := cleanText(titleSel.Text())
	if title == "" {
		return domain.Article{}, false
	}

	link := titleSel.Find("a[href]").First()
	if link.Length() == 0 {
		link = card.Find("a[href]").First()
	}
	href, _ := link.Attr("href")
	articleURL := resolveURL(n.baseURL, href)
	if articleURL == "" {
		return domain.Article{}, false
	}

	publishDate, ok := parseCardDate(card)
	if !ok {
		publishDate = day
	}

	typ := domain.TypeResearchArticle
	typeText := cleanText(card.Find(`[data-test="article.type"], span[class*="type"]`).First().Text())
	if parsed, matched := domain.ParseArticleType(typeText); matched {
		typ = parsed
	}

	return domain.Article{
		Title:       title,
		Authors:     extractAuthors(card, 0),
		Journal:     journal,
		Type:        typ,
		PublishDate: publishDate,
		URL:         articleURL,
		Abstract:    extractAbstract(card),
	}, true
}

func parseCardDate(card *goquery.Selection) (time.Time, bool) {
	timeSel := card.Find("time").First()
	if timeSel.Length() == 0 {
		timeSel = card.Find(`span[class*="date"]`).First()
	}
	if timeSel.Length() == 0 {
		return time.Time{}, false
	}
	text, ok := timeSel.Attr("datetime")
	if !ok || strings.TrimSpace(text) == "" {
		text = timeSel.Text()
	}
	return parseDate(text)
}

var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"02 January 2006",
	"2 January 2006",
	"02 Jan 2006",
	"2 Jan 2006",
	"2006/01/02",
}

// parseDate accepts the date formats seen in listing cards and meta tags.
func parseDate(text string) (time.Time, bool) {
	text = cleanText(text)
	if text == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, text); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

func extractAuthors(sel *goquery.Selection, max int) []string {
	var authors []string
	seen := map[string]struct{}{}
	for _, selector := range authorSelectors {
		sel.Find(selector).Each(func(_ int, s *goquery.Selection) {
			name := cleanText(s.Text())
			name = strings.TrimSuffix(name, ",")
			name = strings.TrimSpace(strings.TrimSuffix(name, "&"))
			if !isAuthorName(name) {
				return
			}
			if _, dup := seen[name]; dup {
				return
			}
			seen[name] = struct{}{}
			authors = append(authors, name)
		})
	}
	if max > 0 && len(authors) > max {
		authors = authors[:max]
	}
	return authors
}

func isAuthorName(name string) bool {
	if len([]rune(name)) <= 2 {
		return false
	}
	for _, stop := range authorStopList {
		if name == stop {
			return false
		}
	}
	return !strings.Contains(name, "et al")
}

func extractAbstract(card *goquery.Selection) string {
	for _, selector := range abstractSelectors {
		if text := cleanText(card.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	var abstract string
	card.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := cleanText(p.Text())
		if len([]rune(text)) > minAbstractRune {
			abstract = text
			return false
		}
		return true
	})
	return abstract
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	return baseURL.ResolveReference(ref).String()
}

// cleanText collapses whitespace the way the listing markup spreads it.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func (n *NatureScanner) debug(msg string, args ...interface{}) {
	if n.logger != nil {
		n.logger.Debug(msg, args...)
	}
}
