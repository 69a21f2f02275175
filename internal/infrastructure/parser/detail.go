package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

const maxAbstractRunes = 4000

// DetailEnricher fills authors, affiliations, DOI and abstract from the article page.
type DetailEnricher struct {
	fetcher ports.PageFetcher
	logger  *slog.Logger
}

var _ ports.ArticleEnricher = (*DetailEnricher)(nil)

// NewDetailEnricher wires a page fetcher; a nil fetcher falls back to plain HTTP.
func NewDetailEnricher(fetcher ports.PageFetcher, log *slog.Logger) *DetailEnricher {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil, "")
	}
	return &DetailEnricher{fetcher: fetcher, logger: log}
}

// Enrich fetches the article page when the listing left authors or abstract empty.
// Fields already present are kept.
func (e *DetailEnricher) Enrich(ctx context.Context, article *domain.Article) error {
	if article == nil || !needsDetails(*article) {
		return nil
	}

	body, err := e.fetcher.Fetch(ctx, article.URL)
	if err != nil {
		return fmt.Errorf("fetch article page: %w", err)
	}

	if err := applyPageDetails(article, body); err != nil {
		return err
	}

	if article.Abstract == "" {
		article.Abstract = extractMainText(body, article.URL)
	}

	if e.logger != nil {
		e.logger.Debug("article enriched",
			"url", article.URL,
			"authors", len(article.Authors),
			"affiliations", len(article.Affiliations),
			"abstract_len", len(article.Abstract))
	}
	return nil
}

func needsDetails(a domain.Article) bool {
	return len(a.Authors) == 0 || strings.TrimSpace(a.Abstract) == "" || a.DOI == ""
}

type pageMeta struct {
	authors       []string
	affiliations  []string
	corresponding string
	doi           string
	typ           string
	published     string
	description   string
}

// readMeta walks citation meta tags in document order. Each citation_author_email
// belongs to the citation_author that precedes it.
func readMeta(doc *goquery.Document) pageMeta {
	var (
		meta       pageMeta
		current    string
		seenAuthor = map[string]struct{}{}
		seenAffil  = map[string]struct{}{}
	)
	doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
		name, _ := s.Attr("name")
		content, _ := s.Attr("content")
		content = cleanText(content)
		if content == "" {
			return
		}
		switch strings.ToLower(name) {
		case "citation_author":
			current = content
			if _, dup := seenAuthor[content]; !dup {
				seenAuthor[content] = struct{}{}
				meta.authors = append(meta.authors, content)
			}
		case "citation_author_institution":
			if _, dup := seenAffil[content]; !dup {
				seenAffil[content] = struct{}{}
				meta.affiliations = append(meta.affiliations, content)
			}
		case "citation_author_email":
			if meta.corresponding == "" && current != "" {
				meta.corresponding = current
			}
		case "citation_doi":
			meta.doi = strings.TrimPrefix(content, "doi:")
		case "dc.type":
			meta.typ = content
		case "citation_publication_date", "citation_online_date":
			if meta.published == "" {
				meta.published = content
			}
		case "dc.description", "description":
			if meta.description == "" {
				meta.description = content
			}
		}
	})
	return meta
}

func applyPageDetails(article *domain.Article, body []byte) error {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("parse article page: %w", err)
	}

	meta := readMeta(doc)

	if len(article.Authors) == 0 {
		article.Authors = meta.authors
		if len(article.Authors) == 0 {
			article.Authors = extractAuthors(doc.Selection, maxPageAuthors)
		}
		if len(article.Authors) > maxPageAuthors {
			article.Authors = article.Authors[:maxPageAuthors]
		}
	}
	if len(article.Affiliations) == 0 {
		article.Affiliations = meta.affiliations
	}
	if article.CorrespondingAuthor == "" {
		article.CorrespondingAuthor = cleanText(doc.Find("#corresponding-author-list a").First().Text())
		if article.CorrespondingAuthor == "" {
			article.CorrespondingAuthor = meta.corresponding
		}
	}
	if article.DOI == "" {
		article.DOI = meta.doi
	}
	if article.Type == domain.TypeResearchArticle && meta.typ != "" {
		if typ, ok := domain.ParseArticleType(meta.typ); ok {
			article.Type = typ
		}
	}
	if article.PublishDate.IsZero() && meta.published != "" {
		if parsed, ok := parseDate(meta.published); ok {
			article.PublishDate = parsed
		}
	}
	if article.Abstract == "" {
		abstract := cleanText(doc.Find("#Abs1-content").First().Text())
		if abstract == "" {
			abstract = meta.description
		}
		article.Abstract = truncateRunes(abstract, maxAbstractRunes)
	}
	return nil
}

// extractMainText falls back to full-text extraction: readability first, trafilatura second.
func extractMainText(body []byte, pageURL string) string {
	parsedURL, _ := url.Parse(pageURL)

	if node, err := html.Parse(bytes.NewReader(body)); err == nil {
		if article, err := readability.FromDocument(node, parsedURL); err == nil {
			if text := cleanText(article.TextContent); text != "" {
				return truncateRunes(text, maxAbstractRunes)
			}
		}
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{OriginalURL: parsedURL})
	if err != nil || result == nil {
		return ""
	}
	return truncateRunes(cleanText(result.ContentText), maxAbstractRunes)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
