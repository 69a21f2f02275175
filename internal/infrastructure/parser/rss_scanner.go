package parser

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
	"NatureDaily/internal/scanner"
)

// RSSScanner reads a journal feed such as https://www.nature.com/nphoton.rss.
type RSSScanner struct {
	fetcher ports.PageFetcher
	logger  *slog.Logger
}

// NewRSSScanner wires a page fetcher; a nil fetcher falls back to plain HTTP.
func NewRSSScanner(fetcher ports.PageFetcher, log *slog.Logger) *RSSScanner {
	if fetcher == nil {
		fetcher = NewHTTPFetcher(nil, "")
	}
	return &RSSScanner{fetcher: fetcher, logger: log}
}

// Name identifies the strategy inside the registry.
func (r *RSSScanner) Name() string {
	return "rss"
}

// Scan parses the feed and returns up to req.Limit items.
func (r *RSSScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("no feed url provided for journal %s", req.Journal)
	}

	body, err := r.fetcher.Fetch(ctx, req.URL)
	if err != nil {
		return nil, fmt.Errorf("journal %s: %w", req.Journal, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", req.URL, err)
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	results := make([]domain.Article, 0, limit)
	for _, item := range feed.Items {
		if len(results) >= limit {
			break
		}
		article, ok := itemToArticle(item, req.Journal, req.Day)
		if !ok {
			continue
		}
		results = append(results, article)
	}

	if r.logger != nil {
		r.logger.Debug("feed parsed", "journal", req.Journal, "items", len(feed.Items), "kept", len(results))
	}
	return results, nil
}

func itemToArticle(item *gofeed.Item, journal string, day time.Time) (domain.Article, bool) {
	title := cleanText(item.Title)
	link := strings.TrimSpace(item.Link)
	if title == "" || link == "" {
		return domain.Article{}, false
	}

	publishDate := day
	switch {
	case item.PublishedParsed != nil:
		publishDate = *item.PublishedParsed
	case item.UpdatedParsed != nil:
		publishDate = *item.UpdatedParsed
	default:
		if item.DublinCoreExt != nil {
			for _, raw := range item.DublinCoreExt.Date {
				if parsed, ok := parseDate(raw); ok {
					publishDate = parsed
					break
				}
			}
		}
	}

	article := domain.Article{
		Title:       title,
		Authors:     feedAuthors(item),
		Journal:     journal,
		Type:        domain.TypeResearchArticle,
		PublishDate: publishDate,
		URL:         link,
		Abstract:    stripTags(firstNonEmpty(item.Description, item.Content)),
		DOI:         extensionValue(item, "prism", "doi"),
	}
	if item.DublinCoreExt != nil && len(item.DublinCoreExt.Type) > 0 {
		if typ, ok := domain.ParseArticleType(item.DublinCoreExt.Type[0]); ok {
			article.Type = typ
		}
	}
	return article, true
}

func feedAuthors(item *gofeed.Item) []string {
	var authors []string
	seen := map[string]struct{}{}
	add := func(name string) {
		name = cleanText(name)
		if name == "" {
			return
		}
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		authors = append(authors, name)
	}
	for _, person := range item.Authors {
		if person != nil {
			add(person.Name)
		}
	}
	if item.DublinCoreExt != nil {
		for _, creator := range item.DublinCoreExt.Creator {
			add(creator)
		}
	}
	return authors
}

func extensionValue(item *gofeed.Item, namespace, name string) string {
	if item.Extensions == nil {
		return ""
	}
	for _, ext := range item.Extensions[namespace][name] {
		if v := strings.TrimSpace(ext.Value); v != "" {
			return v
		}
	}
	return ""
}

// stripTags turns a feed description fragment into plain text.
func stripTags(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return cleanText(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return cleanText(fragment)
	}
	return cleanText(doc.Text())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
