package llm

import (
	"context"
	"log/slog"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

// CachedSummarizer serves repeated articles from the summary cache.
type CachedSummarizer struct {
	next   ports.Summarizer
	cache  ports.SummaryCache
	logger *slog.Logger
}

var _ ports.Summarizer = (*CachedSummarizer)(nil)

// NewCachedSummarizer decorates next; a nil cache passes every call through.
func NewCachedSummarizer(next ports.Summarizer, cache ports.SummaryCache, log *slog.Logger) *CachedSummarizer {
	return &CachedSummarizer{next: next, cache: cache, logger: log}
}

// Summarize looks up the article URL first. Cache errors never fail the call.
func (c *CachedSummarizer) Summarize(ctx context.Context, article domain.Article) (domain.Summary, error) {
	if c.cache != nil && article.URL != "" {
		cached, ok, err := c.cache.Get(ctx, article.URL)
		switch {
		case err != nil:
			c.log("summary cache get failed", "url", article.URL, "error", err)
		case ok:
			return cached, nil
		}
	}

	summary, err := c.next.Summarize(ctx, article)
	if err != nil {
		return summary, err
	}

	if c.cache != nil && article.URL != "" && !summary.IsZero() {
		if err := c.cache.Put(ctx, article.URL, summary); err != nil {
			c.log("summary cache put failed", "url", article.URL, "error", err)
		}
	}
	return summary, nil
}

func (c *CachedSummarizer) log(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}
