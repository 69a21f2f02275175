package ports

import (
	"context"
	"time"

	"NatureDaily/internal/domain"
)

// ArticleSource pulls fresh articles from the configured journals.
type ArticleSource interface {
	FetchDaily(ctx context.Context, day time.Time) ([]domain.Article, error)
}

// ArticleEnricher fills missing article details from the article page.
type ArticleEnricher interface {
	Enrich(ctx context.Context, article *domain.Article) error
}

// PageFetcher returns the raw HTML of a page.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// Summarizer produces a summary and key points for one article.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.Article) (domain.Summary, error)
}

// SummaryCache remembers summaries by article URL.
type SummaryCache interface {
	Get(ctx context.Context, articleURL string) (domain.Summary, bool, error)
	Put(ctx context.Context, articleURL string, summary domain.Summary) error
}

// Archive persists reported articles for history and deduplication.
type Archive interface {
	AlreadyReported(ctx context.Context, urls []string) (map[string]domain.ArchivedArticle, error)
	SaveReported(ctx context.Context, article domain.ArchivedArticle) error
}

// ReportWriter stores rendered reports and returns their locations.
type ReportWriter interface {
	Write(ctx context.Context, files []domain.ReportFile) ([]string, error)
}

// Mailer emails a rendered report.
type Mailer interface {
	SendReport(ctx context.Context, report domain.Report, content domain.MailContent) error
	SendTest(ctx context.Context) error
}

// Publisher uploads rendered reports to remote storage.
type Publisher interface {
	Publish(ctx context.Context, files []domain.ReportFile) error
}

// Notifier streams a short digest to Telegram or other channels.
type Notifier interface {
	NotifyReport(ctx context.Context, report domain.Report) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
