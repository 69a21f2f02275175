package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
	"NatureDaily/internal/scanner"
)

// StrategySource implements ArticleSource via registered scanner strategies.
type StrategySource struct {
	registry *scanner.Registry
	journals []config.JournalConfig
	delay    time.Duration
	limit    int
	logger   *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// NewStrategySource wires scanner registry with config-defined journals.
func NewStrategySource(reg *scanner.Registry, journals []config.JournalConfig, crawler config.CrawlerConfig, log *slog.Logger) *StrategySource {
	return &StrategySource{
		registry: reg,
		journals: journals,
		delay:    crawler.JournalDelay,
		limit:    crawler.MaxArticlesPerJournal,
		logger:   log,
	}
}

// FetchDaily scans every enabled journal in order. A failing journal is logged
// and skipped; the call fails only when every journal failed.
func (s *StrategySource) FetchDaily(ctx context.Context, day time.Time) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	enabled := make([]config.JournalConfig, 0, len(s.journals))
	for _, j := range s.journals {
		if j.IsEnabled() {
			enabled = append(enabled, j)
		}
	}

	s.debug("fetch daily", "journals", len(enabled), "day", day.Format("2006-01-02"))

	var (
		aggregated []domain.Article
		failures   []error
	)
	for i, journal := range enabled {
		if i > 0 && s.delay > 0 {
			if err := sleepCtx(ctx, s.delay); err != nil {
				return aggregated, err
			}
		}

		results, err := s.scanJournal(ctx, journal, day)
		if err != nil {
			if ctx.Err() != nil {
				return aggregated, ctx.Err()
			}
			s.warn("journal crawl failed", "journal", journal.Name, "error", err)
			failures = append(failures, fmt.Errorf("journal %s: %w", journal.Name, err))
			continue
		}

		s.info("journal crawled", "journal", journal.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	if len(enabled) > 0 && len(failures) == len(enabled) {
		return nil, fmt.Errorf("all journals failed: %w", errors.Join(failures...))
	}

	s.debug("strategy source done", "total_articles", len(aggregated), "failed_journals", len(failures))
	return aggregated, nil
}

// FirstJournal scans only the first enabled journal; used by the self-test mode.
func (s *StrategySource) FirstJournal(ctx context.Context, day time.Time) (string, []domain.Article, error) {
	for _, j := range s.journals {
		if !j.IsEnabled() {
			continue
		}
		articles, err := s.scanJournal(ctx, j, day)
		return j.Name, articles, err
	}
	return "", nil, fmt.Errorf("no enabled journals")
}

func (s *StrategySource) scanJournal(ctx context.Context, journal config.JournalConfig, day time.Time) ([]domain.Article, error) {
	strategy, err := s.registry.Resolve(journal.Scanner)
	if err != nil {
		return nil, err
	}

	results, err := strategy.Scan(ctx, scanner.Request{
		Day:     day,
		Journal: journal.Name,
		URL:     journal.URL,
		Limit:   s.limit,
	})
	if err != nil {
		return nil, err
	}

	for i := range results {
		if results[i].Journal == "" {
			results[i].Journal = journal.Name
		}
	}
	return results, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *StrategySource) debug(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}

func (s *StrategySource) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}

func (s *StrategySource) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
