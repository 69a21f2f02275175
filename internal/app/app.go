package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"NatureDaily/internal/config"
	"NatureDaily/internal/infrastructure/llm"
	"NatureDaily/internal/infrastructure/mail"
	"NatureDaily/internal/infrastructure/objectstore"
	"NatureDaily/internal/infrastructure/output"
	"NatureDaily/internal/infrastructure/parser"
	"NatureDaily/internal/infrastructure/scheduler"
	"NatureDaily/internal/infrastructure/storage"
	"NatureDaily/internal/infrastructure/telegram"
	"NatureDaily/internal/logging"
	"NatureDaily/internal/ports"
	"NatureDaily/internal/render"
	"NatureDaily/internal/scanner"
	"NatureDaily/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	source   *parser.StrategySource
	mailer   *mail.SMTPMailer
	pipeline *usecase.Pipeline
	closers  []func() error
}

// New builds the application. Optional backends (Postgres, Redis, S3,
// Telegram, the LLM) that cannot be reached are logged and left out; only a
// bad output format or broken templates are fatal.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}
	a := &Application{cfg: cfg, logger: baseLogger}

	format, err := render.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New(cfg.Report.TemplateDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	httpFetcher := parser.NewHTTPFetcher(&http.Client{Timeout: cfg.Crawler.Timeout}, cfg.Crawler.UserAgent)
	var listingFetcher ports.PageFetcher = httpFetcher
	if cfg.Crawler.Browser {
		listingFetcher = parser.NewBrowserFetcher(cfg.Crawler.ChromePath, cfg.Crawler.UserAgent, cfg.Crawler.Timeout)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewNatureScanner(listingFetcher, baseLogger.With("component", "scanner.nature")))
	registry.Register(parser.NewRSSScanner(httpFetcher, baseLogger.With("component", "scanner.rss")))
	a.source = parser.NewStrategySource(registry, cfg.Journals, cfg.Crawler, baseLogger.With("component", "source"))

	var enricher ports.ArticleEnricher
	if !cfg.Crawler.SkipDetails {
		enricher = parser.NewDetailEnricher(httpFetcher, baseLogger.With("component", "enricher"))
	}

	a.mailer = mail.NewSMTPMailer(cfg.Email, baseLogger.With("component", "mail"))
	var mailer ports.Mailer
	if cfg.Email.SendingEnabled() {
		if err := a.mailer.Validate(); err != nil {
			baseLogger.Warn("email disabled", "error", err)
		} else {
			mailer = a.mailer
		}
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:     a.source,
		Enricher:   enricher,
		Summarizer: a.buildSummarizer(ctx),
		Archive:    a.buildArchive(ctx),
		Renderer:   renderer,
		Writer:     output.NewFileWriter(cfg.Output.Dir, baseLogger.With("component", "output")),
		Mailer:     mailer,
		Publisher:  a.buildPublisher(ctx),
		Notifier:   a.buildNotifier(),
		Logger:     baseLogger.With("component", "pipeline"),
		Title:      cfg.Report.Title,
		Format:     format,
		SendEmail:  mailer != nil,
		SendEmpty:  cfg.Email.SendEmpty,
	})
	return a, nil
}

func (a *Application) buildSummarizer(ctx context.Context) ports.Summarizer {
	log := a.logger.With("component", "summarizer")
	summarizer, err := llm.NewFromConfig(ctx, a.cfg.Summarizer, a.cfg.Quota, log)
	if err != nil {
		a.logger.Warn("summarizer disabled, reports will carry placeholders", "error", err)
		return nil
	}
	if a.cfg.Cache.Addr == "" {
		return summarizer
	}

	cache, err := storage.NewRedisSummaryCache(ctx, a.cfg.Cache)
	if err != nil {
		a.logger.Warn("summary cache disabled", "error", err)
		return summarizer
	}
	a.closers = append(a.closers, cache.Close)
	return llm.NewCachedSummarizer(summarizer, cache, log)
}

func (a *Application) buildArchive(ctx context.Context) ports.Archive {
	if a.cfg.Database.DSN == "" {
		return nil
	}
	db, err := storage.OpenPostgres(ctx, a.cfg.Database.DSN)
	if err != nil {
		a.logger.Warn("archive disabled", "error", err)
		return nil
	}
	archive := storage.NewPostgresArchive(db)
	if err := archive.EnsureSchema(ctx); err != nil {
		a.logger.Warn("archive disabled", "error", err)
		_ = db.Close()
		return nil
	}
	a.closers = append(a.closers, db.Close)
	return archive
}

func (a *Application) buildPublisher(ctx context.Context) ports.Publisher {
	if a.cfg.ObjectStore.Bucket == "" {
		return nil
	}
	publisher, err := objectstore.NewS3Publisher(ctx, a.cfg.ObjectStore, a.logger.With("component", "objectstore"))
	if err != nil {
		a.logger.Warn("report upload disabled", "error", err)
		return nil
	}
	return publisher
}

func (a *Application) buildNotifier() ports.Notifier {
	if a.cfg.Telegram.BotToken == "" || a.cfg.Telegram.ChatID == "" {
		return nil
	}
	return telegram.NewNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
}

// Today is the current date in the scheduler timezone.
func (a *Application) Today() time.Time {
	return time.Now().In(a.cfg.Scheduler.Location())
}

// RunOnce builds and delivers the report for day.
func (a *Application) RunOnce(ctx context.Context, day time.Time) error {
	res, err := a.pipeline.ProcessDay(ctx, day)
	for _, path := range res.Paths {
		a.logger.Info("report available", "run_id", res.RunID, "path", path)
	}
	return err
}

// RunSchedule blocks until ctx is cancelled, running the pipeline daily.
func (a *Application) RunSchedule(ctx context.Context) error {
	driver, err := scheduler.NewDailyScheduler(a.cfg.Scheduler.DailyAt, a.cfg.Scheduler.Location(), a.logger.With("component", "scheduler"))
	if err != nil {
		return err
	}
	sched := usecase.NewScheduler(driver, a.pipeline, func(err error) {
		a.logger.Error("scheduled run failed", "error", err)
	})

	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "daily_at", a.cfg.Scheduler.DailyAt, "timezone", a.cfg.Scheduler.Location().String())

	<-ctx.Done()
	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// RunTest checks the mail setup with a test message and crawls the first
// enabled journal without summarizing or delivering anything.
func (a *Application) RunTest(ctx context.Context) error {
	var errs []error

	if err := a.mailer.SendTest(ctx); err != nil {
		errs = append(errs, fmt.Errorf("test email: %w", err))
	} else {
		a.logger.Info("test email sent")
	}

	journal, articles, err := a.source.FirstJournal(ctx, a.Today())
	if err != nil {
		errs = append(errs, fmt.Errorf("test crawl: %w", err))
	} else {
		a.logger.Info("test crawl finished", "journal", journal, "articles", len(articles))
	}

	return errors.Join(errs...)
}

// Close releases database and cache connections.
func (a *Application) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}
