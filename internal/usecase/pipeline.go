package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/logging"
	"NatureDaily/internal/ports"
	"NatureDaily/internal/render"
)

// ReportRenderer turns a report into one output per requested format.
type ReportRenderer interface {
	Render(report domain.Report, format render.Format) ([]render.Output, []error)
	RenderFormat(report domain.Report, format render.Format) (render.Output, error)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
// Only Source and Renderer are required; every other collaborator is optional.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Enricher   ports.ArticleEnricher
	Summarizer ports.Summarizer
	Archive    ports.Archive
	Renderer   ReportRenderer
	Writer     ports.ReportWriter
	Mailer     ports.Mailer
	Publisher  ports.Publisher
	Notifier   ports.Notifier
	Logger     *slog.Logger

	Title     string
	Format    render.Format
	SendEmail bool
	SendEmpty bool
}

// Pipeline implements the daily crawl, summarize, render and deliver workflow.
type Pipeline struct {
	source     ports.ArticleSource
	enricher   ports.ArticleEnricher
	summarizer ports.Summarizer
	archive    ports.Archive
	renderer   ReportRenderer
	writer     ports.ReportWriter
	mailer     ports.Mailer
	publisher  ports.Publisher
	notifier   ports.Notifier
	logger     *slog.Logger

	title     string
	format    render.Format
	sendEmail bool
	sendEmpty bool
	now       func() time.Time
}

// Result describes one finished run.
type Result struct {
	RunID  string
	Report domain.Report
	Paths  []string
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	format := deps.Format
	if format == "" {
		format = render.FormatAll
	}
	return &Pipeline{
		source:     deps.Source,
		enricher:   deps.Enricher,
		summarizer: deps.Summarizer,
		archive:    deps.Archive,
		renderer:   deps.Renderer,
		writer:     deps.Writer,
		mailer:     deps.Mailer,
		publisher:  deps.Publisher,
		notifier:   deps.Notifier,
		logger:     deps.Logger,
		title:      deps.Title,
		format:     format,
		sendEmail:  deps.SendEmail,
		sendEmpty:  deps.SendEmpty,
		now:        time.Now,
	}
}

// ProcessDay runs the whole workflow for one calendar day. A failed crawl
// aborts the run; render and delivery failures are collected and returned
// together once every sink has been tried.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) (Result, error) {
	result := Result{RunID: uuid.NewString()}
	if p.source == nil || p.renderer == nil {
		return result, errors.New("pipeline needs a source and a renderer")
	}
	log := p.runLogger(result.RunID, day)
	log.Info("run started")

	articles, err := p.source.FetchDaily(ctx, day)
	if err != nil {
		return result, fmt.Errorf("fetch daily: %w", err)
	}
	articles = onDay(articles, day)
	log.Info("articles crawled", "count", len(articles))

	p.enrich(ctx, log, articles)
	p.summarize(ctx, log, articles)

	report, rejected := domain.Assemble(p.title, day, articles)
	for _, a := range rejected {
		log.Warn("article dropped", "title", a.Title, "error", a.Validate())
	}
	result.Report = report

	var errs []error
	outputs, renderErrs := p.renderer.Render(report, p.format)
	for _, rErr := range renderErrs {
		log.Error("render failed", "error", rErr)
		errs = append(errs, fmt.Errorf("render: %w", rErr))
	}
	files := render.Files(outputs)

	if p.writer != nil {
		paths, wErr := p.writer.Write(ctx, files)
		result.Paths = paths
		if wErr != nil {
			errs = append(errs, fmt.Errorf("write reports: %w", wErr))
		}
	}
	if p.publisher != nil {
		if pErr := p.publisher.Publish(ctx, files); pErr != nil {
			errs = append(errs, fmt.Errorf("publish reports: %w", pErr))
		}
	}
	if eErr := p.email(ctx, log, report, outputs); eErr != nil {
		errs = append(errs, fmt.Errorf("send email: %w", eErr))
	}
	if p.notifier != nil {
		if nErr := p.notifier.NotifyReport(ctx, report); nErr != nil {
			errs = append(errs, fmt.Errorf("notify: %w", nErr))
		}
	}
	if aErr := p.archiveReport(ctx, report); aErr != nil {
		errs = append(errs, fmt.Errorf("archive: %w", aErr))
	}

	err = errors.Join(errs...)
	if err != nil {
		log.Error("run finished with errors", "error", err)
	} else {
		log.Info("run finished", "articles", report.TotalArticles(), "journals", len(report.JournalsCovered()), "files", len(result.Paths))
	}
	return result, err
}

func (p *Pipeline) enrich(ctx context.Context, log *slog.Logger, articles []domain.Article) {
	if p.enricher == nil {
		return
	}
	for i := range articles {
		if err := p.enricher.Enrich(ctx, &articles[i]); err != nil {
			log.Warn("article details unavailable", "url", articles[i].URL, "error", err)
		}
	}
}

// summarize fills Summary, KeyPoints and Field. Archived summaries are reused.
func (p *Pipeline) summarize(ctx context.Context, log *slog.Logger, articles []domain.Article) {
	archived := p.lookupArchived(ctx, log, articles)

	var failed int
	for i := range articles {
		a := &articles[i]
		if prev, ok := archived[a.URL]; ok && prev.Article.HasSummary() {
			a.Apply(domain.Summary{Text: prev.Article.Summary, KeyPoints: prev.Article.KeyPoints})
			log.Debug("summary reused from archive", "url", a.URL)
		} else if p.summarizer != nil {
			summary, err := p.summarizer.Summarize(ctx, *a)
			if err != nil {
				failed++
				log.Warn("summarization failed", "url", a.URL, "error", err)
				summary = domain.Summary{}
			}
			a.Apply(summary)
		}
		a.Field = domain.ClassifyField(a.Title, a.Abstract)
	}
	if failed > 0 {
		log.Warn("some summaries are missing", "failed", failed, "total", len(articles))
	}
}

func (p *Pipeline) lookupArchived(ctx context.Context, log *slog.Logger, articles []domain.Article) map[string]domain.ArchivedArticle {
	if p.archive == nil || len(articles) == 0 {
		return nil
	}
	urls := make([]string, 0, len(articles))
	for _, a := range articles {
		urls = append(urls, a.URL)
	}
	archived, err := p.archive.AlreadyReported(ctx, urls)
	if err != nil {
		log.Warn("archive lookup failed", "error", err)
		return nil
	}
	return archived
}

func (p *Pipeline) email(ctx context.Context, log *slog.Logger, report domain.Report, outputs []render.Output) error {
	if p.mailer == nil || !p.sendEmail {
		log.Info("email sending disabled")
		return nil
	}
	if report.IsEmpty() && !p.sendEmpty {
		log.Info("no articles for the day, email skipped")
		return nil
	}

	content, err := p.mailContent(report, outputs)
	if err != nil {
		log.Warn("email body incomplete", "error", err)
	}
	if sErr := p.mailer.SendReport(ctx, report, content); sErr != nil {
		return errors.Join(err, sErr)
	}
	return err
}

// mailContent always carries the Markdown and HTML bodies, whatever the output
// format; only the Markdown and JSON reports written for this run are attached.
func (p *Pipeline) mailContent(report domain.Report, outputs []render.Output) (domain.MailContent, error) {
	var (
		content domain.MailContent
		errs    []error
	)
	for _, f := range []render.Format{render.FormatMarkdown, render.FormatHTML} {
		out, ok := findOutput(outputs, f)
		if !ok {
			var err error
			if out, err = p.renderer.RenderFormat(report, f); err != nil {
				errs = append(errs, fmt.Errorf("email body: %w", err))
				continue
			}
		}
		if f == render.FormatMarkdown {
			content.Markdown = out.Payload
		} else {
			content.HTML = out.Payload
		}
	}

	for _, out := range outputs {
		if out.Format == render.FormatMarkdown || out.Format == render.FormatJSON {
			content.Attachments = append(content.Attachments, out.File())
		}
	}
	return content, errors.Join(errs...)
}

func findOutput(outputs []render.Output, f render.Format) (render.Output, bool) {
	for _, out := range outputs {
		if out.Format == f {
			return out, true
		}
	}
	return render.Output{}, false
}

func (p *Pipeline) archiveReport(ctx context.Context, report domain.Report) error {
	if p.archive == nil {
		return nil
	}
	now := p.now()
	var errs []error
	for _, a := range report.Articles() {
		status := domain.StatusReported
		if !a.HasSummary() {
			status = domain.StatusFailed
		}
		err := p.archive.SaveReported(ctx, domain.ArchivedArticle{
			Article:    a,
			ReportDate: report.Date(),
			Status:     status,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			errs = append(errs, fmt.Errorf("save %s: %w", a.URL, err))
		}
	}
	return errors.Join(errs...)
}

func (p *Pipeline) runLogger(runID string, day time.Time) *slog.Logger {
	log := p.logger
	if log == nil {
		log = logging.Discard()
	}
	return log.With("run_id", runID, "date", day.Format("2006-01-02"))
}

// onDay keeps articles listed for day so no detail fetch or summary is spent
// on older entries. Invalid articles pass through for the assembler to report.
func onDay(articles []domain.Article, day time.Time) []domain.Article {
	kept := make([]domain.Article, 0, len(articles))
	for _, a := range articles {
		if a.Validate() != nil || domain.SameDay(a.PublishDate, day) {
			kept = append(kept, a)
		}
	}
	return kept
}
