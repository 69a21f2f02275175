package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"os"
	"path/filepath"
	texttemplate "text/template"
	"time"

	"NatureDaily/internal/domain"
)

const (
	markdownTemplateName = "report.md.tmpl"
	htmlTemplateName     = "report.html.tmpl"
)

//go:embed templates/*.tmpl
var embeddedTemplates embed.FS

// Renderer turns a Report into Markdown, HTML or JSON. Templates are parsed once.
type Renderer struct {
	markdown *texttemplate.Template
	html     *htmltemplate.Template
	now      func() time.Time
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithClock fixes the footer timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) {
		if now != nil {
			r.now = now
		}
	}
}

// New parses the embedded templates. A non-empty templateDir may override
// report.md.tmpl and/or report.html.tmpl.
func New(templateDir string, opts ...Option) (*Renderer, error) {
	mdSrc, err := loadTemplate(templateDir, markdownTemplateName)
	if err != nil {
		return nil, err
	}
	htmlSrc, err := loadTemplate(templateDir, htmlTemplateName)
	if err != nil {
		return nil, err
	}

	md, err := texttemplate.New(markdownTemplateName).Parse(mdSrc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", markdownTemplateName, err)
	}
	html, err := htmltemplate.New(htmlTemplateName).Parse(htmlSrc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", htmlTemplateName, err)
	}

	r := &Renderer{markdown: md, html: html, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func loadTemplate(dir, name string) (string, error) {
	if dir != "" {
		raw, err := os.ReadFile(filepath.Join(dir, name))
		if err == nil {
			return string(raw), nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("read template %s: %w", name, err)
		}
	}
	raw, err := embeddedTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("read embedded template %s: %w", name, err)
	}
	return string(raw), nil
}

// Render produces one Output per requested format. A failing format is reported
// in the error slice and does not stop the others.
func (r *Renderer) Render(report domain.Report, format Format) ([]Output, []error) {
	var (
		outputs []Output
		errs    []error
	)
	for _, f := range format.Formats() {
		out, err := r.RenderFormat(report, f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		outputs = append(outputs, out)
	}
	return outputs, errs
}

// RenderFormat renders a single concrete format.
func (r *Renderer) RenderFormat(report domain.Report, f Format) (Output, error) {
	var (
		payload []byte
		err     error
	)
	switch f {
	case FormatMarkdown:
		payload, err = r.renderMarkdown(report)
	case FormatHTML:
		payload, err = r.renderHTML(report)
	case FormatJSON:
		payload, err = renderJSON(report)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return Output{}, fmt.Errorf("render %s: %w", f, err)
	}
	return Output{Format: f, Filename: Filename(report.Date(), f), Payload: payload}, nil
}

func (r *Renderer) renderMarkdown(report domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.markdown.Execute(&buf, newReportView(report, r.now())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderHTML(report domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.html.Execute(&buf, newReportView(report, r.now())); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderJSON(report domain.Report) ([]byte, error) {
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(payload, '\n'), nil
}
