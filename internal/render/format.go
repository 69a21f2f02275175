package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"NatureDaily/internal/domain"
)

// ErrUnknownFormat is returned by ParseFormat for anything outside markdown|html|json|all.
var ErrUnknownFormat = errors.New("unknown output format")

// Format selects the report serialization.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatAll      Format = "all"
)

const filenamePrefix = "nature_daily_report_"

// ParseFormat accepts the selector case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatMarkdown, FormatHTML, FormatJSON, FormatAll:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Formats expands all into markdown, html and json, in that order.
func (f Format) Formats() []Format {
	if f == FormatAll {
		return []Format{FormatMarkdown, FormatHTML, FormatJSON}
	}
	return []Format{f}
}

// Extension is the file suffix without the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return "md"
	case FormatHTML:
		return "html"
	case FormatJSON:
		return "json"
	default:
		return string(f)
	}
}

// ContentType is the MIME type used for uploads and attachments.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// Filename is nature_daily_report_<YYYYMMDD>.<ext>, dated by the report, not the clock.
func Filename(date time.Time, f Format) string {
	return filenamePrefix + date.Format("20060102") + "." + f.Extension()
}

// Output is one rendered format.
type Output struct {
	Format   Format
	Filename string
	Payload  []byte
}

// File converts the output for the delivery ports.
func (o Output) File() domain.ReportFile {
	return domain.ReportFile{
		Filename:    o.Filename,
		ContentType: o.Format.ContentType(),
		Payload:     o.Payload,
	}
}

// Files converts a batch of outputs.
func Files(outputs []Output) []domain.ReportFile {
	files := make([]domain.ReportFile, 0, len(outputs))
	for _, o := range outputs {
		files = append(files, o.File())
	}
	return files
}
