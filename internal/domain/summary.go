package domain

import "strings"

// Summary is what the summarizer returns for one article.
type Summary struct {
	Text      string   `json:"summary"`
	KeyPoints []string `json:"key_points"`
}

// IsZero reports an empty summary, which the report treats as a failure.
func (s Summary) IsZero() bool {
	return strings.TrimSpace(s.Text) == "" && len(s.KeyPoints) == 0
}

// Apply copies the summary into the article.
func (a *Article) Apply(s Summary) {
	a.Summary = s.Text
	a.KeyPoints = append([]string(nil), s.KeyPoints...)
}

// ReportFile is one rendered report ready for delivery.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// MailContent is what the mailer sends for one report: the Markdown body, the
// HTML alternative and the files to attach.
type MailContent struct {
	Markdown    []byte
	HTML        []byte
	Attachments []ReportFile
}
