package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrMissingURL     = errors.New("article url is empty")
	ErrMissingJournal = errors.New("article journal is empty")
)

// Article is a core entity describing one scraped journal entry.
type Article struct {
	Title               string
	Authors             []string
	CorrespondingAuthor string
	Affiliations        []string
	Journal             string
	Type                ArticleType
	PublishDate         time.Time
	URL                 string
	Abstract            string
	DOI                 string
	Summary             string
	KeyPoints           []string
	Field               ResearchField
}

// Validate reports whether the fields needed for grouping and linking are present.
func (a Article) Validate() error {
	if strings.TrimSpace(a.URL) == "" {
		return ErrMissingURL
	}
	if strings.TrimSpace(a.Journal) == "" {
		return ErrMissingJournal
	}
	return nil
}

// HasSummary is false when summarization failed or never ran.
func (a Article) HasSummary() bool {
	return strings.TrimSpace(a.Summary) != ""
}

// SameDay compares the calendar dates as recorded, without converting zones:
// listing pages publish plain dates.
func SameDay(t, day time.Time) bool {
	y1, m1, d1 := t.Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ArticleType enumerates the article kinds shown on Nature listing pages.
type ArticleType int

const (
	TypeResearchArticle ArticleType = iota
	TypeNews
	TypeEditorial
	TypePerspective
	TypeReview
	TypeLetter
	TypeBriefCommunication
	TypeOther
)

var articleTypeLabels = [...]string{
	TypeResearchArticle:    "Research Article",
	TypeNews:               "News",
	TypeEditorial:          "Editorial",
	TypePerspective:        "Perspective",
	TypeReview:             "Review",
	TypeLetter:             "Letter",
	TypeBriefCommunication: "Brief Communication",
	TypeOther:              "Other",
}

func (t ArticleType) String() string {
	if t < 0 || int(t) >= len(articleTypeLabels) {
		return articleTypeLabels[TypeOther]
	}
	return articleTypeLabels[t]
}

// MarshalText keeps the human label in JSON output.
func (t ArticleType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts any text ParseArticleType understands.
func (t *ArticleType) UnmarshalText(b []byte) error {
	parsed, _ := ParseArticleType(string(b))
	*t = parsed
	return nil
}

// ParseArticleType matches free text against the known labels. The boolean is
// false when nothing matched and the fallback was used.
func ParseArticleType(text string) (ArticleType, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return TypeResearchArticle, false
	}
	// Longest labels first so "Brief Communication" wins over shorter partial hits.
	for _, t := range []ArticleType{TypeBriefCommunication, TypeResearchArticle, TypePerspective, TypeEditorial, TypeReview, TypeLetter, TypeNews, TypeOther} {
		if strings.Contains(lower, strings.ToLower(t.String())) {
			return t, true
		}
	}
	if strings.Contains(lower, "article") {
		return TypeResearchArticle, true
	}
	return TypeResearchArticle, false
}

// ProcessingStatus enumerates pipeline milestones stored in the archive.
type ProcessingStatus string

const (
	StatusFetched    ProcessingStatus = "fetched"
	StatusSummarized ProcessingStatus = "summarized"
	StatusFailed     ProcessingStatus = "summary_failed"
	StatusReported   ProcessingStatus = "reported"
)

// ArchivedArticle is the snapshot persisted after a report has been delivered.
type ArchivedArticle struct {
	Article    Article
	ReportDate time.Time
	Status     ProcessingStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
