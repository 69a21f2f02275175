package render

import (
	"strings"
	"time"

	"NatureDaily/internal/domain"
)

const (
	AuthorsPlaceholder = "Authors unavailable"
	SummaryPlaceholder = "Summary unavailable"
)

type reportView struct {
	Title        string
	Date         string
	Total        int
	JournalCount int
	Sections     []sectionView
	GeneratedAt  string
}

type sectionView struct {
	Journal  string
	Articles []articleView
}

type articleView struct {
	Title               string
	URL                 string
	Authors             string
	CorrespondingAuthor string
	Affiliations        string
	Type                string
	Journal             string
	PublishDate         string
	Field               string
	Summary             string
	KeyPoints           []string
}

func newReportView(report domain.Report, generatedAt time.Time) reportView {
	journals := report.JournalsCovered()
	view := reportView{
		Title:        report.Title(),
		Date:         report.Date().Format("2006/01/02"),
		Total:        report.TotalArticles(),
		JournalCount: len(journals),
		GeneratedAt:  generatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, journal := range journals {
		articles := report.ArticlesByJournal(journal)
		if len(articles) == 0 {
			continue
		}
		section := sectionView{Journal: journal}
		for _, a := range articles {
			section.Articles = append(section.Articles, newArticleView(a))
		}
		view.Sections = append(view.Sections, section)
	}
	return view
}

func newArticleView(a domain.Article) articleView {
	view := articleView{
		Title:               a.Title,
		URL:                 a.URL,
		Authors:             strings.Join(a.Authors, ", "),
		CorrespondingAuthor: a.CorrespondingAuthor,
		Affiliations:        strings.Join(a.Affiliations, "; "),
		Type:                a.Type.String(),
		Journal:             a.Journal,
		Field:               a.Field.String(),
		Summary:             strings.TrimSpace(a.Summary),
		KeyPoints:           a.KeyPoints,
	}
	if view.Authors == "" {
		view.Authors = AuthorsPlaceholder
	}
	if view.Summary == "" {
		view.Summary = SummaryPlaceholder
	}
	if !a.PublishDate.IsZero() {
		view.PublishDate = a.PublishDate.Format("2006-01-02")
	}
	return view
}
