package domain

import (
	"encoding/json"
	"time"
)

// Report is the date-scoped collection of articles rendered and delivered once per run.
// It is built by Assemble and not modified afterwards.
type Report struct {
	title    string
	date     time.Time
	articles []Article
	journals []string
	byName   map[string][]int
}

// Assemble keeps articles published on the calendar day of date, in their
// original order, and groups them by journal in first-seen order.
// Invalid articles are skipped and returned so the caller can log them.
func Assemble(title string, date time.Time, articles []Article) (Report, []Article) {
	r := Report{
		title:  title,
		date:   date,
		byName: map[string][]int{},
	}

	var rejected []Article
	for _, article := range articles {
		if err := article.Validate(); err != nil {
			rejected = append(rejected, article)
			continue
		}
		if !SameDay(article.PublishDate, date) {
			continue
		}

		if _, seen := r.byName[article.Journal]; !seen {
			r.journals = append(r.journals, article.Journal)
		}
		r.byName[article.Journal] = append(r.byName[article.Journal], len(r.articles))
		r.articles = append(r.articles, cloneArticle(article))
	}

	return r, rejected
}

func (r Report) Title() string   { return r.title }
func (r Report) Date() time.Time { return r.date }

// TotalArticles is the number of articles that survived the date filter.
func (r Report) TotalArticles() int { return len(r.articles) }

// Articles returns a copy of the report's articles in scrape order.
func (r Report) Articles() []Article {
	out := make([]Article, len(r.articles))
	for i, a := range r.articles {
		out[i] = cloneArticle(a)
	}
	return out
}

// JournalsCovered lists journal names in first-seen order.
func (r Report) JournalsCovered() []string {
	return append([]string(nil), r.journals...)
}

// ArticlesByJournal returns the ordered subsequence of articles for journal.
func (r Report) ArticlesByJournal(journal string) []Article {
	idx := r.byName[journal]
	out := make([]Article, 0, len(idx))
	for _, i := range idx {
		out = append(out, cloneArticle(r.articles[i]))
	}
	return out
}

// JournalCount pairs a journal with the number of its articles.
type JournalCount struct {
	Journal string
	Count   int
}

// JournalCounts follows JournalsCovered order.
func (r Report) JournalCounts() []JournalCount {
	counts := make([]JournalCount, 0, len(r.journals))
	for _, name := range r.journals {
		counts = append(counts, JournalCount{Journal: name, Count: len(r.byName[name])})
	}
	return counts
}

// IsEmpty is true for the "no new articles today" report.
func (r Report) IsEmpty() bool { return len(r.articles) == 0 }

type articleJSON struct {
	Title               string        `json:"title"`
	Authors             []string      `json:"authors"`
	CorrespondingAuthor string        `json:"corresponding_author,omitempty"`
	Affiliations        []string      `json:"author_affiliations"`
	Journal             string        `json:"journal"`
	ArticleType         ArticleType   `json:"article_type"`
	PublishDate         string        `json:"publish_date"`
	URL                 string        `json:"url"`
	Abstract            string        `json:"abstract,omitempty"`
	DOI                 string        `json:"doi,omitempty"`
	Summary             string        `json:"summary"`
	KeyPoints           []string      `json:"key_points"`
	ResearchField       ResearchField `json:"research_field"`
}

type reportJSON struct {
	Date            string        `json:"date"`
	Title           string        `json:"title"`
	Articles        []articleJSON `json:"articles"`
	TotalArticles   int           `json:"total_articles"`
	JournalsCovered []string      `json:"journals_covered"`
}

// MarshalJSON dumps the report structure without placeholder substitution.
func (r Report) MarshalJSON() ([]byte, error) {
	out := reportJSON{
		Date:            r.date.Format("2006-01-02"),
		Title:           r.title,
		Articles:        make([]articleJSON, 0, len(r.articles)),
		TotalArticles:   len(r.articles),
		JournalsCovered: nonNil(r.journals),
	}
	for _, a := range r.articles {
		out.Articles = append(out.Articles, articleJSON{
			Title:               a.Title,
			Authors:             nonNil(a.Authors),
			CorrespondingAuthor: a.CorrespondingAuthor,
			Affiliations:        nonNil(a.Affiliations),
			Journal:             a.Journal,
			ArticleType:         a.Type,
			PublishDate:         a.PublishDate.Format("2006-01-02"),
			URL:                 a.URL,
			Abstract:            a.Abstract,
			DOI:                 a.DOI,
			Summary:             a.Summary,
			KeyPoints:           nonNil(a.KeyPoints),
			ResearchField:       a.Field,
		})
	}
	return json.Marshal(out)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func cloneArticle(a Article) Article {
	a.Authors = append([]string(nil), a.Authors...)
	a.Affiliations = append([]string(nil), a.Affiliations...)
	a.KeyPoints = append([]string(nil), a.KeyPoints...)
	return a
}
