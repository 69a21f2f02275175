package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NatureDaily/internal/domain"
)

type mapFetcher struct {
	pages map[string]string
	calls []string
}

func (f *mapFetcher) Fetch(_ context.Context, pageURL string) ([]byte, error) {
	f.calls = append(f.calls, pageURL)
	page, ok := f.pages[pageURL]
	if !ok {
		return nil, fmt.Errorf("%s returned 404 Not Found", pageURL)
	}
	return []byte(page), nil
}

const articlePageHTML = `<html><head>
<meta name="citation_author" content="Jane Doe">
<meta name="citation_author_institution" content="Institute of Optics, Rochester">
<meta name="citation_author" content="Wei Zhang">
<meta name="citation_author_institution" content="Tsinghua University">
<meta name="citation_author_email" content="wei@example.org">
<meta name="citation_author_institution" content="Institute of Optics, Rochester">
<meta name="citation_doi" content="doi:10.1038/s41566-025-01234-5">
<meta name="dc.type" content="Perspective">
<meta name="citation_publication_date" content="2025/06/27">
</head><body>
<section><div id="Abs1-content"><p>Integrated   photonics enables switching.</p></div></section>
</body></html>`

func TestDetailEnricherFillsMissingFields(t *testing.T) {
	t.Parallel()

	url := "https://www.nature.com/articles/s41566-025-01234-5"
	fetcher := &mapFetcher{pages: map[string]string{url: articlePageHTML}}
	enricher := NewDetailEnricher(fetcher, nil)

	article := domain.Article{Title: "Switching", Journal: "Nature Photonics", URL: url}
	require.NoError(t, enricher.Enrich(context.Background(), &article))

	assert.Equal(t, []string{"Jane Doe", "Wei Zhang"}, article.Authors)
	assert.Equal(t, []string{"Institute of Optics, Rochester", "Tsinghua University"}, article.Affiliations)
	assert.Equal(t, "Wei Zhang", article.CorrespondingAuthor)
	assert.Equal(t, "10.1038/s41566-025-01234-5", article.DOI)
	assert.Equal(t, domain.TypePerspective, article.Type)
	assert.Equal(t, "2025-06-27", article.PublishDate.Format("2006-01-02"))
	assert.Equal(t, "Integrated photonics enables switching.", article.Abstract)
}

func TestDetailEnricherKeepsListingValues(t *testing.T) {
	t.Parallel()

	url := "https://www.nature.com/articles/x"
	page := strings.Replace(articlePageHTML, `<div id="Abs1-content">`, `<div id="corresponding-author-list"><a href="#">Jane Doe</a></div><div id="Abs1-content">`, 1)
	fetcher := &mapFetcher{pages: map[string]string{url: page}}

	article := domain.Article{
		Journal:  "Nature",
		URL:      url,
		Authors:  []string{"Listing Author"},
		Abstract: "from listing",
	}
	require.NoError(t, NewDetailEnricher(fetcher, nil).Enrich(context.Background(), &article))

	assert.Equal(t, []string{"Listing Author"}, article.Authors)
	assert.Equal(t, "from listing", article.Abstract)
	assert.Equal(t, "Jane Doe", article.CorrespondingAuthor)
	assert.Equal(t, "10.1038/s41566-025-01234-5", article.DOI)
}

func TestDetailEnricherSkipsCompleteArticles(t *testing.T) {
	t.Parallel()

	fetcher := &mapFetcher{}
	article := domain.Article{
		Journal:  "Nature",
		URL:      "https://www.nature.com/articles/y",
		Authors:  []string{"A. Author"},
		Abstract: "abstract",
		DOI:      "10.1038/y",
	}
	require.NoError(t, NewDetailEnricher(fetcher, nil).Enrich(context.Background(), &article))
	assert.Empty(t, fetcher.calls)
}

func TestDetailEnricherReportsFetchErrors(t *testing.T) {
	t.Parallel()

	article := domain.Article{Journal: "Nature", URL: "https://www.nature.com/articles/missing"}
	err := NewDetailEnricher(&mapFetcher{}, nil).Enrich(context.Background(), &article)
	require.Error(t, err)
	assert.False(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "404")
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "日本", truncateRunes("日本語", 2))
	assert.Equal(t, "abc", truncateRunes("abc", 5))
}
