package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/scanner"
)

const listingHTML = `
<html><body>
<ul>
  <li>
    <article data-test="article" class="c-card">
      <h3 class="c-card__title"><a href="/articles/s41566-025-01234-5">Ultrafast  photonic
        switching</a></h3>
      <ul data-test="author-list">
        <li>Jane Doe</li>
        <li>Wei Zhang</li>
        <li>Google Scholar</li>
      </ul>
      <div data-test="article-description"><p>We demonstrate femtosecond switching.</p></div>
      <span data-test="article.type">Article</span>
      <time datetime="2025-06-27">27 Jun 2025</time>
    </article>
  </li>
  <li>
    <article data-test="article">
      <h3><a href="https://www.nature.com/articles/s41566-025-09999-1">Optical frequency combs</a></h3>
      <span class="c-meta__type">Review Article</span>
      <time datetime="2025-06-26">26 Jun 2025</time>
    </article>
  </li>
  <li>
    <article data-test="article">
      <p>card without a heading</p>
    </article>
  </li>
</ul>
</body></html>`

func TestParseCard(t *testing.T) {
	t.Parallel()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(listingHTML))
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	sc := NewNatureScanner(nil, nil)
	day := time.Date(2025, time.June, 27, 0, 0, 0, 0, time.UTC)
	article, ok := sc.parseCard(findArticleCards(doc).First(), "Nature Photonics", day)
	if !ok {
		t.Fatalf("expected card to parse")
	}

	if article.Title != "Ultrafast photonic switching" {
		t.Fatalf("unexpected title: %q", article.Title)
	}
	if article.URL != "https://www.nature.com/articles/s41566-025-01234-5" {
		t.Fatalf("unexpected url: %s", article.URL)
	}
	if strings.Join(article.Authors, "|") != "Jane Doe|Wei Zhang" {
		t.Fatalf("unexpected authors: %v", article.Authors)
	}
	if article.Abstract != "We demonstrate femtosecond switching." {
		t.Fatalf("unexpected abstract: %s", article.Abstract)
	}
	if article.Type != domain.TypeResearchArticle {
		t.Fatalf("unexpected type: %s", article.Type)
	}
	if article.PublishDate.Format("2006-01-02") != "2025-06-27" {
		t.Fatalf("unexpected publish date: %v", article.PublishDate)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"2025-06-27", "2025-06-27T08:00:00Z", "27 June 2025", "27 Jun 2025", " 27  Jun 2025 "} {
		got, ok := parseDate(in)
		if !ok {
			t.Fatalf("parseDate(%q) failed", in)
		}
		if got.Format("2006-01-02") != "2025-06-27" {
			t.Fatalf("parseDate(%q) = %v", in, got)
		}
	}
	if _, ok := parseDate("yesterday"); ok {
		t.Fatalf("expected failure for free text")
	}
}

func TestResolveURL(t *testing.T) {
	t.Parallel()

	cases := []struct{ in, want string }{
		{"/articles/x", "https://www.nature.com/articles/x"},
		{"https://doi.org/10.1038/x", "https://doi.org/10.1038/x"},
		{"#main", ""},
		{"", ""},
		{"javascript:void(0)", ""},
	}
	for _, c := range cases {
		if got := resolveURL(natureBaseURL, c.in); got != c.want {
			t.Fatalf("resolveURL(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNatureScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/nphoton/research-articles" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(listingHTML))
	}))
	defer server.Close()

	sc := NewNatureScanner(NewHTTPFetcher(server.Client(), ""), nil)

	req := scanner.Request{
		Day:     time.Date(2025, time.June, 27, 0, 0, 0, 0, time.UTC),
		Journal: "Nature Photonics",
		URL:     server.URL + "/nphoton/research-articles",
	}

	articles, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}
	if articles[1].Type != domain.TypeReview {
		t.Fatalf("expected review type, got %s", articles[1].Type)
	}
	if articles[1].Journal != "Nature Photonics" {
		t.Fatalf("unexpected journal: %s", articles[1].Journal)
	}

	req.Limit = 1
	limited, err := sc.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(limited))
	}
}

func TestNatureScannerPropagatesHTTPErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sc := NewNatureScanner(NewHTTPFetcher(server.Client(), ""), nil)
	_, err := sc.Scan(context.Background(), scanner.Request{Journal: "Nature", URL: server.URL})
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
