package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NatureDaily/internal/scanner"
)

const feedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"
     xmlns:dc="http://purl.org/dc/elements/1.1/"
     xmlns:prism="http://prismstandard.org/namespaces/basic/2.0/">
  <channel>
    <title>Nature Photonics</title>
    <link>https://www.nature.com/nphoton</link>
    <description>Latest research</description>
    <item>
      <title>Chip-scale optical isolators</title>
      <link>https://www.nature.com/articles/s41566-025-00001-1</link>
      <description><![CDATA[<p>Nature Photonics, Published online: 27 June 2025; <b>isolators</b> on chip.</p>]]></description>
      <dc:creator>Ada Lovelace</dc:creator>
      <dc:creator>Alan Turing</dc:creator>
      <dc:date>2025-06-27</dc:date>
      <prism:doi>10.1038/s41566-025-00001-1</prism:doi>
    </item>
    <item>
      <title>Untitled link-less item</title>
    </item>
    <item>
      <title>Quantum dot lasers</title>
      <link>https://www.nature.com/articles/s41566-025-00002-2</link>
      <pubDate>Thu, 26 Jun 2025 00:00:00 GMT</pubDate>
    </item>
  </channel>
</rss>`

func TestRSSScannerScan(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(feedXML))
	}))
	defer server.Close()

	sc := NewRSSScanner(NewHTTPFetcher(server.Client(), ""), nil)
	articles, err := sc.Scan(context.Background(), scanner.Request{
		Day:     time.Date(2025, time.June, 27, 0, 0, 0, 0, time.UTC),
		Journal: "Nature Photonics",
		URL:     server.URL + "/nphoton.rss",
	})
	require.NoError(t, err)
	require.Len(t, articles, 2)

	first := articles[0]
	assert.Equal(t, "Chip-scale optical isolators", first.Title)
	assert.Equal(t, []string{"Ada Lovelace", "Alan Turing"}, first.Authors)
	assert.Equal(t, "10.1038/s41566-025-00001-1", first.DOI)
	assert.Equal(t, "Nature Photonics, Published online: 27 June 2025; isolators on chip.", first.Abstract)
	assert.Equal(t, "2025-06-27", first.PublishDate.Format("2006-01-02"))
	assert.Equal(t, "Nature Photonics", first.Journal)

	assert.Equal(t, "2025-06-26", articles[1].PublishDate.Format("2006-01-02"))
	assert.Empty(t, articles[1].Authors)
}

func TestRSSScannerRejectsMissingURL(t *testing.T) {
	t.Parallel()

	_, err := NewRSSScanner(nil, nil).Scan(context.Background(), scanner.Request{Journal: "Nature"})
	require.Error(t, err)
}

func TestStripTags(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "plain text", stripTags("  plain \n text "))
	assert.Equal(t, "bold and link", stripTags("<b>bold</b> and <a href='#'>link</a>"))
}
