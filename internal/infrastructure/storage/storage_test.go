package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
)

func TestSelectReportedQuery(t *testing.T) {
	t.Parallel()

	query, args, err := selectReportedQuery([]string{"https://n/a", "https://n/b"})
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT url, journal, title, summary, key_points, research_field, status, report_date FROM reported_articles WHERE url IN ($1,$2)",
		query)
	assert.Equal(t, []interface{}{"https://n/a", "https://n/b"}, args)
}

func TestUpsertReportedQuery(t *testing.T) {
	t.Parallel()

	article := domain.ArchivedArticle{
		Article: domain.Article{
			Title:       "Ultrafast switching",
			Journal:     "Nature Photonics",
			URL:         "https://n/a",
			DOI:         "10.1038/a",
			PublishDate: time.Date(2025, time.June, 27, 0, 0, 0, 0, time.UTC),
			Summary:     "Summary.",
			KeyPoints:   []string{"k1", "k2"},
			Field:       domain.FieldPhotonics,
		},
		ReportDate: time.Date(2025, time.June, 27, 7, 0, 0, 0, time.UTC),
		Status:     domain.StatusReported,
	}

	query, args, err := upsertReportedQuery(article)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(query,
		"INSERT INTO reported_articles (url,journal,title,doi,publish_date,report_date,summary,key_points,research_field,status) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10) ON CONFLICT (url) DO UPDATE"),
		query)
	require.Len(t, args, 10)
	assert.Equal(t, "2025-06-27", args[4])
	assert.Equal(t, "2025-06-27", args[5])
	assert.Equal(t, pq.StringArray{"k1", "k2"}, args[7])
	assert.Equal(t, "Photonics", args[8])
	assert.Equal(t, "reported", args[9])
}

func TestUpsertReportedQueryNullPublishDate(t *testing.T) {
	t.Parallel()

	_, args, err := upsertReportedQuery(domain.ArchivedArticle{Article: domain.Article{URL: "https://n/a"}})
	require.NoError(t, err)
	assert.Nil(t, args[4])
}

func TestNilArchiveIsNoop(t *testing.T) {
	t.Parallel()

	archive := NewPostgresArchive(nil)
	got, err := archive.AlreadyReported(context.Background(), []string{"https://n/a"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, archive.SaveReported(context.Background(), domain.ArchivedArticle{}))
	assert.NoError(t, archive.EnsureSchema(context.Background()))
}

func TestSummaryKeyAndCodec(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "naturedaily:summary:https://n/a", summaryKey("https://n/a"))

	got, err := decodeSummary([]byte(`{"summary":"s","key_points":["a","b"]}`))
	require.NoError(t, err)
	assert.Equal(t, domain.Summary{Text: "s", KeyPoints: []string{"a", "b"}}, got)

	_, err = decodeSummary([]byte("not json"))
	assert.Error(t, err)
}

func TestNewRedisSummaryCacheFailsFast(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisSummaryCache(ctx, config.CacheConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
