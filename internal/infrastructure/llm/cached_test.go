package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NatureDaily/internal/domain"
)

type memoryCache struct {
	items  map[string]domain.Summary
	getErr error
	puts   int
}

func (m *memoryCache) Get(_ context.Context, key string) (domain.Summary, bool, error) {
	if m.getErr != nil {
		return domain.Summary{}, false, m.getErr
	}
	s, ok := m.items[key]
	return s, ok, nil
}

func (m *memoryCache) Put(_ context.Context, key string, s domain.Summary) error {
	m.puts++
	m.items[key] = s
	return nil
}

type countingSummarizer struct {
	calls  int
	result domain.Summary
	err    error
}

func (c *countingSummarizer) Summarize(context.Context, domain.Article) (domain.Summary, error) {
	c.calls++
	return c.result, c.err
}

func TestCachedSummarizerHitAndMiss(t *testing.T) {
	t.Parallel()

	next := &countingSummarizer{result: domain.Summary{Text: "fresh", KeyPoints: []string{"k"}}}
	cache := &memoryCache{items: map[string]domain.Summary{
		"https://n/cached": {Text: "cached"},
	}}
	s := NewCachedSummarizer(next, cache, nil)

	hit, err := s.Summarize(context.Background(), domain.Article{URL: "https://n/cached"})
	require.NoError(t, err)
	assert.Equal(t, "cached", hit.Text)
	assert.Zero(t, next.calls)

	miss, err := s.Summarize(context.Background(), domain.Article{URL: "https://n/new"})
	require.NoError(t, err)
	assert.Equal(t, "fresh", miss.Text)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, "fresh", cache.items["https://n/new"].Text)
}

func TestCachedSummarizerDoesNotCacheFailures(t *testing.T) {
	t.Parallel()

	next := &countingSummarizer{err: errors.New("boom")}
	cache := &memoryCache{items: map[string]domain.Summary{}, getErr: errors.New("redis down")}
	s := NewCachedSummarizer(next, cache, nil)

	_, err := s.Summarize(context.Background(), domain.Article{URL: "https://n/x"})
	require.Error(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Zero(t, cache.puts)
}
