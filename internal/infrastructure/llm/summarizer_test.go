package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
)

type scriptedCompleter struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string, _ int) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return "", err
	}
	return s.replies[i], nil
}

var photonicsArticle = domain.Article{
	Title:    "Ultrafast switching",
	Journal:  "Nature Photonics",
	URL:      "https://www.nature.com/articles/x",
	Abstract: "We switch light in femtoseconds.",
}

func TestSummarizerReturnsSummaryAndKeyPoints(t *testing.T) {
	t.Parallel()

	c := &scriptedCompleter{replies: []string{"Summary text.", "1. a\n2. b\n3. c\n4. d\n5. e\n6. f"}}
	s := NewSummarizer(c, config.SummarizerConfig{MaxTokens: 1000}, nil, nil)

	got, err := s.Summarize(context.Background(), photonicsArticle)
	require.NoError(t, err)
	assert.Equal(t, "Summary text.", got.Text)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, got.KeyPoints)
	require.Len(t, c.prompts, 2)
	assert.Contains(t, c.prompts[1], "Summary text.")
}

func TestSummarizerEmptyAbstractSkipsAPI(t *testing.T) {
	t.Parallel()

	c := &scriptedCompleter{}
	s := NewSummarizer(c, config.SummarizerConfig{}, nil, nil)

	article := photonicsArticle
	article.Abstract = "   "
	_, err := s.Summarize(context.Background(), article)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, c.prompts)
}

func TestSummarizerSummaryFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("upstream down")
	c := &scriptedCompleter{errs: []error{boom}}
	s := NewSummarizer(c, config.SummarizerConfig{}, nil, nil)

	_, err := s.Summarize(context.Background(), photonicsArticle)
	assert.ErrorIs(t, err, boom)
}

func TestSummarizerKeyPointFailureKeepsSummary(t *testing.T) {
	t.Parallel()

	c := &scriptedCompleter{replies: []string{"Summary text.", ""}, errs: []error{nil, errors.New("timeout")}}
	s := NewSummarizer(c, config.SummarizerConfig{}, nil, nil)

	got, err := s.Summarize(context.Background(), photonicsArticle)
	require.NoError(t, err)
	assert.Equal(t, "Summary text.", got.Text)
	assert.Empty(t, got.KeyPoints)
}

func TestSummarizerStopsWhenQuotaExhausted(t *testing.T) {
	t.Parallel()

	c := &scriptedCompleter{replies: []string{"Summary text.", "1. a"}}
	limiter := NewQuotaLimiter(config.QuotaConfig{RequestsPerDay: 1})
	s := NewSummarizer(c, config.SummarizerConfig{}, limiter, nil)

	got, err := s.Summarize(context.Background(), photonicsArticle)
	require.NoError(t, err)
	assert.Empty(t, got.KeyPoints)

	_, err = s.Summarize(context.Background(), photonicsArticle)
	assert.ErrorIs(t, err, ErrQuotaExhausted)
	assert.Len(t, c.prompts, 1)
}

func TestNewFromConfigProviders(t *testing.T) {
	t.Parallel()

	_, err := NewFromConfig(context.Background(), config.SummarizerConfig{Provider: "deepseek"}, config.QuotaConfig{}, nil)
	assert.Error(t, err)

	s, err := NewFromConfig(context.Background(), config.SummarizerConfig{Provider: "deepseek", APIKey: "k"}, config.QuotaConfig{}, nil)
	require.NoError(t, err)
	assert.IsType(t, &ChatClient{}, s.completer)

	_, err = NewFromConfig(context.Background(), config.SummarizerConfig{Provider: "claude"}, config.QuotaConfig{}, nil)
	assert.Error(t, err)
}
