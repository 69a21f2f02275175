package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"NatureDaily/internal/config"
	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

// ErrEmptyInput means the article has no abstract to summarize.
var ErrEmptyInput = errors.New("article abstract is empty")

// Completer is a single-prompt LLM backend.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Summarizer asks the backend for a summary, then for key points.
type Summarizer struct {
	completer    Completer
	limiter      *QuotaLimiter
	maxTokens    int
	maxKeyPoints int
	logger       *slog.Logger
}

var _ ports.Summarizer = (*Summarizer)(nil)

// NewSummarizer wires a completer with the quota limiter; limiter may be nil.
func NewSummarizer(completer Completer, cfg config.SummarizerConfig, limiter *QuotaLimiter, log *slog.Logger) *Summarizer {
	maxKeyPoints := cfg.MaxKeyPoints
	if maxKeyPoints <= 0 {
		maxKeyPoints = 5
	}
	return &Summarizer{
		completer:    completer,
		limiter:      limiter,
		maxTokens:    cfg.MaxTokens,
		maxKeyPoints: maxKeyPoints,
		logger:       log,
	}
}

// NewFromConfig selects the provider named in configuration.
func NewFromConfig(ctx context.Context, cfg config.SummarizerConfig, quota config.QuotaConfig, log *slog.Logger) (*Summarizer, error) {
	var completer Completer
	switch strings.ToLower(cfg.Provider) {
	case "", "deepseek", "openai":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("summarizer %q: api key is not set", cfg.Provider)
		}
		completer = NewChatClient(cfg)
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		completer = client
	default:
		return nil, fmt.Errorf("unknown summarizer provider %q", cfg.Provider)
	}
	return NewSummarizer(completer, cfg, NewQuotaLimiter(quota), log), nil
}

// Summarize returns the summary and up to maxKeyPoints key points. A failed key
// point request still returns the summary with no key points.
func (s *Summarizer) Summarize(ctx context.Context, article domain.Article) (domain.Summary, error) {
	if strings.TrimSpace(article.Abstract) == "" {
		return domain.Summary{}, ErrEmptyInput
	}

	text, err := s.complete(ctx, summaryPrompt(article), s.maxTokens)
	if err != nil {
		return domain.Summary{}, fmt.Errorf("summary: %w", err)
	}
	if text == "" {
		return domain.Summary{}, fmt.Errorf("summary: empty completion")
	}

	result := domain.Summary{Text: text}

	raw, err := s.complete(ctx, keyPointsPrompt(article, text), s.maxTokens*3/5)
	if err != nil {
		s.warn("key points failed", "url", article.URL, "error", err)
		return result, nil
	}
	result.KeyPoints = ParseKeyPoints(raw, s.maxKeyPoints)
	return result, nil
}

func (s *Summarizer) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return s.completer.Complete(ctx, prompt, maxTokens)
}

func (s *Summarizer) warn(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Warn(msg, args...)
	}
}
