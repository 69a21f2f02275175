package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"NatureDaily/internal/config"
)

// GeminiClient completes prompts with the Gemini API.
type GeminiClient struct {
	client       *genai.Client
	model        string
	systemPrompt string
	temperature  float32
}

var _ Completer = (*GeminiClient)(nil)

// NewGeminiClient builds a client from configuration.
func NewGeminiClient(ctx context.Context, cfg config.SummarizerConfig) (*GeminiClient, error) {
	return newGeminiClient(ctx, cfg, genai.HTTPOptions{})
}

func newGeminiClient(ctx context.Context, cfg config.SummarizerConfig, httpOptions genai.HTTPOptions) (*GeminiClient, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("gemini api key is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.GeminiAPIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{
		client:       client,
		model:        cfg.GeminiModel,
		systemPrompt: safePrompt(cfg.SystemPrompt),
		temperature:  float32(cfg.Temperature),
	}, nil
}

// Complete sends one prompt and returns the concatenated text parts.
func (g *GeminiClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	genCfg := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: g.systemPrompt}}},
		Temperature:       genai.Ptr(g.temperature),
	}
	if maxTokens > 0 {
		genCfg.MaxOutputTokens = int32(maxTokens)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if result == nil {
		return "", fmt.Errorf("gemini returned no result")
	}
	return strings.TrimSpace(result.Text()), nil
}
