package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NatureDaily/internal/config"
)

// ChatClient talks to an OpenAI-compatible chat completions endpoint (DeepSeek by default).
type ChatClient struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	temperature  float64
	httpClient   *http.Client
}

var _ Completer = (*ChatClient)(nil)

// NewChatClient builds a client from configuration.
func NewChatClient(cfg config.SummarizerConfig) *ChatClient {
	return &ChatClient{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: cfg.SystemPrompt,
		temperature:  cfg.Temperature,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends one user prompt and returns the first choice.
func (c *ChatClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if c == nil {
		return "", fmt.Errorf("chat client is nil")
	}
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("chat client misconfigured")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: safePrompt(c.systemPrompt)},
			{Role: "user", Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("send completion: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat completion error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode completion: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a research analyst who summarizes scientific papers precisely."
	}
	return prompt
}
