package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NatureDaily/internal/config"
)

func TestChatClientComplete(t *testing.T) {
	t.Parallel()

	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A summary.  "}}]}`))
	}))
	defer server.Close()

	client := NewChatClient(config.SummarizerConfig{
		Endpoint:    server.URL,
		Model:       "deepseek-chat",
		APIKey:      "sk-test",
		Temperature: 0.3,
	})

	text, err := client.Complete(context.Background(), "hello", 800)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if text != "A summary." {
		t.Fatalf("unexpected text %q", text)
	}
	if got.Model != "deepseek-chat" || got.MaxTokens != 800 || len(got.Messages) != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Messages[0].Role != "system" || got.Messages[1].Content != "hello" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestChatClientSurfacesAPIErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewChatClient(config.SummarizerConfig{Endpoint: server.URL, Model: "m", APIKey: "k"})
	_, err := client.Complete(context.Background(), "hello", 0)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestChatClientMisconfigured(t *testing.T) {
	t.Parallel()

	if _, err := NewChatClient(config.SummarizerConfig{}).Complete(context.Background(), "x", 0); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}
