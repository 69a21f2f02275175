package telegram

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NatureDaily/internal/domain"
	"NatureDaily/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

var ErrNotConfigured = errors.New("telegram notifier misconfigured")

// Notifier posts a short run digest to a Telegram chat via the bot API.
type Notifier struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		botToken: botToken,
		chatID:   chatID,
		apiBase:  defaultAPIBase,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// NotifyReport sends the title, date and per-journal counts.
func (n *Notifier) NotifyReport(ctx context.Context, report domain.Report) error {
	return n.send(ctx, Digest(report))
}

// Digest formats the report overview as Telegram HTML.
func Digest(report domain.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b> %s\n", html.EscapeString(report.Title()), report.Date().Format("2006-01-02"))
	if report.IsEmpty() {
		b.WriteString("No new articles today.")
		return b.String()
	}
	fmt.Fprintf(&b, "%d articles from %d journals\n", report.TotalArticles(), len(report.JournalsCovered()))
	for _, jc := range report.JournalCounts() {
		fmt.Fprintf(&b, "\n• %s: %d", html.EscapeString(jc.Journal), jc.Count)
	}
	return b.String()
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return ErrNotConfigured
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.botToken)
	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram error: %s", resp.Status)
	}

	return nil
}
