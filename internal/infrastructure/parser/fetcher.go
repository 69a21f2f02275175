package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chromedp/chromedp"

	"NatureDaily/internal/ports"
)

const (
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	defaultChromePath = "/usr/bin/chromium-browser"
	maxPageBytes      = 8 << 20
)

// HTTPFetcher downloads pages with a plain HTTP GET.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

var _ ports.PageFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher wires an HTTP client; timeout defaults to 30s.
func NewHTTPFetcher(client *http.Client, userAgent string) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPFetcher{client: client, userAgent: userAgent}
}

// Fetch returns the response body of a 200 response.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %s", pageURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", pageURL, err)
	}
	return body, nil
}

// BrowserFetcher renders pages in headless Chrome so script-built listings are visible.
type BrowserFetcher struct {
	chromePath string
	userAgent  string
	timeout    time.Duration
}

var _ ports.PageFetcher = (*BrowserFetcher)(nil)

// NewBrowserFetcher configures the Chrome binary; empty values take defaults.
func NewBrowserFetcher(chromePath, userAgent string, timeout time.Duration) *BrowserFetcher {
	if chromePath == "" {
		chromePath = defaultChromePath
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BrowserFetcher{chromePath: chromePath, userAgent: userAgent, timeout: timeout}
}

// Fetch navigates to the page, scrolls to the bottom and returns the rendered HTML.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(f.chromePath),
		chromedp.UserAgent(f.userAgent),
		chromedp.WindowSize(1920, 1080),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("headless", true),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx, opts...)
	defer cancel()
	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	browserCtx, cancel = context.WithTimeout(browserCtx, f.timeout)
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight);`, nil),
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &htmlContent),
	)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", pageURL, err)
	}
	return []byte(htmlContent), nil
}
