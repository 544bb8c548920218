package kuma

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"statusmirror/internal/domain"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Fetcher retrieves the upstream status-page HTML and the heartbeat API
// response. It is safe for concurrent use; every failure is surfaced as a
// typed *domain.FetchError so callers can branch on unreachable vs error body.
type Fetcher struct {
	client  *resty.Client
	baseURL string
}

// FetcherOptions is the request-options bag applied to every upstream call.
type FetcherOptions struct {
	BaseURL      string
	Timeout      time.Duration
	UserAgent    string
	MaxRedirects int
}

func NewFetcher(opts FetcherOptions) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = 3
	}

	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(opts.Timeout)
	client.SetHeader("user-agent", opts.UserAgent)
	client.SetHeader("accept", "text/html,application/json;q=0.9,*/*;q=0.8")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(opts.MaxRedirects))

	return &Fetcher{client: client, baseURL: opts.BaseURL}
}

// StatusHTMLPath returns the upstream path serving the rendered status page.
func StatusHTMLPath(pageID string) string {
	return fmt.Sprintf("/status/%s", url.PathEscape(pageID))
}

// HeartbeatPath returns the upstream heartbeat/monitor API path.
func HeartbeatPath(pageID string) string {
	return fmt.Sprintf("/api/status-page/heartbeat/%s", url.PathEscape(pageID))
}

// FetchStatusHTML retrieves the server-rendered status page for pageID.
func (f *Fetcher) FetchStatusHTML(ctx context.Context, pageID string) (string, error) {
	body, err := f.get(ctx, StatusHTMLPath(pageID))
	return string(body), err
}

// FetchHeartbeat retrieves the raw heartbeat API body for pageID. The body is
// consumed directly as JSON, not scraped.
func (f *Fetcher) FetchHeartbeat(ctx context.Context, pageID string) ([]byte, error) {
	return f.get(ctx, HeartbeatPath(pageID))
}

func (f *Fetcher) get(ctx context.Context, path string) ([]byte, error) {
	endpoint := f.baseURL + path

	res, err := f.client.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, &domain.FetchError{Endpoint: endpoint, Unreachable: true, Err: err}
	}
	if !res.IsSuccess() {
		return nil, &domain.FetchError{Endpoint: endpoint, Status: res.StatusCode()}
	}
	return res.Body(), nil
}
