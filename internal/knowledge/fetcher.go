package knowledge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Fetcher retrieves raw document content by portal-relative path.
type Fetcher interface {
	// Fetch returns the response body, HTTP status code, and Last-Modified
	// time (zero when the server sent none).
	Fetch(ctx context.Context, path string) (body string, status int, lastModified time.Time, err error)
}

// HTTPFetcher fetches documents from the portal over HTTP.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

// NewHTTPFetcher creates a fetcher rooted at baseURL with the given timeout.
func NewHTTPFetcher(baseURL string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Fetch performs a GET for the portal-relative path.
func (f *HTTPFetcher) Fetch(ctx context.Context, path string) (string, int, time.Time, error) {
	url := f.baseURL + "/" + strings.TrimLeft(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", 0, time.Time{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", 0, time.Time{}, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", resp.StatusCode, time.Time{}, fmt.Errorf("read %s: %w", path, err)
	}

	var lastModified time.Time
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, parseErr := http.ParseTime(lm); parseErr == nil {
			lastModified = t
		}
	}
	return string(body), resp.StatusCode, lastModified, nil
}
