// Package source fetches the raw text inputs the aggregation consumes.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
)

// HTTPFetcher retrieves one text source over HTTP.
type HTTPFetcher struct {
	name       string
	url        string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher for the given source. The name is used
// in errors and logs ("dataset", "coords").
func NewHTTPFetcher(name, url string, timeout time.Duration, logger *slog.Logger) *HTTPFetcher {
	return &HTTPFetcher{
		name: name,
		url:  url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Fetch performs a GET and returns the response body. Non-2xx responses
// are errors carrying the status. Bodies of ".gz" sources are gzip-decoded
// transparently.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", f.name, err)
	}

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", f.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d %s", f.name, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var reader io.Reader = resp.Body
	if strings.HasSuffix(strings.ToLower(f.url), ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: gzip: %w", f.name, err)
		}
		defer gz.Close()
		reader = gz
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read %s body: %w", f.name, err)
	}

	f.logger.Debug("source fetched",
		"source", f.name,
		"bytes", len(body),
		"duration", time.Since(start),
	)
	return body, nil
}
