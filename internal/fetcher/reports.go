package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Zachdehooge/damage-map/internal/report"
)

const userAgent = "damage-map/1.0 (github.com/Zachdehooge/damage-map)"

// maxBody caps how much of the feed is read.
const maxBody = 32 << 20

// Client fetches the report feed.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient returns a Client for the /data endpoint at url.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchReports issues a single GET against the feed and decodes the
// FeatureCollection. There is no retry: callers log the error and render
// the map without data.
func (c *Client) FetchReports(ctx context.Context) ([]report.Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch reports: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snip := body
		if len(snip) > 200 {
			snip = snip[:200]
		}
		return nil, fmt.Errorf("feed returned HTTP %d: %s", resp.StatusCode, string(snip))
	}

	reports, skipped, err := report.ParseFeatureCollection(body)
	if err != nil {
		return nil, err
	}
	if skipped > 0 {
		log.Printf("[fetcher] skipped %d features without a point geometry", skipped)
	}
	return reports, nil
}

// FetchReports is a one-shot convenience around Client.
func FetchReports(ctx context.Context, url string) ([]report.Report, error) {
	return NewClient(url, 15*time.Second).FetchReports(ctx)
}
