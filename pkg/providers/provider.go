package providers

import (
	"context"
	"strings"
	"time"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
	"github.com/Adda-Baaj/stock-alerts/pkg/httpclient"
)

// HTTPClient is the transport shared by all fetchers.
type HTTPClient = httpclient.Client

// Provider holds the endpoint and credentials of one upstream API.
type Provider struct {
	ID      string
	BaseURL string
	APIKey  string
	Headers map[string]string
}

// PriceFetcher retrieves daily closing prices for a symbol.
type PriceFetcher interface {
	ID() string
	// LatestCloses returns the two most recent daily closes, newest first.
	LatestCloses(ctx context.Context, symbol string) (newer, older domain.PriceSample, err error)
}

// NewsFetcher retrieves the most relevant articles for a free-text query.
type NewsFetcher interface {
	ID() string
	TopArticles(ctx context.Context, query string) ([]domain.Article, error)
}

// DefaultHTTPClient returns the client used when a fetcher is built without one.
func DefaultHTTPClient() HTTPClient { return httpclient.NewRestyClient(15 * time.Second) }

// Headers returns a copy of the provider's extra headers with blank entries removed.
func Headers(cfg Provider) map[string]string {
	if len(cfg.Headers) == 0 {
		return nil
	}
	out := make(map[string]string, len(cfg.Headers))
	for k, v := range cfg.Headers {
		key, val := strings.TrimSpace(k), strings.TrimSpace(v)
		if key == "" || val == "" {
			continue
		}
		out[key] = val
	}
	return out
}
