package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "stock-alerts/1.0"

// Client is the HTTP surface used by providers and dispatchers.
type Client interface {
	Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*resty.Response, error)
	PostJSON(ctx context.Context, rawURL string, body any, headers map[string]string) (*resty.Response, error)
}

// restyClient implements Client on top of resty.
type restyClient struct {
	client *resty.Client
}

// NewRestyClient returns a Client with the given per-request timeout. Retries stay disabled.
func NewRestyClient(timeout time.Duration) Client {
	c := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)
	return &restyClient{client: c}
}

// Get issues a GET with the given query parameters.
func (c *restyClient) Get(ctx context.Context, rawURL string, query url.Values, headers map[string]string) (*resty.Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetQueryParamsFromValues(query).
		Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", redact(rawURL), scrub(err))
	}
	return resp, nil
}

// PostJSON posts body encoded as JSON.
func (c *restyClient) PostJSON(ctx context.Context, rawURL string, body any, headers map[string]string) (*resty.Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post(rawURL)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", redact(rawURL), scrub(err))
	}
	return resp, nil
}

// redact strips the query string so API keys never reach logs or errors.
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid url>"
	}
	u.RawQuery = ""
	u.User = nil
	return u.String()
}

// scrub redacts the URL carried by transport errors.
func scrub(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		uerr.URL = redact(uerr.URL)
	}
	return err
}
