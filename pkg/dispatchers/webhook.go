package dispatchers

import (
	"context"
	"fmt"
	"time"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
	"github.com/Adda-Baaj/stock-alerts/pkg/httpclient"
)

// httpDispatcher posts notifications as JSON to a webhook.
type httpDispatcher struct {
	id      string
	url     string
	headers map[string]string
	client  httpclient.Client
	log     Logger
}

// newHTTPDispatcher creates a webhook dispatcher.
func newHTTPDispatcher(_ context.Context, cfg DispatcherConfig, log Logger) (Dispatcher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("dispatcher %q missing http configuration", cfg.ID)
	}

	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = httpDefaultTimeoutSeconds * time.Second
	}

	return &httpDispatcher{
		id:      cfg.ID,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(timeout),
		log:     ensureLogger(log),
	}, nil
}

func (d *httpDispatcher) ID() string   { return d.id }
func (d *httpDispatcher) Type() string { return TypeHTTP }

// Dispatch posts the notification and returns the X-Request-Id response header when present.
func (d *httpDispatcher) Dispatch(ctx context.Context, msg domain.NotificationMessage) (string, error) {
	resp, err := d.client.PostJSON(ctx, d.url, notificationPayload{NotificationMessage: msg, Text: msg.Text()}, d.headers)
	if err != nil {
		return "", fmt.Errorf("webhook request: %w", err)
	}
	if !resp.IsSuccess() {
		d.log.ErrorObj("webhook dispatcher rejected", "dispatcher_http_error", map[string]any{
			"dispatcher_id": d.id,
			"status":        resp.StatusCode(),
		})
		return "", fmt.Errorf("webhook status %d", resp.StatusCode())
	}

	if id := resp.Header().Get("X-Request-Id"); id != "" {
		return id, nil
	}
	return fmt.Sprintf("http-%d", resp.StatusCode()), nil
}
