// Package dispatchers delivers composed notifications to SMS providers, queues and webhooks.
package dispatchers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
	"github.com/Adda-Baaj/stock-alerts/internal/logger"
)

// Dispatcher delivers one notification and returns the provider-assigned message id.
type Dispatcher interface {
	ID() string
	Type() string
	Dispatch(ctx context.Context, msg domain.NotificationMessage) (string, error)
}

// Logger is the subset of logger.Logger used by dispatchers.
type Logger interface {
	DebugObj(msg, key string, obj map[string]any)
	InfoObj(msg, key string, obj map[string]any)
	ErrorObj(msg, key string, obj map[string]any)
}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return logger.NopLogger{}
	}
	return log
}

// notificationAttributes are the routing attributes attached to queued notifications.
func notificationAttributes(msg domain.NotificationMessage) map[string]string {
	return map[string]string{
		"symbol":    msg.Symbol,
		"direction": msg.Direction.String(),
	}
}

// notificationPayload is the JSON body written to queues and webhooks: the structured message plus its rendered text.
type notificationPayload struct {
	domain.NotificationMessage
	Text string `json:"text"`
}

func marshalNotification(msg domain.NotificationMessage) ([]byte, error) {
	payload, err := json.Marshal(notificationPayload{NotificationMessage: msg, Text: msg.Text()})
	if err != nil {
		return nil, fmt.Errorf("marshal notification for %s: %w", msg.Symbol, err)
	}
	return payload, nil
}
