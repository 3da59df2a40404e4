package dispatchers

import (
	"context"
	"fmt"
	"io"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

// queueSender abstracts provider-specific queue senders.
type queueSender interface {
	Send(ctx context.Context, msg domain.NotificationMessage) (string, error)
}

// queueDispatcher forwards notifications to a cloud queue provider as JSON.
type queueDispatcher struct {
	id       string
	provider string
	sender   queueSender
	log      Logger
}

// newQueueDispatcher creates a queue dispatcher for the configured provider.
func newQueueDispatcher(ctx context.Context, cfg DispatcherConfig, log Logger) (Dispatcher, error) {
	if cfg.Queue == nil {
		return nil, fmt.Errorf("dispatcher %q missing queue configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var (
		sender queueSender
		err    error
	)

	switch cfg.Queue.Provider {
	case QueueProviderAWSSQS:
		sender, err = newAWSSQSSender(ctx, cfg.Queue.AWS, log)
	case QueueProviderGCP:
		sender, err = newGCPPubSubSender(ctx, cfg.Queue.GCP, log)
	default:
		err = fmt.Errorf("queue provider %q is not supported", cfg.Queue.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &queueDispatcher{
		id:       cfg.ID,
		provider: cfg.Queue.Provider,
		sender:   sender,
		log:      ensureLogger(log),
	}, nil
}

func (d *queueDispatcher) ID() string   { return d.id }
func (d *queueDispatcher) Type() string { return TypeQueue }

// Close releases the provider client when it holds one.
func (d *queueDispatcher) Close() error {
	if c, ok := d.sender.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Dispatch forwards the notification to the configured queue provider.
func (d *queueDispatcher) Dispatch(ctx context.Context, msg domain.NotificationMessage) (string, error) {
	id, err := d.sender.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("queue provider %s send failed: %w", d.provider, err)
	}
	return id, nil
}
