package dispatchers

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

type pubsubTopic interface {
	Publish(ctx context.Context, msg *pubsub.Message) publishResult
	Stop()
}

type publishResult interface {
	Get(ctx context.Context) (string, error)
}

type topicAdapter struct {
	topic *pubsub.Topic
}

func (a topicAdapter) Publish(ctx context.Context, msg *pubsub.Message) publishResult {
	return a.topic.Publish(ctx, msg)
}

func (a topicAdapter) Stop() { a.topic.Stop() }

// gcpPubSubSender publishes notifications to a Pub/Sub topic and waits for the server id.
type gcpPubSubSender struct {
	topicName string
	topic     pubsubTopic
	client    io.Closer
	log       Logger
}

func newGCPPubSubSender(ctx context.Context, cfg *GCPQueueConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("gcp pubsub configuration is missing")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := pubsub.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client for project %s: %w", cfg.ProjectID, err)
	}

	return &gcpPubSubSender{
		topicName: cfg.Topic,
		topic:     topicAdapter{topic: client.Topic(cfg.Topic)},
		client:    client,
		log:       ensureLogger(log),
	}, nil
}

// Send publishes msg and blocks until Pub/Sub assigns a message id.
func (s *gcpPubSubSender) Send(ctx context.Context, msg domain.NotificationMessage) (string, error) {
	payload, err := marshalNotification(msg)
	if err != nil {
		return "", err
	}

	msgID, err := s.topic.Publish(ctx, &pubsub.Message{
		Data:       payload,
		Attributes: notificationAttributes(msg),
	}).Get(ctx)
	if err != nil {
		s.log.ErrorObj("pubsub publish failed", "dispatcher_gcp_pubsub_error", map[string]any{
			"symbol": msg.Symbol,
			"topic":  s.topicName,
			"error":  err.Error(),
		})
		return "", fmt.Errorf("publish %s notification to pubsub: %w", msg.Symbol, err)
	}

	s.log.DebugObj("pubsub accepted notification", "dispatcher_gcp_pubsub_delivery", map[string]any{
		"symbol":     msg.Symbol,
		"message_id": msgID,
	})
	return msgID, nil
}

// Close flushes pending publishes and closes the Pub/Sub client.
func (s *gcpPubSubSender) Close() error {
	s.topic.Stop()
	if s.client == nil {
		return nil
	}
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
