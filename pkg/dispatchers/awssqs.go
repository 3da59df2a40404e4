package dispatchers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// awsSQSSender enqueues notifications as JSON on one SQS queue.
type awsSQSSender struct {
	queueURL string
	client   sqsClient
	log      Logger
}

func newAWSSQSSender(ctx context.Context, cfg *AWSSQSConfig, log Logger) (queueSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("aws sqs configuration is missing")
	}

	awsCfg, err := staticAWSConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, err
	}

	return &awsSQSSender{
		queueURL: cfg.QueueURL,
		client:   sqs.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

// Send enqueues msg and returns the SQS message id.
func (s *awsSQSSender) Send(ctx context.Context, msg domain.NotificationMessage) (string, error) {
	payload, err := marshalNotification(msg)
	if err != nil {
		return "", err
	}

	attrs := make(map[string]types.MessageAttributeValue)
	for k, v := range notificationAttributes(msg) {
		attrs[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
	}

	resp, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(string(payload)),
		MessageAttributes: attrs,
	})
	if err != nil {
		s.log.ErrorObj("sqs enqueue failed", "dispatcher_sqs_error", map[string]any{
			"symbol": msg.Symbol,
			"queue":  s.queueURL,
			"error":  err.Error(),
		})
		return "", fmt.Errorf("enqueue %s notification: %w", msg.Symbol, err)
	}

	id := aws.ToString(resp.MessageId)
	s.log.DebugObj("sqs accepted notification", "dispatcher_sqs_delivery", map[string]any{
		"symbol":     msg.Symbol,
		"message_id": id,
	})
	return id, nil
}
