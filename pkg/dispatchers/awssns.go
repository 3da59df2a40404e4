package dispatchers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

type snsClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// awsSNSSender texts a phone number directly through SNS, no topic involved.
type awsSNSSender struct {
	senderID string
	smsType  string
	client   snsClient
	log      Logger
}

func newAWSSNSSender(ctx context.Context, cfg *AWSSNSSMSConfig, log Logger) (smsSender, error) {
	if cfg == nil {
		return nil, fmt.Errorf("aws sns configuration is missing")
	}

	awsCfg, err := staticAWSConfig(ctx, cfg.Region, cfg.AccessKeyID, cfg.SecretAccessKey)
	if err != nil {
		return nil, err
	}

	return &awsSNSSender{
		senderID: cfg.SenderID,
		smsType:  cfg.SMSType,
		client:   sns.NewFromConfig(awsCfg),
		log:      ensureLogger(log),
	}, nil
}

func (s *awsSNSSender) smsAttributes() map[string]types.MessageAttributeValue {
	attrs := make(map[string]types.MessageAttributeValue, 2)
	set := func(name, val string) {
		if val != "" {
			attrs[name] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(val)}
		}
	}
	set("AWS.SNS.SMS.SMSType", s.smsType)
	set("AWS.SNS.SMS.SenderID", s.senderID)
	return attrs
}

// SendSMS publishes body to the phone number and returns the SNS message id.
func (s *awsSNSSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	resp, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(to),
		Message:           aws.String(body),
		MessageAttributes: s.smsAttributes(),
	})
	if err != nil {
		s.log.ErrorObj("sns sms send failed", "dispatcher_sns_error", map[string]any{
			"error": err.Error(),
		})
		return "", fmt.Errorf("publish sms to sns: %w", err)
	}

	id := aws.ToString(resp.MessageId)
	s.log.DebugObj("sns accepted sms", "dispatcher_sns_delivery", map[string]any{
		"message_id": id,
	})
	return id, nil
}
