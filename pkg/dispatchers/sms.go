package dispatchers

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

// smsSender abstracts provider-specific SMS senders.
type smsSender interface {
	SendSMS(ctx context.Context, to, body string) (string, error)
}

// smsDispatcher sends the rendered message text to one phone number.
type smsDispatcher struct {
	id       string
	provider string
	to       string
	sender   smsSender
	log      Logger
}

// newSMSDispatcher creates an SMS dispatcher for the configured provider.
func newSMSDispatcher(ctx context.Context, cfg DispatcherConfig, log Logger) (Dispatcher, error) {
	if cfg.SMS == nil {
		return nil, fmt.Errorf("dispatcher %q missing sms configuration", cfg.ID)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	log = ensureLogger(log)

	var (
		sender smsSender
		err    error
	)

	switch cfg.SMS.Provider {
	case SMSProviderTwilio:
		sender, err = newTwilioSender(cfg.SMS.Twilio, log)
	case SMSProviderAWSSNS:
		sender, err = newAWSSNSSender(ctx, cfg.SMS.SNS, log)
	default:
		err = fmt.Errorf("sms provider %q is not supported", cfg.SMS.Provider)
	}
	if err != nil {
		return nil, err
	}

	return &smsDispatcher{
		id:       cfg.ID,
		provider: cfg.SMS.Provider,
		to:       cfg.SMS.To,
		sender:   sender,
		log:      log,
	}, nil
}

func (d *smsDispatcher) ID() string   { return d.id }
func (d *smsDispatcher) Type() string { return TypeSMS }

// Dispatch sends msg.Text() to the configured recipient.
func (d *smsDispatcher) Dispatch(ctx context.Context, msg domain.NotificationMessage) (string, error) {
	id, err := d.sender.SendSMS(ctx, d.to, msg.Text())
	if err != nil {
		return "", fmt.Errorf("sms provider %s send failed: %w", d.provider, err)
	}
	return id, nil
}
