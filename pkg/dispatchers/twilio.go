package dispatchers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
)

// TwilioBaseURL is the public Twilio REST endpoint.
const TwilioBaseURL = "https://api.twilio.com"

// twilioSender implements smsSender for the Twilio Messages API.
type twilioSender struct {
	client     *resty.Client
	accountSID string
	from       string
	log        Logger
}

type twilioMessage struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

type twilioError struct {
	Code     int    `json:"code"`
	Message  string `json:"message"`
	MoreInfo string `json:"more_info"`
}

// newTwilioSender builds a Twilio sender authenticated with the account SID and auth token.
func newTwilioSender(cfg *TwilioConfig, log Logger) (smsSender, error) {
	if cfg == nil {
		return nil, errors.New("twilio configuration is missing")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = TwilioBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = twilioDefaultTimeout
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetTimeout(timeout).
		SetRetryCount(0)

	return &twilioSender{
		client:     client,
		accountSID: cfg.AccountSID,
		from:       cfg.From,
		log:        ensureLogger(log),
	}, nil
}

// SendSMS creates one outbound message and returns its SID.
func (s *twilioSender) SendSMS(ctx context.Context, to, body string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("accountSid", s.accountSID).
		SetFormData(map[string]string{
			"Body": body,
			"From": s.from,
			"To":   to,
		}).
		Post("/2010-04-01/Accounts/{accountSid}/Messages.json")
	if err != nil {
		return "", fmt.Errorf("twilio request: %w", err)
	}

	if !resp.IsSuccess() {
		var apiErr twilioError
		msg := strings.TrimSpace(string(resp.Body()))
		if json.Unmarshal(resp.Body(), &apiErr) == nil && apiErr.Message != "" {
			msg = fmt.Sprintf("%s (code %d)", apiErr.Message, apiErr.Code)
		}
		s.log.ErrorObj("twilio send rejected", "dispatcher_twilio_error", map[string]any{
			"status": resp.StatusCode(),
			"error":  msg,
		})
		return "", fmt.Errorf("twilio status %d: %s", resp.StatusCode(), msg)
	}

	var out twilioMessage
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}
	if out.SID == "" {
		return "", errors.New("twilio response has no message sid")
	}

	s.log.DebugObj("twilio accepted message", "dispatcher_twilio_delivery", map[string]any{
		"message_sid": out.SID,
		"status":      out.Status,
	})
	return out.SID, nil
}
