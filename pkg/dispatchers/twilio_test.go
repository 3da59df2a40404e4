package dispatchers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

func testMessage() domain.NotificationMessage {
	return domain.NotificationMessage{
		Symbol:     "AMZN",
		Direction:  domain.Up,
		Percent:    decimal.RequireFromString("1.34"),
		Headline:   "Headline one",
		Body:       "Body one",
		SourceName: "Ars Technica",
	}
}

func TestTwilioDispatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/2010-04-01/Accounts/AC123/Messages.json", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "AC123", user)
		assert.Equal(t, "token", pass)

		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "+15550001111", r.PostForm.Get("From"))
		assert.Equal(t, "+15552223333", r.PostForm.Get("To"))
		assert.Equal(t, "AMZN: 🔺1.34%\nHeadline: Headline one\nBody: Body one\nSource: Ars Technica", r.PostForm.Get("Body"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid": "SM0001", "status": "queued"}`))
	}))
	defer server.Close()

	d, err := newSMSDispatcher(context.Background(), twilioDispatcherConfig(server.URL), nil)
	require.NoError(t, err)

	id, err := d.Dispatch(context.Background(), testMessage())

	require.NoError(t, err)
	assert.Equal(t, "SM0001", id)
	assert.Equal(t, "sms", d.ID())
	assert.Equal(t, TypeSMS, d.Type())
}

func TestTwilioDispatchRejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		errPart string
	}{
		{
			name:    "invalid credentials",
			status:  http.StatusUnauthorized,
			body:    `{"code": 20003, "message": "Authenticate", "more_info": "https://www.twilio.com/docs/errors/20003", "status": 401}`,
			errPart: "Authenticate (code 20003)",
		},
		{
			name:    "invalid number",
			status:  http.StatusBadRequest,
			body:    `{"code": 21211, "message": "The 'To' number is not a valid phone number."}`,
			errPart: "not a valid phone number",
		},
		{
			name:    "outage without json",
			status:  http.StatusServiceUnavailable,
			body:    `unavailable`,
			errPart: "status 503: unavailable",
		},
		{
			name:    "success without sid",
			status:  http.StatusCreated,
			body:    `{}`,
			errPart: "no message sid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			d, err := newSMSDispatcher(context.Background(), twilioDispatcherConfig(server.URL), nil)
			require.NoError(t, err)

			_, err = d.Dispatch(context.Background(), testMessage())

			require.Error(t, err)
			assert.Contains(t, err.Error(), "sms provider twilio send failed")
			assert.Contains(t, err.Error(), tt.errPart)
		})
	}
}

func TestTwilioSenderTimeout(t *testing.T) {
	cfg := twilioDispatcherConfig("https://api.twilio.test")
	cfg.SMS.Twilio.Timeout = 750 * time.Millisecond

	sender, err := newTwilioSender(cfg.SMS.Twilio, nil)

	require.NoError(t, err)
	assert.Equal(t, 750*time.Millisecond, sender.(*twilioSender).client.GetClient().Timeout)
}

func twilioDispatcherConfig(baseURL string) DispatcherConfig {
	return DispatcherConfig{
		ID:   "sms",
		Type: TypeSMS,
		SMS: &SMSDispatcherConfig{
			Provider: SMSProviderTwilio,
			To:       "+15552223333",
			Twilio: &TwilioConfig{
				AccountSID: "AC123",
				AuthToken:  "token",
				From:       "+15550001111",
				BaseURL:    baseURL,
			},
		},
	}.normalized()
}
