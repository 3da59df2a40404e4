package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationMessageText(t *testing.T) {
	body := "Op-ed: Why you should care about the GDPR."

	tests := []struct {
		name string
		msg  NotificationMessage
		want string
	}{
		{
			name: "upward move",
			msg: NotificationMessage{
				Symbol:     "AMZN",
				Direction:  Up,
				Percent:    decimal.RequireFromString("1.34"),
				Headline:   "How to design a US data privacy law",
				Body:       body,
				SourceName: "Ars Technica",
			},
			want: "AMZN: 🔺1.34%\nHeadline: How to design a US data privacy law\nBody: " + body + "\nSource: Ars Technica",
		},
		{
			name: "rounds to two decimals",
			msg: NotificationMessage{
				Symbol:    "TSLA",
				Direction: Up,
				Percent:   decimal.RequireFromString("2.34567"),
			},
			want: "TSLA: 🔺2.35%\nHeadline: \nBody: \nSource: ",
		},
		{
			name: "downward move prints magnitude",
			msg: NotificationMessage{
				Symbol:     "IBM",
				Direction:  Down,
				Percent:    decimal.RequireFromString("-5.0"),
				Headline:   "h",
				Body:       "b",
				SourceName: "s",
			},
			want: "IBM: 🔻5.0%\nHeadline: h\nBody: b\nSource: s",
		},
		{
			name: "trailing zero after rounding is dropped",
			msg: NotificationMessage{
				Symbol:    "MSFT",
				Direction: Up,
				Percent:   decimal.RequireFromString("1.2999"),
			},
			want: "MSFT: 🔺1.3%\nHeadline: \nBody: \nSource: ",
		},
		{
			name: "flat move",
			msg: NotificationMessage{
				Symbol:    "KO",
				Direction: Down,
				Percent:   decimal.Zero,
			},
			want: "KO: 🔻0.0%\nHeadline: \nBody: \nSource: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.msg.Text())
		})
	}
}

func TestArticleBodyText(t *testing.T) {
	body := "text"
	assert.Equal(t, "text", Article{Body: &body}.BodyText())
	assert.Equal(t, "", Article{}.BodyText())
}

func TestNotificationMessageJSON(t *testing.T) {
	msg := NotificationMessage{
		Symbol:    "AMZN",
		Direction: Down,
		Percent:   decimal.RequireFromString("-1.5"),
		Headline:  "h",
	}

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "down", decoded["direction"])
	assert.Equal(t, "-1.5", decoded["percent_change"])
	assert.Equal(t, "AMZN", decoded["symbol"])
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("cause")

	var loadErr *LoadError
	assert.True(t, errors.As(error(&LoadError{Path: "x.csv", Err: cause}), &loadErr))
	assert.ErrorIs(t, &LoadError{Err: cause}, cause)
	assert.ErrorIs(t, &ProviderError{Err: cause}, cause)
	assert.ErrorIs(t, &DispatchError{Err: cause}, cause)

	assert.Equal(t, `alphavantage "IBM": status 500: cause`, (&ProviderError{Provider: "alphavantage", Subject: "IBM", StatusCode: 500, Err: cause}).Error())
	assert.Equal(t, `newsapi "IBM": cause`, (&ProviderError{Provider: "newsapi", Subject: "IBM", Err: cause}).Error())
}
