package httpclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRestyClientGet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "AMZN", r.URL.Query().Get("symbol"))
		assert.Equal(t, "secret", r.URL.Query().Get("apikey"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewRestyClient(time.Second)
	query := url.Values{"symbol": {"AMZN"}, "apikey": {"secret"}}

	resp, err := client.Get(context.Background(), server.URL, query, map[string]string{"X-Test": "yes"})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body()))
}

func TestRestyClientPostJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var payload map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "AMZN", payload["symbol"])
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewRestyClient(time.Second)

	resp, err := client.PostJSON(context.Background(), server.URL, map[string]string{"symbol": "AMZN"}, nil)

	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode())
}

func TestRestyClientErrorDoesNotLeakQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewRestyClient(time.Second)

	_, err := client.Get(context.Background(), addr, url.Values{"apikey": {"top-secret"}}, nil)

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "top-secret")
}

func TestRedact(t *testing.T) {
	assert.Equal(t, "https://example.com/query", redact("https://user:pw@example.com/query?apikey=x"))
	assert.Equal(t, "<invalid url>", redact("://bad"))
}
