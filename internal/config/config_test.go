package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("STOCK_ALERTS_MARKET_DATA_API_KEY", "av-key")
	t.Setenv("STOCK_ALERTS_NEWS_API_KEY", "news-key")
	t.Setenv("STOCK_ALERTS_SMS_ACCOUNT_ID", "AC123")
	t.Setenv("STOCK_ALERTS_SMS_AUTH_TOKEN", "token")
	t.Setenv("STOCK_ALERTS_SMS_FROM_NUMBER", "+15550001111")
	t.Setenv("STOCK_ALERTS_SMS_TO_NUMBER", "+15552223333")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "av-key", cfg.MarketDataAPIKey)
	assert.Equal(t, "+15552223333", cfg.SMSToNumber)
	assert.Equal(t, "saved_stocks.csv", cfg.WatchlistFilePath)
	assert.Equal(t, "1", cfg.Threshold().String())
	assert.False(t, cfg.AbsoluteThreshold)
	assert.Equal(t, "https://www.alphavantage.co/query", cfg.MarketDataBaseURL)
	assert.Equal(t, "https://newsapi.org/v2/everything", cfg.NewsBaseURL)
	assert.Equal(t, "https://api.twilio.com", cfg.SMSBaseURL)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.UsesDefaultSMS())
}

func TestLoadEnvOverrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOCK_ALERTS_CHANGE_THRESHOLD_PERCENT", "2.5")
	t.Setenv("STOCK_ALERTS_ABSOLUTE_THRESHOLD", "true")
	t.Setenv("STOCK_ALERTS_HTTP_TIMEOUT", "3s")
	t.Setenv("STOCK_ALERTS_LOG_FORMAT", " Console ")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "2.5", cfg.Threshold().String())
	assert.True(t, cfg.AbsoluteThreshold)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoadFlagsBeatEnv(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOCK_ALERTS_WATCHLIST_FILE_PATH", "from-env.csv")
	t.Setenv("STOCK_ALERTS_CHANGE_THRESHOLD_PERCENT", "2.5")

	cfg, err := Load([]string{"--watchlist", "from-flag.csv", "--threshold=0.75", "--dry-run", "--log-level", "DEBUG"})
	require.NoError(t, err)

	assert.Equal(t, "from-flag.csv", cfg.WatchlistFilePath)
	assert.Equal(t, "0.75", cfg.Threshold().String())
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigFile(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("STOCK_ALERTS_NEWS_API_KEY", "env-news-key")

	path := filepath.Join(t.TempDir(), "stock-alerts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
news_api_key: file-news-key
watchlist_file_path: /data/watchlist.csv
dispatchers_file: /etc/stock-alerts/dispatchers.yaml
run_timeout: 2m
`), 0o600))

	cfg, err := Load([]string{"--config", path})
	require.NoError(t, err)

	assert.Equal(t, "env-news-key", cfg.NewsAPIKey, "environment beats the config file")
	assert.Equal(t, "/data/watchlist.csv", cfg.WatchlistFilePath)
	assert.Equal(t, "/etc/stock-alerts/dispatchers.yaml", cfg.DispatchersFile)
	assert.Equal(t, 2*time.Minute, cfg.RunTimeout)
	assert.False(t, cfg.UsesDefaultSMS())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load([]string{"--no-such-flag"})
	assert.ErrorIs(t, err, ErrUsage)

	_, err = Load([]string{"--help"})
	assert.True(t, errors.Is(err, pflag.ErrHelp))

	_, err = Load([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")})
	assert.ErrorContains(t, err, "read config file")
}

func TestValidateReportsEverything(t *testing.T) {
	cfg := Config{
		WatchlistFilePath:      "saved_stocks.csv",
		ChangeThresholdPercent: -1,
		HTTPTimeout:            time.Second,
		RunTimeout:             time.Minute,
		LogFormat:              "xml",
	}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "missing required settings: market_data_api_key, news_api_key, sms_account_id, sms_auth_token, sms_from_number, sms_to_number")
	assert.Contains(t, msg, "change_threshold_percent must be >= 0")
	assert.Contains(t, msg, `log_format "xml" not supported`)
}

func TestValidateDryRunSkipsSMS(t *testing.T) {
	cfg := Config{
		MarketDataAPIKey:  "a",
		NewsAPIKey:        "b",
		WatchlistFilePath: "w.csv",
		HTTPTimeout:       time.Second,
		RunTimeout:        time.Minute,
		LogFormat:         "json",
		DryRun:            true,
	}

	assert.NoError(t, cfg.Validate())
}
