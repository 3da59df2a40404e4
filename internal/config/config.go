// Package config resolves run settings from flags, environment, an optional config file and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
)

// EnvPrefix is prepended to every environment variable, e.g. STOCK_ALERTS_NEWS_API_KEY.
const EnvPrefix = "STOCK_ALERTS"

// ErrUsage marks command-line parsing failures.
var ErrUsage = errors.New("invalid command line")

// Config holds everything a run needs.
type Config struct {
	MarketDataAPIKey string `mapstructure:"market_data_api_key"`
	NewsAPIKey       string `mapstructure:"news_api_key"`

	SMSFromNumber string `mapstructure:"sms_from_number"`
	SMSToNumber   string `mapstructure:"sms_to_number"`
	SMSAccountID  string `mapstructure:"sms_account_id"`
	SMSAuthToken  string `mapstructure:"sms_auth_token"`

	WatchlistFilePath      string  `mapstructure:"watchlist_file_path"`
	ChangeThresholdPercent float64 `mapstructure:"change_threshold_percent"`
	AbsoluteThreshold      bool    `mapstructure:"absolute_threshold"`

	MarketDataBaseURL string `mapstructure:"market_data_base_url"`
	NewsBaseURL       string `mapstructure:"news_base_url"`
	SMSBaseURL        string `mapstructure:"sms_base_url"`

	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	RunTimeout  time.Duration `mapstructure:"run_timeout"`

	DispatchersFile string `mapstructure:"dispatchers_file"`
	DryRun          bool   `mapstructure:"dry_run"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"market_data_api_key":      "",
	"news_api_key":             "",
	"sms_from_number":          "",
	"sms_to_number":            "",
	"sms_account_id":           "",
	"sms_auth_token":           "",
	"watchlist_file_path":      "saved_stocks.csv",
	"change_threshold_percent": 1.0,
	"absolute_threshold":       false,
	"market_data_base_url":     "https://www.alphavantage.co/query",
	"news_base_url":            "https://newsapi.org/v2/everything",
	"sms_base_url":             "https://api.twilio.com",
	"http_timeout":             15 * time.Second,
	"run_timeout":              5 * time.Minute,
	"dispatchers_file":         "",
	"dry_run":                  false,
	"log_level":                "info",
	"log_format":               "json",
}

// flag name -> config key
var flagKeys = map[string]string{
	"watchlist":          "watchlist_file_path",
	"threshold":          "change_threshold_percent",
	"absolute-threshold": "absolute_threshold",
	"dispatchers":        "dispatchers_file",
	"dry-run":            "dry_run",
	"http-timeout":       "http_timeout",
	"run-timeout":        "run_timeout",
	"log-level":          "log_level",
	"log-format":         "log_format",
}

// NewFlagSet declares the command-line flags understood by Load.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.String("config", "", "optional config file (yaml, json or toml)")
	fs.String("watchlist", "saved_stocks.csv", "watchlist CSV path")
	fs.Float64("threshold", 1.0, "percent change that must be exceeded to notify")
	fs.Bool("absolute-threshold", false, "compare the size of the move, so large drops also notify")
	fs.String("dispatchers", "", "YAML/JSON file listing notification dispatchers")
	fs.Bool("dry-run", false, "compose notifications and log them without sending")
	fs.Duration("http-timeout", 15*time.Second, "timeout for each upstream request")
	fs.Duration("run-timeout", 5*time.Minute, "deadline for the whole run")
	fs.String("log-level", "info", "debug, info, warn or error")
	fs.String("log-format", "json", "json or console")
	return fs
}

// Load parses args and resolves the configuration. Precedence is flags, then
// STOCK_ALERTS_* environment variables, then the --config file, then defaults.
func Load(args []string) (Config, error) {
	fs := NewFlagSet("stock-alerts")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("%w: %v", ErrUsage, err)
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
		}
	}

	path, _ := fs.GetString("config")
	if path == "" {
		path = v.GetString("config")
	}
	if path = strings.TrimSpace(path); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.MarketDataAPIKey = strings.TrimSpace(c.MarketDataAPIKey)
	c.NewsAPIKey = strings.TrimSpace(c.NewsAPIKey)
	c.SMSFromNumber = strings.TrimSpace(c.SMSFromNumber)
	c.SMSToNumber = strings.TrimSpace(c.SMSToNumber)
	c.SMSAccountID = strings.TrimSpace(c.SMSAccountID)
	c.SMSAuthToken = strings.TrimSpace(c.SMSAuthToken)
	c.WatchlistFilePath = strings.TrimSpace(c.WatchlistFilePath)
	c.DispatchersFile = strings.TrimSpace(c.DispatchersFile)
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.LogFormat = strings.ToLower(strings.TrimSpace(c.LogFormat))
}

// Threshold returns the change threshold as a decimal.
func (c Config) Threshold() decimal.Decimal {
	return decimal.NewFromFloat(c.ChangeThresholdPercent)
}

// UsesDefaultSMS reports whether the built-in Twilio dispatcher is needed.
func (c Config) UsesDefaultSMS() bool {
	return !c.DryRun && c.DispatchersFile == ""
}

// Validate reports every problem at once.
func (c Config) Validate() error {
	var missing []string
	required := []struct {
		key, val string
		needed   bool
	}{
		{"market_data_api_key", c.MarketDataAPIKey, true},
		{"news_api_key", c.NewsAPIKey, true},
		{"sms_account_id", c.SMSAccountID, c.UsesDefaultSMS()},
		{"sms_auth_token", c.SMSAuthToken, c.UsesDefaultSMS()},
		{"sms_from_number", c.SMSFromNumber, c.UsesDefaultSMS()},
		{"sms_to_number", c.SMSToNumber, c.UsesDefaultSMS()},
		{"watchlist_file_path", c.WatchlistFilePath, true},
	}
	for _, r := range required {
		if r.needed && r.val == "" {
			missing = append(missing, r.key)
		}
	}

	var errs error
	if len(missing) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", ")))
	}
	if c.ChangeThresholdPercent < 0 {
		errs = multierr.Append(errs, fmt.Errorf("change_threshold_percent must be >= 0, got %v", c.ChangeThresholdPercent))
	}
	if c.HTTPTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("http_timeout must be positive"))
	}
	if c.RunTimeout <= 0 {
		errs = multierr.Append(errs, errors.New("run_timeout must be positive"))
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		errs = multierr.Append(errs, fmt.Errorf("log_format %q not supported", c.LogFormat))
	}
	return errs
}
