// Package app wires configuration into fetchers, dispatchers and the pipeline runner.
package app

import (
	"context"
	"fmt"

	"github.com/Adda-Baaj/stock-alerts/internal/config"
	"github.com/Adda-Baaj/stock-alerts/internal/logger"
	"github.com/Adda-Baaj/stock-alerts/internal/notify"
	"github.com/Adda-Baaj/stock-alerts/internal/pipeline"
	"github.com/Adda-Baaj/stock-alerts/internal/watchlist"
	"github.com/Adda-Baaj/stock-alerts/pkg/dispatchers"
	"github.com/Adda-Baaj/stock-alerts/pkg/httpclient"
	"github.com/Adda-Baaj/stock-alerts/pkg/providers"
)

// DefaultSMSDispatcherID names the Twilio dispatcher built from the sms_* settings.
const DefaultSMSDispatcherID = "sms"

// Run loads the watchlist and processes it. The watchlist is read before any
// network client is built, so a missing file fails fast.
func Run(ctx context.Context, cfg config.Config, log logger.Logger) (pipeline.Report, error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	entries, err := watchlist.Load(cfg.WatchlistFilePath)
	if err != nil {
		return pipeline.Report{}, err
	}
	log.InfoObj("watchlist loaded", "watchlist", map[string]any{
		"path":    cfg.WatchlistFilePath,
		"entries": len(entries),
	})

	runner, closeDispatchers, err := Build(ctx, cfg, log)
	if err != nil {
		return pipeline.Report{}, err
	}
	defer func() {
		if cerr := closeDispatchers(); cerr != nil {
			log.ErrorObj("closing dispatchers failed", "notifier", map[string]any{
				"error": cerr.Error(),
			})
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout)
	defer cancel()
	return runner.Run(ctx, entries)
}

// Build constructs the runner. The HTTP client and dispatchers are created once
// and reused for every entry; the returned func releases the dispatchers.
func Build(ctx context.Context, cfg config.Config, log logger.Logger) (*pipeline.Runner, func() error, error) {
	if log == nil {
		log = logger.NopLogger{}
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout)
	prices := providers.NewAlphaVantageFetcher(client, providers.Provider{
		BaseURL: cfg.MarketDataBaseURL,
		APIKey:  cfg.MarketDataAPIKey,
	})
	news := providers.NewNewsAPIFetcher(client, providers.Provider{
		BaseURL: cfg.NewsBaseURL,
		APIKey:  cfg.NewsAPIKey,
	})

	cfgs, err := DispatcherConfigs(cfg)
	if err != nil {
		return nil, nil, err
	}
	ds, err := dispatchers.DefaultBuilders().Build(ctx, cfgs, log)
	if err != nil {
		return nil, nil, err
	}

	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.ID())
	}
	log.InfoObj("notifier ready", "notifier", map[string]any{
		"dispatchers": ids,
		"dry_run":     len(ds) == 0,
		"threshold":   cfg.Threshold().String(),
		"absolute":    cfg.AbsoluteThreshold,
	})

	gate := notify.Gate{Threshold: cfg.Threshold(), Absolute: cfg.AbsoluteThreshold}
	closeAll := func() error { return dispatchers.CloseAll(ds) }
	return pipeline.NewRunner(prices, news, notify.New(gate, ds, log), log), closeAll, nil
}

// DispatcherConfigs returns the dispatcher entries a run should use: none in
// dry-run mode, the dispatchers file when set, otherwise a single Twilio SMS
// dispatcher built from the sms_* settings.
func DispatcherConfigs(cfg config.Config) ([]dispatchers.DispatcherConfig, error) {
	if cfg.DryRun {
		return nil, nil
	}

	if cfg.DispatchersFile != "" {
		cfgs, err := dispatchers.LoadFile(cfg.DispatchersFile)
		if err != nil {
			return nil, fmt.Errorf("load dispatchers: %w", err)
		}
		return dispatchers.Enabled(cfgs), nil
	}

	cfgs, err := dispatchers.Prepare(dispatchers.DispatcherConfig{
		ID:   DefaultSMSDispatcherID,
		Type: dispatchers.TypeSMS,
		SMS: &dispatchers.SMSDispatcherConfig{
			Provider: dispatchers.SMSProviderTwilio,
			To:       cfg.SMSToNumber,
			Twilio: &dispatchers.TwilioConfig{
				AccountSID: cfg.SMSAccountID,
				AuthToken:  cfg.SMSAuthToken,
				From:       cfg.SMSFromNumber,
				BaseURL:    cfg.SMSBaseURL,
				Timeout:    cfg.HTTPTimeout,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("default sms dispatcher: %w", err)
	}
	return cfgs, nil
}
