package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

const (
	alphaVantageProviderID = "alphavantage"

	// AlphaVantageBaseURL is the public query endpoint.
	AlphaVantageBaseURL = "https://www.alphavantage.co/query"

	alphaVantageDateLayout = "2006-01-02"
)

// alphaVantageFetcher reads daily closes from the TIME_SERIES_DAILY function.
type alphaVantageFetcher struct {
	client HTTPClient
	cfg    Provider
}

// NewAlphaVantageFetcher builds a PriceFetcher for Alpha Vantage.
func NewAlphaVantageFetcher(client HTTPClient, cfg Provider) PriceFetcher {
	if client == nil {
		client = DefaultHTTPClient()
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = AlphaVantageBaseURL
	}
	if cfg.ID == "" {
		cfg.ID = alphaVantageProviderID
	}
	return &alphaVantageFetcher{client: client, cfg: cfg}
}

func (f *alphaVantageFetcher) ID() string {
	return f.cfg.ID
}

type alphaVantageDailyResponse struct {
	TimeSeries   map[string]alphaVantageDailyBar `json:"Time Series (Daily)"`
	ErrorMessage string                          `json:"Error Message"`
	Note         string                          `json:"Note"`
	Information  string                          `json:"Information"`
}

type alphaVantageDailyBar struct {
	Close string `json:"4. close"`
}

// LatestCloses returns the two most recent closes. Samples are ordered by date, not by response order.
func (f *alphaVantageFetcher) LatestCloses(ctx context.Context, symbol string) (domain.PriceSample, domain.PriceSample, error) {
	samples, err := f.DailyCloses(ctx, symbol)
	if err != nil {
		return domain.PriceSample{}, domain.PriceSample{}, err
	}
	if len(samples) < 2 {
		return domain.PriceSample{}, domain.PriceSample{}, providerError(f.cfg.ID, symbol, 0,
			fmt.Errorf("time series has %d entries, need at least 2", len(samples)))
	}
	return samples[0], samples[1], nil
}

// DailyCloses returns every close of the compact daily series, newest first.
func (f *alphaVantageFetcher) DailyCloses(ctx context.Context, symbol string) ([]domain.PriceSample, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, providerError(f.cfg.ID, symbol, 0, errors.New("symbol is empty"))
	}

	query := url.Values{}
	query.Set("function", "TIME_SERIES_DAILY")
	query.Set("symbol", symbol)
	query.Set("outputsize", "compact")
	query.Set("apikey", f.cfg.APIKey)

	resp, err := f.client.Get(ctx, f.cfg.BaseURL, query, Headers(f.cfg))
	if err != nil {
		return nil, providerError(f.cfg.ID, symbol, 0, err)
	}
	if !resp.IsSuccess() {
		return nil, providerError(f.cfg.ID, symbol, resp.StatusCode(),
			fmt.Errorf("unexpected response: %s", responseSnippet(resp.Body())))
	}

	var body alphaVantageDailyResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, providerError(f.cfg.ID, symbol, resp.StatusCode(), fmt.Errorf("decode time series: %w", err))
	}

	if len(body.TimeSeries) == 0 {
		if msg := firstNonEmpty(body.ErrorMessage, body.Note, body.Information); msg != "" {
			return nil, providerError(f.cfg.ID, symbol, resp.StatusCode(), errors.New(msg))
		}
		return nil, providerError(f.cfg.ID, symbol, resp.StatusCode(),
			fmt.Errorf("response has no daily time series: %s", responseSnippet(resp.Body())))
	}

	return parseDailySeries(f.cfg.ID, symbol, body.TimeSeries)
}

// parseDailySeries converts the date-keyed series into samples sorted newest first.
func parseDailySeries(providerID, symbol string, series map[string]alphaVantageDailyBar) ([]domain.PriceSample, error) {
	samples := make([]domain.PriceSample, 0, len(series))
	for day, bar := range series {
		date, err := time.Parse(alphaVantageDateLayout, strings.TrimSpace(day))
		if err != nil {
			return nil, providerError(providerID, symbol, 0, fmt.Errorf("parse date %q: %w", day, err))
		}
		closePrice, err := decimal.NewFromString(strings.TrimSpace(bar.Close))
		if err != nil {
			return nil, providerError(providerID, symbol, 0, fmt.Errorf("parse close %q on %s: %w", bar.Close, day, err))
		}
		samples = append(samples, domain.PriceSample{Date: date, Close: closePrice})
	}

	sort.Slice(samples, func(i, j int) bool {
		return samples[i].Date.After(samples[j].Date)
	})
	return samples, nil
}
