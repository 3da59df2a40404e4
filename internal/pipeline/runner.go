// Package pipeline drives one pass over the watchlist.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
	"github.com/Adda-Baaj/stock-alerts/internal/logger"
	"github.com/Adda-Baaj/stock-alerts/internal/movement"
	"github.com/Adda-Baaj/stock-alerts/pkg/providers"
)

// Notifier is the notification step consumed by the runner.
type Notifier interface {
	Notify(ctx context.Context, entry domain.WatchlistEntry, change domain.ChangeResult, articles []domain.Article) (int, error)
}

// EntryFailure records why one watchlist entry was not fully processed.
type EntryFailure struct {
	Entry domain.WatchlistEntry
	Stage string
	Err   error
}

func (f EntryFailure) Error() string {
	return fmt.Sprintf("%s: %s: %v", f.Entry.Symbol, f.Stage, f.Err)
}

func (f EntryFailure) Unwrap() error { return f.Err }

// Report summarises a run.
type Report struct {
	Entries  int
	Notified int // entries with at least one accepted send
	Sent     int
	Failures []EntryFailure
}

// Runner processes watchlist entries one at a time.
type Runner struct {
	prices   providers.PriceFetcher
	news     providers.NewsFetcher
	notifier Notifier
	log      logger.Logger
}

// NewRunner wires the fetchers and notifier.
func NewRunner(prices providers.PriceFetcher, news providers.NewsFetcher, notifier Notifier, log logger.Logger) *Runner {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Runner{prices: prices, news: news, notifier: notifier, log: log}
}

// Run processes every entry in order. A failing entry is logged and skipped; the
// returned error combines every failure and is nil only when all entries succeeded.
func (r *Runner) Run(ctx context.Context, entries []domain.WatchlistEntry) (Report, error) {
	report := Report{Entries: len(entries)}
	var errs error

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			for _, skipped := range entries[i:] {
				f := EntryFailure{Entry: skipped, Stage: "cancelled", Err: err}
				report.Failures = append(report.Failures, f)
				errs = multierr.Append(errs, f)
			}
			break
		}

		sent, stage, err := r.processEntry(ctx, entry)
		report.Sent += sent
		if sent > 0 {
			report.Notified++
		}
		if err != nil {
			f := EntryFailure{Entry: entry, Stage: stage, Err: err}
			report.Failures = append(report.Failures, f)
			errs = multierr.Append(errs, f)
			r.log.ErrorObj("watchlist entry failed", "entry_error", map[string]any{
				"symbol":  entry.Symbol,
				"company": entry.CompanyName,
				"stage":   stage,
				"error":   err.Error(),
			})
		}
	}

	r.log.InfoObj("watchlist run complete", "run_summary", map[string]any{
		"entries":  report.Entries,
		"notified": report.Notified,
		"sent":     report.Sent,
		"failed":   len(report.Failures),
	})
	return report, errs
}

// processEntry runs one entry through prices, change, news and notification.
func (r *Runner) processEntry(ctx context.Context, entry domain.WatchlistEntry) (int, string, error) {
	newer, older, err := r.prices.LatestCloses(ctx, entry.Symbol)
	if err != nil {
		return 0, "prices", err
	}

	change, err := movement.Calculate(newer.Close, older.Close)
	if err != nil {
		return 0, "change", fmt.Errorf("%s on %s: %w", entry.Symbol, older.Date.Format("2006-01-02"), err)
	}

	articles, err := r.news.TopArticles(ctx, entry.CompanyName)
	if err != nil {
		return 0, "news", err
	}

	r.log.InfoObj("entry evaluated", "entry", map[string]any{
		"symbol":         entry.Symbol,
		"company":        entry.CompanyName,
		"newer_close":    newer.Close.String(),
		"newer_date":     newer.Date.Format("2006-01-02"),
		"older_close":    older.Close.String(),
		"older_date":     older.Date.Format("2006-01-02"),
		"percent_change": change.Percent.Round(4).String(),
		"direction":      change.Direction.String(),
		"articles":       articlesForLog(articles),
	})

	sent, err := r.notifier.Notify(ctx, entry, change, articles)
	if err != nil {
		return sent, "notify", err
	}
	return sent, "", nil
}

func articlesForLog(articles []domain.Article) []map[string]any {
	out := make([]map[string]any, 0, len(articles))
	for _, a := range articles {
		out = append(out, map[string]any{
			"source":   a.SourceName,
			"headline": a.Headline,
			"body":     a.Body,
		})
	}
	return out
}
