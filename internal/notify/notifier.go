// Package notify decides whether a price move is worth a message and sends one per article.
package notify

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
	"github.com/Adda-Baaj/stock-alerts/internal/logger"
	"github.com/Adda-Baaj/stock-alerts/pkg/dispatchers"
)

// DefaultThreshold is the percent move a change must exceed to notify.
var DefaultThreshold = decimal.NewFromInt(1)

// Gate controls how the threshold is compared.
type Gate struct {
	Threshold decimal.Decimal
	// Absolute compares |percent| instead of the signed percent, so large drops also notify.
	Absolute bool
}

// Qualifies reports whether change passes the gate. The comparison is strict.
func (g Gate) Qualifies(change domain.ChangeResult) bool {
	p := change.Percent
	if g.Absolute {
		p = p.Abs()
	}
	return p.GreaterThan(g.Threshold)
}

// Notifier composes and dispatches messages for entries whose change passes the gate.
type Notifier struct {
	gate        Gate
	dispatchers []dispatchers.Dispatcher
	log         logger.Logger
}

// New builds a Notifier. With no dispatchers it only logs what it would send.
func New(gate Gate, ds []dispatchers.Dispatcher, log logger.Logger) *Notifier {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Notifier{gate: gate, dispatchers: ds, log: log}
}

// Compose builds the message for one article.
func Compose(entry domain.WatchlistEntry, change domain.ChangeResult, article domain.Article) domain.NotificationMessage {
	return domain.NotificationMessage{
		Symbol:     entry.Symbol,
		Direction:  change.Direction,
		Percent:    change.Percent,
		Headline:   article.Headline,
		Body:       article.BodyText(),
		SourceName: article.SourceName,
	}
}

// Notify sends one message per article to every dispatcher when change passes the gate.
// It returns the number of accepted sends. The first article whose dispatch fails stops the entry.
func (n *Notifier) Notify(ctx context.Context, entry domain.WatchlistEntry, change domain.ChangeResult, articles []domain.Article) (int, error) {
	if !n.gate.Qualifies(change) {
		n.log.DebugObj("change below threshold", "notify_skipped", map[string]any{
			"symbol":         entry.Symbol,
			"percent_change": change.Percent.String(),
			"threshold":      n.gate.Threshold.String(),
			"absolute":       n.gate.Absolute,
		})
		return 0, nil
	}

	sent := 0
	for _, article := range articles {
		msg := Compose(entry, change, article)
		text := msg.Text()

		if len(n.dispatchers) == 0 {
			n.log.InfoObj("notification composed (dry run)", "notification", map[string]any{
				"symbol": entry.Symbol,
				"text":   text,
			})
			continue
		}

		var errs error
		for _, d := range n.dispatchers {
			id, err := d.Dispatch(ctx, msg)
			if err != nil {
				errs = multierr.Append(errs, &domain.DispatchError{Dispatcher: d.ID(), Symbol: entry.Symbol, Err: err})
				continue
			}
			sent++
			n.log.InfoObj("notification dispatched", "notification", map[string]any{
				"symbol":          entry.Symbol,
				"dispatcher_id":   d.ID(),
				"dispatcher_type": d.Type(),
				"message_id":      id,
				"text":            text,
			})
		}
		if errs != nil {
			return sent, errs
		}
	}
	return sent, nil
}
