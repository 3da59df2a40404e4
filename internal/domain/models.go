package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Domain contains core models shared by the loader, providers, notifier and dispatchers.

type WatchlistEntry struct {
	Symbol      string
	CompanyName string
}

type PriceSample struct {
	Date  time.Time
	Close decimal.Decimal
}

// Direction of a price move between two closes.
type Direction int

const (
	Down Direction = iota
	Up
)

// Glyph returns the marker printed in front of the percent change.
func (d Direction) Glyph() string {
	if d == Up {
		return "🔺"
	}
	return "🔻"
}

func (d Direction) String() string {
	if d == Up {
		return "up"
	}
	return "down"
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

type ChangeResult struct {
	Percent   decimal.Decimal
	Direction Direction
}

type Article struct {
	SourceName string
	Headline   string
	Body       *string
}

// BodyText returns the article body, or an empty string when the provider sent none.
func (a Article) BodyText() string {
	if a.Body == nil {
		return ""
	}
	return *a.Body
}

type NotificationMessage struct {
	Symbol     string          `json:"symbol"`
	Direction  Direction       `json:"direction"`
	Percent    decimal.Decimal `json:"percent_change"`
	Headline   string          `json:"headline"`
	Body       string          `json:"body"`
	SourceName string          `json:"source"`
}

// Text renders the SMS body. The glyph carries the sign, so only the magnitude is printed.
func (m NotificationMessage) Text() string {
	return fmt.Sprintf("%s: %s%s%%\nHeadline: %s\nBody: %s\nSource: %s",
		m.Symbol,
		m.Direction.Glyph(),
		formatPercent(m.Percent),
		m.Headline,
		m.Body,
		m.SourceName,
	)
}

// formatPercent prints the magnitude rounded to two places, keeping at least
// one decimal: 1.34, 1.3, 5.0.
func formatPercent(p decimal.Decimal) string {
	s := p.Abs().Round(2).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
