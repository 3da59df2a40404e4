// Package movement computes day-over-day price changes.
package movement

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/Adda-Baaj/stock-alerts/internal/domain"
)

// ErrZeroBase is returned when the older close is zero and no percentage exists.
var ErrZeroBase = errors.New("older close is zero")

var hundred = decimal.NewFromInt(100)

// Calculate returns 100 × (newer − older) / |older| and the direction of the move.
// Equal closes count as Down.
func Calculate(newer, older decimal.Decimal) (domain.ChangeResult, error) {
	if older.IsZero() {
		return domain.ChangeResult{}, ErrZeroBase
	}

	dir := domain.Down
	if newer.GreaterThan(older) {
		dir = domain.Up
	}

	return domain.ChangeResult{
		Percent:   newer.Sub(older).Mul(hundred).Div(older.Abs()),
		Direction: dir,
	}, nil
}
