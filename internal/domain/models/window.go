package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// BaseIntervalMinutes is the candle cadence everything else is derived from.
const BaseIntervalMinutes = 5

// Window is an aggregation span expressed in minutes; always a multiple of
// the base interval.
type Window int

// Label returns the exchange-style interval label, e.g. "30m".
func (w Window) Label() string { return fmt.Sprintf("%dm", int(w)) }

// Candles returns how many base candles the window spans.
func (w Window) Candles() int { return int(w) / BaseIntervalMinutes }

// WindowStats is the change/amplitude pair attached to leaderboard rows for
// multi-timeframe context.
type WindowStats struct {
	ChangePct    decimal.Decimal `json:"change"`
	AmplitudePct decimal.Decimal `json:"amplitude"`
}

// AggregatedWindow is one symbol's OHLC over one window, with derived
// percentages and a cross-reference to every other window the symbol has.
type AggregatedWindow struct {
	Symbol       string                 `json:"symbol"`
	Open         decimal.Decimal        `json:"open"`
	High         decimal.Decimal        `json:"high"`
	Low          decimal.Decimal        `json:"low"`
	Close        decimal.Decimal        `json:"close"`
	ChangePct    decimal.Decimal        `json:"change"`
	AmplitudePct decimal.Decimal        `json:"amplitude"`
	Cross        map[string]WindowStats `json:"others,omitempty"`
}

// Leaderboard is the top-K rows for one window, ordered by change descending.
type Leaderboard struct {
	Change []AggregatedWindow `json:"change"`
}

// StrongCoin wraps a flagged symbol for the read surface.
type StrongCoin struct {
	Symbol string `json:"symbol"`
}
