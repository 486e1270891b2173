package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// RawCandle is a single 5-minute OHLCV bar as returned by the exchange,
// immutable once parsed.
type RawCandle struct {
	OpenTime time.Time       `json:"openTime"`
	Open     decimal.Decimal `json:"open"`
	High     decimal.Decimal `json:"high"`
	Low      decimal.Decimal `json:"low"`
	Close    decimal.Decimal `json:"close"`
	Volume   decimal.Decimal `json:"volume"`
}

// Instrument is one tradable contract from the exchange instrument list.
type Instrument struct {
	Symbol     string `json:"symbol"`
	Status     string `json:"status"`
	QuoteAsset string `json:"quoteAsset"`
}

// Position is an open position with its running unrealized PnL.
type Position struct {
	Symbol           string          `json:"symbol"`
	UnrealizedProfit decimal.Decimal `json:"unRealizedProfit"`
	PositionAmt      decimal.Decimal `json:"positionAmt"`
	EntryPrice       decimal.Decimal `json:"entryPrice"`
}
