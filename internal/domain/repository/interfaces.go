package repository

import (
	"context"

	"PerpScan/internal/domain/models"

	"github.com/shopspring/decimal"
)

// MarketDataSource is the exchange boundary. Implementations surface
// upstream failures as errors; callers degrade to empty results, never
// crash.
type MarketDataSource interface {
	ListTradableSymbols(ctx context.Context) ([]models.Instrument, error)
	GetCandles(ctx context.Context, symbol string, limit int) ([]models.RawCandle, error)
	GetTickerPrices(ctx context.Context) (map[string]decimal.Decimal, error)
	GetPositions(ctx context.Context) ([]models.Position, error)
}

// Notifier delivers alert pushes. Fire and forget: a send failure does not
// roll back rule state.
type Notifier interface {
	Send(ctx context.Context, n models.Notification) error
}

// RuleStore persists the alert rule list. Load runs once at startup, Save is
// a whole-collection overwrite after every state change.
type RuleStore interface {
	Load(ctx context.Context) ([]models.AlertRule, error)
	Save(ctx context.Context, rules []models.AlertRule) error
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordRefreshDuration(seconds float64)
	RecordUniverseSize(n int)
	RecordError(kind string)
	RecordAlertTriggered(kind string)
	RecordLastPrice(symbol string, price float64)
}
