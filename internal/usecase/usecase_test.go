package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"PerpScan/internal/domain/models"

	"github.com/shopspring/decimal"

	"PerpScan/pkg/logger"
)

func testLogger() *logger.Logger {
	l, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	if err != nil {
		panic(err)
	}
	return l
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func candle(open, high, low, close, volume string) models.RawCandle {
	return models.RawCandle{
		Open:   dec(open),
		High:   dec(high),
		Low:    dec(low),
		Close:  dec(close),
		Volume: dec(volume),
	}
}

// flatCandles builds n identical candles at the given price.
func flatCandles(n int, price string) []models.RawCandle {
	out := make([]models.RawCandle, n)
	for i := range out {
		out[i] = candle(price, price, price, price, "100")
	}
	return out
}

var errUpstream = errors.New("upstream unavailable")

// fakeSource is a MarketDataSource backed by function fields. Unset fields
// fail the call.
type fakeSource struct {
	mu            sync.Mutex
	instruments   []models.Instrument
	instrumentErr error
	candles       map[string][]models.RawCandle
	candleErr     error
	candleDelay   time.Duration
	prices        map[string]decimal.Decimal
	priceErr      error
	positions     []models.Position
	positionErr   error

	listCalls     int
	candleCalls   int
	priceCalls    int
	positionCalls int
}

func (f *fakeSource) ListTradableSymbols(context.Context) ([]models.Instrument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.instrumentErr != nil {
		return nil, f.instrumentErr
	}
	return f.instruments, nil
}

func (f *fakeSource) GetCandles(_ context.Context, symbol string, _ int) ([]models.RawCandle, error) {
	f.mu.Lock()
	delay := f.candleDelay
	f.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.candleCalls++
	if f.candleErr != nil {
		return nil, f.candleErr
	}
	return f.candles[symbol], nil
}

func (f *fakeSource) GetTickerPrices(context.Context) (map[string]decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.priceCalls++
	if f.priceErr != nil {
		return nil, f.priceErr
	}
	out := make(map[string]decimal.Decimal, len(f.prices))
	for k, v := range f.prices {
		out[k] = v
	}
	return out, nil
}

func (f *fakeSource) GetPositions(context.Context) ([]models.Position, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.positionCalls++
	if f.positionErr != nil {
		return nil, f.positionErr
	}
	return f.positions, nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []models.Notification
	err  error
}

func (f *fakeNotifier) Send(_ context.Context, n models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeRuleStore struct {
	mu    sync.Mutex
	rules []models.AlertRule
	saves int
	err   error
}

func (f *fakeRuleStore) Load(context.Context) ([]models.AlertRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.rules, nil
}

func (f *fakeRuleStore) Save(_ context.Context, rules []models.AlertRule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.rules = append([]models.AlertRule(nil), rules...)
	f.saves++
	return nil
}

type nopMetrics struct{}

func (nopMetrics) RecordRefreshDuration(float64)   {}
func (nopMetrics) RecordUniverseSize(int)          {}
func (nopMetrics) RecordError(string)              {}
func (nopMetrics) RecordAlertTriggered(string)     {}
func (nopMetrics) RecordLastPrice(string, float64) {}
