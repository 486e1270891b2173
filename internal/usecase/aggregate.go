package usecase

import (
	"sort"

	"PerpScan/internal/domain/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// pctOf computes (num / base) * 100 with 8-digit half-up rounding before
// scaling, matching the fixed-decimal contract of the derived percentages.
func pctOf(num, base decimal.Decimal) decimal.Decimal {
	return num.DivRound(base, 8).Mul(hundred)
}

// WindowAggregator derives per-window OHLC and percentages from raw 5m
// series and builds the per-window leaderboards.
type WindowAggregator struct {
	windows []models.Window
	topK    int
}

// NewWindowAggregator creates an aggregator for the configured window sizes.
func NewWindowAggregator(windowMinutes []int, topK int) *WindowAggregator {
	windows := make([]models.Window, 0, len(windowMinutes))
	for _, m := range windowMinutes {
		windows = append(windows, models.Window(m))
	}
	return &WindowAggregator{windows: windows, topK: topK}
}

// Windows returns the configured window sizes.
func (a *WindowAggregator) Windows() []models.Window { return a.windows }

// aggregate folds the most recent needed candles into one window. Returns
// false when the series is too short or the window open is zero.
func aggregate(symbol string, series []models.RawCandle, w models.Window) (models.AggregatedWindow, bool) {
	needed := w.Candles()
	if needed <= 0 || len(series) < needed {
		return models.AggregatedWindow{}, false
	}

	suffix := series[len(series)-needed:]
	open := suffix[0].Open
	if open.IsZero() {
		return models.AggregatedWindow{}, false
	}

	high := suffix[0].High
	low := suffix[0].Low
	for _, c := range suffix[1:] {
		if c.High.GreaterThan(high) {
			high = c.High
		}
		if c.Low.LessThan(low) {
			low = c.Low
		}
	}
	close := suffix[len(suffix)-1].Close

	return models.AggregatedWindow{
		Symbol:       symbol,
		Open:         open,
		High:         high,
		Low:          low,
		Close:        close,
		ChangePct:    pctOf(close.Sub(open), open),
		AmplitudePct: pctOf(high.Sub(low), open),
	}, true
}

// AggregateAll computes every configured window for every symbol. Symbols
// with insufficient history for a window are absent from that window's map.
func (a *WindowAggregator) AggregateAll(candles map[string][]models.RawCandle) map[string]map[models.Window]models.AggregatedWindow {
	out := make(map[string]map[models.Window]models.AggregatedWindow, len(candles))
	for symbol, series := range candles {
		perWindow := make(map[models.Window]models.AggregatedWindow, len(a.windows))
		for _, w := range a.windows {
			if agg, ok := aggregate(symbol, series, w); ok {
				perWindow[w] = agg
			}
		}
		if len(perWindow) > 0 {
			out[symbol] = perWindow
		}
	}
	return out
}

// BuildLeaderboards assembles the top-K change leaderboard per window.
// Symbols are walked in universe order so ties keep a stable order, and
// each row carries the symbol's stats for every other window it has.
func (a *WindowAggregator) BuildLeaderboards(perSymbol map[string]map[models.Window]models.AggregatedWindow, order []string) map[string]models.Leaderboard {
	boards := make(map[string]models.Leaderboard, len(a.windows))

	for _, w := range a.windows {
		rows := make([]models.AggregatedWindow, 0, len(order))
		for _, symbol := range order {
			windows, ok := perSymbol[symbol]
			if !ok {
				continue
			}
			row, ok := windows[w]
			if !ok {
				continue
			}

			cross := make(map[string]models.WindowStats, len(windows))
			for w2, agg2 := range windows {
				cross[w2.Label()] = models.WindowStats{
					ChangePct:    agg2.ChangePct,
					AmplitudePct: agg2.AmplitudePct,
				}
			}
			row.Cross = cross
			rows = append(rows, row)
		}

		sort.SliceStable(rows, func(i, j int) bool {
			return rows[i].ChangePct.GreaterThan(rows[j].ChangePct)
		})
		if len(rows) > a.topK {
			rows = rows[:a.topK]
		}
		boards[w.Label()] = models.Leaderboard{Change: rows}
	}

	return boards
}
