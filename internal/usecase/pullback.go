package usecase

import (
	"sort"
	"sync"

	"PerpScan/internal/domain/models"

	"github.com/shopspring/decimal"
)

// PullbackTrackerConfig controls the watch threshold and retrace level.
type PullbackTrackerConfig struct {
	RiseThresholdPct decimal.Decimal
	RetraceRatio     decimal.Decimal
}

// watchEntry is one symbol under observation after a sharp rise.
type watchEntry struct {
	Trigger decimal.Decimal
	Cycles  int
}

// PullbackTracker watches symbols after a sharp single-candle rise and
// counts how many refresh cycles pass before the price retraces to the
// trigger level.
type PullbackTracker struct {
	cfg PullbackTrackerConfig

	mu        sync.Mutex
	watching  map[string]*watchEntry
	histogram map[int]int
	total     int
}

func NewPullbackTracker(cfg PullbackTrackerConfig) *PullbackTracker {
	return &PullbackTracker{
		cfg:       cfg,
		watching:  make(map[string]*watchEntry),
		histogram: make(map[int]int),
	}
}

// Observe processes one refresh cycle's candles for every symbol in
// universe order.
func (t *PullbackTracker) Observe(order []string, candles map[string][]models.RawCandle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, symbol := range order {
		series, ok := candles[symbol]
		if !ok || len(series) < 2 {
			continue
		}
		last := series[len(series)-1].Close
		prev := series[len(series)-2].Close

		if entry, watched := t.watching[symbol]; watched {
			entry.Cycles++
			if last.LessThanOrEqual(entry.Trigger) {
				t.histogram[entry.Cycles]++
				t.total++
				delete(t.watching, symbol)
			}
			continue
		}

		if prev.IsZero() {
			continue
		}
		rise := pctOf(last.Sub(prev), prev)
		if rise.GreaterThanOrEqual(t.cfg.RiseThresholdPct) {
			t.watching[symbol] = &watchEntry{Trigger: last.Mul(t.cfg.RetraceRatio)}
		}
	}
}

// PullbackStats is the tracker's read surface.
type PullbackStats struct {
	TotalPullbacks int           `json:"totalPullbacks"`
	Histogram      map[int]int   `json:"cyclesHistogram"`
	Watching       []WatchedCoin `json:"watching"`
}

// WatchedCoin is one symbol currently under observation.
type WatchedCoin struct {
	Symbol  string          `json:"symbol"`
	Trigger decimal.Decimal `json:"triggerPrice"`
	Cycles  int             `json:"cycles"`
}

// Stats returns a point-in-time copy of the tracker state.
func (t *PullbackTracker) Stats() PullbackStats {
	t.mu.Lock()
	defer t.mu.Unlock()

	hist := make(map[int]int, len(t.histogram))
	for k, v := range t.histogram {
		hist[k] = v
	}
	watching := make([]WatchedCoin, 0, len(t.watching))
	for symbol, entry := range t.watching {
		watching = append(watching, WatchedCoin{Symbol: symbol, Trigger: entry.Trigger, Cycles: entry.Cycles})
	}
	sort.Slice(watching, func(i, j int) bool { return watching[i].Symbol < watching[j].Symbol })

	return PullbackStats{TotalPullbacks: t.total, Histogram: hist, Watching: watching}
}
