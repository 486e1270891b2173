package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"PerpScan/internal/domain/repository"
	"PerpScan/pkg/logger"
)

// RefreshOrchestrator runs the full snapshot pipeline: catalog, candle
// fan-out, window aggregation, ranking, strong classification and pullback
// observation, finishing with a single snapshot swap. At most one refresh
// runs at a time; overlapping requests are no-ops.
type RefreshOrchestrator struct {
	catalog    *SymbolCatalog
	fetcher    *CandleFetcher
	aggregator *WindowAggregator
	classifier *StrongClassifier
	pullback   *PullbackTracker
	holder     *SnapshotHolder
	metrics    repository.Metrics
	log        *logger.Logger

	interval time.Duration
	now      func() time.Time

	refreshing  atomic.Bool
	mu          sync.Mutex
	lastRefresh time.Time
}

func NewRefreshOrchestrator(
	catalog *SymbolCatalog,
	fetcher *CandleFetcher,
	aggregator *WindowAggregator,
	classifier *StrongClassifier,
	pullback *PullbackTracker,
	holder *SnapshotHolder,
	metrics repository.Metrics,
	log *logger.Logger,
	interval time.Duration,
) *RefreshOrchestrator {
	return &RefreshOrchestrator{
		catalog:    catalog,
		fetcher:    fetcher,
		aggregator: aggregator,
		classifier: classifier,
		pullback:   pullback,
		holder:     holder,
		metrics:    metrics,
		log:        log,
		interval:   interval,
		now:        time.Now,
	}
}

// InFlight reports whether a refresh is currently running.
func (o *RefreshOrchestrator) InFlight() bool {
	return o.refreshing.Load()
}

// RefreshIfStale refreshes only when the published snapshot is older than
// the configured interval. Callers read the current snapshot either way.
func (o *RefreshOrchestrator) RefreshIfStale(ctx context.Context) {
	o.mu.Lock()
	stale := o.lastRefresh.IsZero() || o.now().Sub(o.lastRefresh) >= o.interval
	o.mu.Unlock()
	if !stale {
		return
	}
	o.Refresh(ctx)
}

// Refresh runs one pipeline cycle. Returns false when another refresh was
// already in flight or the cycle aborted before publishing.
func (o *RefreshOrchestrator) Refresh(ctx context.Context) bool {
	if !o.refreshing.CompareAndSwap(false, true) {
		return false
	}
	defer o.refreshing.Store(false)

	started := o.now()

	symbols := o.catalog.Symbols(ctx)
	if len(symbols) == 0 {
		o.log.Warn("refresh aborted, empty symbol universe")
		o.metrics.RecordError("empty_universe")
		return false
	}
	o.metrics.RecordUniverseSize(len(symbols))

	candles := o.fetcher.FetchAll(ctx, symbols)
	if len(candles) == 0 {
		o.log.Warn("refresh aborted, no candle data fetched",
			logger.Int("symbols", len(symbols)))
		o.metrics.RecordError("empty_fetch")
		return false
	}

	perSymbol := o.aggregator.AggregateAll(candles)
	boards := o.aggregator.BuildLeaderboards(perSymbol, symbols)
	strong := o.classifier.ClassifyAll(candles)
	o.pullback.Observe(symbols, candles)

	completed := o.now()
	o.holder.Store(&Snapshot{
		Candles:      candles,
		PerSymbol:    perSymbol,
		Leaderboards: boards,
		Strong:       strong,
		RefreshedAt:  completed,
	})

	o.mu.Lock()
	o.lastRefresh = completed
	o.mu.Unlock()

	elapsed := completed.Sub(started)
	o.metrics.RecordRefreshDuration(elapsed.Seconds())
	o.log.Info("market snapshot refreshed",
		logger.Int("symbols", len(symbols)),
		logger.Int("with_data", len(candles)),
		logger.Int("strong", len(strong)),
		logger.Duration("elapsed", elapsed))
	return true
}
