package usecase

import (
	"context"
	"sync"

	"PerpScan/internal/domain/models"
	drepo "PerpScan/internal/domain/repository"
	"PerpScan/pkg/logger"
)

// CandleFetcher pulls per-symbol candle series concurrently through a
// bounded worker pool. One symbol failing never aborts the batch; the
// fan-out joins on a full barrier before returning.
type CandleFetcher struct {
	source  drepo.MarketDataSource
	metrics drepo.Metrics
	log     *logger.Logger
	workers int
	limit   int
}

// NewCandleFetcher creates a fetcher with a fixed concurrency ceiling.
func NewCandleFetcher(source drepo.MarketDataSource, metrics drepo.Metrics, log *logger.Logger, workers, limit int) *CandleFetcher {
	if workers <= 0 {
		workers = 1
	}
	return &CandleFetcher{
		source:  source,
		metrics: metrics,
		log:     log,
		workers: workers,
		limit:   limit,
	}
}

// FetchAll fetches every symbol's series into a fresh map. Symbols whose
// fetch errored or returned nothing are simply absent.
func (f *CandleFetcher) FetchAll(ctx context.Context, symbols []string) map[string][]models.RawCandle {
	out := make(map[string][]models.RawCandle, len(symbols))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, f.workers)
	)

	for _, symbol := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			candles, err := f.source.GetCandles(ctx, symbol, f.limit)
			if err != nil {
				f.metrics.RecordError("fetch")
				f.log.Debug("candle fetch failed", logger.String("symbol", symbol), logger.Error(err))
				return
			}
			if len(candles) == 0 {
				return
			}

			mu.Lock()
			out[symbol] = candles
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return out
}
