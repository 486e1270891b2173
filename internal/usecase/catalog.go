package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	drepo "PerpScan/internal/domain/repository"
	"PerpScan/pkg/logger"
)

// SymbolCatalog maintains the tradable-symbol universe with a time-boxed
// cache. A fetch failure falls back to the previous list; callers tolerate
// an empty universe.
type SymbolCatalog struct {
	source     drepo.MarketDataSource
	log        *logger.Logger
	quoteAsset string
	ttl        time.Duration

	mu        sync.Mutex
	symbols   []string
	fetchedAt time.Time
	now       func() time.Time
}

// NewSymbolCatalog creates a catalog filtering for actively tradable
// contracts quoted in quoteAsset.
func NewSymbolCatalog(source drepo.MarketDataSource, log *logger.Logger, quoteAsset string, ttl time.Duration) *SymbolCatalog {
	return &SymbolCatalog{
		source:     source,
		log:        log,
		quoteAsset: quoteAsset,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Symbols returns the cached universe, refreshing it when stale.
func (c *SymbolCatalog) Symbols(ctx context.Context) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if len(c.symbols) > 0 && now.Sub(c.fetchedAt) < c.ttl {
		return c.symbols
	}

	instruments, err := c.source.ListTradableSymbols(ctx)
	if err != nil {
		c.log.Warn("symbol list fetch failed, reusing cached universe",
			logger.Error(err), logger.Int("cached", len(c.symbols)))
		return c.symbols
	}

	seen := make(map[string]struct{}, len(instruments))
	symbols := make([]string, 0, len(instruments))
	for _, in := range instruments {
		if in.Status != "TRADING" || !strings.HasSuffix(in.Symbol, c.quoteAsset) {
			continue
		}
		if _, ok := seen[in.Symbol]; ok {
			continue
		}
		seen[in.Symbol] = struct{}{}
		symbols = append(symbols, in.Symbol)
	}

	c.symbols = symbols
	c.fetchedAt = now
	c.log.Info("symbol universe refreshed", logger.Int("symbols", len(symbols)))
	return c.symbols
}
