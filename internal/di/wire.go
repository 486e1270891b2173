//go:build wireinject
// +build wireinject

package di

import (
	"PerpScan/pkg/config"
	"PerpScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideMarketDataSource,
		ProvideNotifier,
		ProvideRuleStore,

		// Use cases
		ProvideSymbolCatalog,
		ProvideCandleFetcher,
		ProvideWindowAggregator,
		ProvideStrongClassifier,
		ProvidePullbackTracker,
		ProvideSnapshotHolder,
		ProvideRefreshOrchestrator,
		ProvideAlertEngine,

		// HTTP surface
		ProvideMarketHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
