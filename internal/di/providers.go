package di

import (
	"fmt"

	"PerpScan/internal/domain/repository"
	"PerpScan/internal/handler/api"
	internalrepo "PerpScan/internal/repository"
	"PerpScan/internal/service/binance"
	"PerpScan/internal/service/notifier"
	"PerpScan/internal/usecase"
	"PerpScan/pkg/config"
	xhttp "PerpScan/pkg/http"
	applogger "PerpScan/pkg/logger"
	"PerpScan/pkg/metrics"
	"PerpScan/pkg/server"

	"github.com/shopspring/decimal"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideMarketDataSource creates the Binance futures REST client.
func ProvideMarketDataSource(cfg *config.Config) repository.MarketDataSource {
	return binance.New(
		cfg.Binance.BaseURL,
		cfg.Binance.APIKey,
		cfg.Binance.SecretKey,
		cfg.Binance.RequestTimeout,
		cfg.Binance.MaxRequestsSec,
	)
}

// ProvideNotifier selects the configured push channel.
func ProvideNotifier(cfg *config.Config) (repository.Notifier, error) {
	switch cfg.Notifier.Type {
	case "telegram":
		n, err := notifier.NewTelegram(cfg.Notifier.Telegram.BotToken, cfg.Notifier.Telegram.ChatID)
		if err != nil {
			return nil, fmt.Errorf("telegram notifier: %w", err)
		}
		return n, nil
	default:
		return notifier.NewWxPusher(cfg.Notifier.WxPusher.URL, cfg.Notifier.WxPusher.Token, cfg.Binance.RequestTimeout), nil
	}
}

// ProvideRuleStore selects the configured rule persistence backend.
func ProvideRuleStore(cfg *config.Config) repository.RuleStore {
	if cfg.Alerts.Store.Type == "redis" {
		return internalrepo.NewRedisRuleStore(internalrepo.RedisConfig{
			Addr:     cfg.Alerts.Store.Redis.Addr,
			Password: cfg.Alerts.Store.Redis.Password,
			DB:       cfg.Alerts.Store.Redis.DB,
		}, cfg.Alerts.Store.Key)
	}
	return internalrepo.NewFileRuleStore(cfg.Alerts.Store.Path)
}

// ProvideSymbolCatalog creates the TTL-cached symbol universe.
func ProvideSymbolCatalog(source repository.MarketDataSource, log *applogger.Logger, cfg *config.Config) *usecase.SymbolCatalog {
	return usecase.NewSymbolCatalog(source, log, cfg.Refresh.QuoteAsset, cfg.Refresh.SymbolCacheTTL)
}

// ProvideCandleFetcher creates the bounded kline fan-out.
func ProvideCandleFetcher(source repository.MarketDataSource, m repository.Metrics, log *applogger.Logger, cfg *config.Config) *usecase.CandleFetcher {
	return usecase.NewCandleFetcher(source, m, log, cfg.Binance.FetchWorkers, cfg.Refresh.KlineLimit)
}

// ProvideWindowAggregator creates the window aggregator and ranking builder.
func ProvideWindowAggregator(cfg *config.Config) *usecase.WindowAggregator {
	return usecase.NewWindowAggregator(cfg.Refresh.Windows, cfg.Refresh.TopK)
}

// ProvideStrongClassifier creates the strong-signal classifier.
func ProvideStrongClassifier(cfg *config.Config) *usecase.StrongClassifier {
	return usecase.NewStrongClassifier(usecase.StrongClassifierConfig{
		Lookback:          cfg.Strong.Lookback,
		MinPosRatio:       decimal.NewFromFloat(cfg.Strong.MinPosRatio),
		MinCumChangePct:   decimal.NewFromFloat(cfg.Strong.MinCumChangePct),
		VolumeSpikeRatio:  decimal.NewFromFloat(cfg.Strong.VolumeSpikeRatio),
		MinSpikeChangePct: decimal.NewFromFloat(cfg.Strong.MinSpikeChangePct),
	})
}

// ProvidePullbackTracker creates the pullback cycle tracker.
func ProvidePullbackTracker(cfg *config.Config) *usecase.PullbackTracker {
	return usecase.NewPullbackTracker(usecase.PullbackTrackerConfig{
		RiseThresholdPct: decimal.NewFromFloat(cfg.Pullback.RiseThresholdPct),
		RetraceRatio:     decimal.NewFromFloat(cfg.Pullback.RetraceRatio),
	})
}

// ProvideSnapshotHolder creates the published snapshot slot.
func ProvideSnapshotHolder() *usecase.SnapshotHolder {
	return usecase.NewSnapshotHolder()
}

// ProvideRefreshOrchestrator wires the full refresh pipeline.
func ProvideRefreshOrchestrator(
	catalog *usecase.SymbolCatalog,
	fetcher *usecase.CandleFetcher,
	aggregator *usecase.WindowAggregator,
	classifier *usecase.StrongClassifier,
	pullback *usecase.PullbackTracker,
	holder *usecase.SnapshotHolder,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.RefreshOrchestrator {
	return usecase.NewRefreshOrchestrator(catalog, fetcher, aggregator, classifier, pullback, holder, m, log, cfg.Refresh.Interval)
}

// ProvideAlertEngine creates the alert evaluation loop.
func ProvideAlertEngine(
	source repository.MarketDataSource,
	n repository.Notifier,
	store repository.RuleStore,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.AlertEngine {
	return usecase.NewAlertEngine(source, n, store, m, log, cfg.Alerts.Interval, cfg.Alerts.DefaultCooldown)
}

// ProvideMarketHandler creates the Echo API handler.
func ProvideMarketHandler(
	holder *usecase.SnapshotHolder,
	orchestrator *usecase.RefreshOrchestrator,
	pullback *usecase.PullbackTracker,
	alerts *usecase.AlertEngine,
	log *applogger.Logger,
	cfg *config.Config,
) xhttp.Handler {
	return api.NewMarketHandler(holder, orchestrator, pullback, alerts, log,
		cfg.Refresh.Mode == "lazy", cfg.Alerts.DefaultCooldown)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	orchestrator *usecase.RefreshOrchestrator,
	alerts *usecase.AlertEngine,
	handler xhttp.Handler,
) *server.App {
	return server.New(cfg, log, orchestrator, alerts, handler)
}
