package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"PerpScan/internal/usecase"
	"PerpScan/pkg/config"
	xhttp "PerpScan/pkg/http"
	applogger "PerpScan/pkg/logger"

	"github.com/robfig/cron/v3"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg          *config.Config
	log          *applogger.Logger
	orchestrator *usecase.RefreshOrchestrator
	alerts       *usecase.AlertEngine
	httpHandler  xhttp.Handler
	httpServer   *xhttp.Server
	cron         *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	orchestrator *usecase.RefreshOrchestrator,
	alerts *usecase.AlertEngine,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:          cfg,
		log:          log,
		orchestrator: orchestrator,
		alerts:       alerts,
		httpHandler:  handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Alert rules survive restarts; a load failure starts with an empty list.
	if err := a.alerts.LoadRules(ctx); err != nil {
		a.log.Warn("starting with empty alert rule list", applogger.Error(err))
	}
	go a.alerts.Run(ctx)
	a.log.Info("alert engine started",
		applogger.Duration("interval", a.cfg.Alerts.Interval))

	if a.cfg.Refresh.Mode == "eager" {
		a.cron = cron.New(cron.WithSeconds())
		if _, err := a.cron.AddFunc(a.cfg.Refresh.Cron, func() {
			a.orchestrator.Refresh(ctx)
		}); err != nil {
			a.log.Error("invalid refresh cron expression", applogger.Error(err))
			return err
		}
		a.cron.Start()
		a.log.Info("eager refresh scheduled", applogger.String("cron", a.cfg.Refresh.Cron))
	} else {
		a.log.Info("lazy refresh enabled",
			applogger.Duration("interval", a.cfg.Refresh.Interval))
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(cancel)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(cancel context.CancelFunc) error {
	// Stops the alert ticker and any in-flight refresh fan-out.
	cancel()

	if a.cron != nil {
		stopCtx := a.cron.Stop()
		<-stopCtx.Done()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}

	a.log.Info("shutdown complete")
	return nil
}
