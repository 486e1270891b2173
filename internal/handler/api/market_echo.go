package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"PerpScan/internal/domain/models"
	"PerpScan/internal/usecase"
	pkghttp "PerpScan/pkg/http"
	"PerpScan/pkg/logger"
)

// MarketHandler serves the snapshot read surface and the alert rule
// endpoints.
type MarketHandler struct {
	holder       *usecase.SnapshotHolder
	orchestrator *usecase.RefreshOrchestrator
	pullback     *usecase.PullbackTracker
	alerts       *usecase.AlertEngine
	log          *logger.Logger

	lazyRefresh     bool
	defaultCooldown int
}

func NewMarketHandler(
	holder *usecase.SnapshotHolder,
	orchestrator *usecase.RefreshOrchestrator,
	pullback *usecase.PullbackTracker,
	alerts *usecase.AlertEngine,
	log *logger.Logger,
	lazyRefresh bool,
	defaultCooldown int,
) *MarketHandler {
	return &MarketHandler{
		holder:          holder,
		orchestrator:    orchestrator,
		pullback:        pullback,
		alerts:          alerts,
		log:             log,
		lazyRefresh:     lazyRefresh,
		defaultCooldown: defaultCooldown,
	}
}

func (h *MarketHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/leaderboards", h.GetLeaderboards)
	g.GET("/strong", h.GetStrong)
	g.GET("/pullback", h.GetPullback)
	g.GET("/alerts", h.GetAlertRules)
	g.POST("/alerts", h.ReplaceAlertRules)
	g.POST("/refresh", h.ForceRefresh)
}

// GetLeaderboards returns the per-window change leaderboards. In lazy mode a
// stale snapshot kicks off a refresh first; concurrent callers fall back to
// the currently published snapshot.
func (h *MarketHandler) GetLeaderboards(c echo.Context) error {
	if h.lazyRefresh {
		h.orchestrator.RefreshIfStale(c.Request().Context())
	}
	snap := h.holder.Load()
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"refreshedAt":  snap.RefreshedAt,
		"leaderboards": snap.Leaderboards,
	})
}

// GetStrong returns the symbols flagged by the strong-signal classifier.
func (h *MarketHandler) GetStrong(c echo.Context) error {
	if h.lazyRefresh {
		h.orchestrator.RefreshIfStale(c.Request().Context())
	}
	snap := h.holder.Load()
	coins := make([]models.StrongCoin, 0, len(snap.Strong))
	for _, s := range snap.Strong {
		coins = append(coins, models.StrongCoin{Symbol: s})
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"refreshedAt": snap.RefreshedAt,
		"strong":      coins,
	})
}

// GetPullback returns the pullback tracker stats.
func (h *MarketHandler) GetPullback(c echo.Context) error {
	return pkghttp.SuccessResponse(c, h.pullback.Stats())
}

// GetAlertRules returns the current rule list.
func (h *MarketHandler) GetAlertRules(c echo.Context) error {
	return pkghttp.SuccessResponse(c, h.alerts.Rules())
}

// ReplaceAlertRules swaps the whole rule collection. Any invalid rule
// rejects the entire payload; nothing is mutated on failure.
func (h *MarketHandler) ReplaceAlertRules(c echo.Context) error {
	var req models.ReplaceAlertRulesRequest
	if errs := pkghttp.ReadAndValidateRequest(c, &req); errs != nil {
		return pkghttp.BadRequestResponse(c, errs)
	}

	rules := make([]models.AlertRule, 0, len(req.Rules))
	for _, in := range req.Rules {
		ref, err := decimal.NewFromString(in.ReferenceValue)
		if err != nil {
			return pkghttp.BadRequestResponse(c, []pkghttp.ValidationError{{
				Code:    "ERR_DECIMAL",
				Field:   "targetValue",
				Message: "targetValue must be a decimal number",
			}})
		}

		enabled := true
		if in.Enabled != nil {
			enabled = *in.Enabled
		}
		cooldown := h.defaultCooldown
		if in.CooldownSeconds != nil {
			cooldown = *in.CooldownSeconds
		}
		rule := models.AlertRule{
			ID:              in.ID,
			Symbol:          in.Symbol,
			Kind:            models.AlertKind(in.Kind),
			ReferenceValue:  ref,
			RepeatMode:      models.RepeatMode(in.RepeatMode),
			Enabled:         enabled,
			Triggered:       in.Triggered,
			LastTriggerTime: in.LastTriggerTime,
			CooldownSeconds: cooldown,
		}
		if rule.ID == "" {
			rule.ID = uuid.NewString()
		}
		if err := rule.Validate(); err != nil {
			return pkghttp.BadRequestResponse(c, []pkghttp.ValidationError{{
				Code:    "ERR_RULE",
				Field:   "rules",
				Message: err.Error(),
			}})
		}
		rules = append(rules, rule)
	}

	if err := h.alerts.ReplaceRules(c.Request().Context(), rules); err != nil {
		h.log.Error("failed to replace alert rules", logger.Error(err))
		return pkghttp.InternalServerErrorResponse(c)
	}
	return pkghttp.SuccessResponse(c, rules)
}

// ForceRefresh triggers a refresh cycle. Returns 202 when one is already in
// flight.
func (h *MarketHandler) ForceRefresh(c echo.Context) error {
	if h.orchestrator.InFlight() {
		return pkghttp.AcceptedResponse(c, "refresh already in progress")
	}
	if !h.orchestrator.Refresh(c.Request().Context()) {
		return pkghttp.AcceptedResponse(c, "refresh already in progress")
	}
	return pkghttp.SuccessResponse(c, "refresh complete")
}
