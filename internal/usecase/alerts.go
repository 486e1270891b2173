package usecase

import (
	"context"
	"sync"
	"time"

	"PerpScan/internal/domain/models"
	"PerpScan/internal/domain/repository"
	"PerpScan/pkg/logger"

	"github.com/shopspring/decimal"
)

// AlertEngine evaluates the rule list on its own ticker, independent of the
// snapshot refresh cycle. All rules in one tick see the same previous
// observations; the new observations are merged in after the full rule loop.
type AlertEngine struct {
	source   repository.MarketDataSource
	notifier repository.Notifier
	store    repository.RuleStore
	metrics  repository.Metrics
	log      *logger.Logger

	interval        time.Duration
	defaultCooldown int
	now             func() time.Time

	mu         sync.Mutex
	rules      []models.AlertRule
	prevPrices map[string]decimal.Decimal
	prevPnL    map[string]decimal.Decimal
}

func NewAlertEngine(
	source repository.MarketDataSource,
	notifier repository.Notifier,
	store repository.RuleStore,
	metrics repository.Metrics,
	log *logger.Logger,
	interval time.Duration,
	defaultCooldown int,
) *AlertEngine {
	return &AlertEngine{
		source:          source,
		notifier:        notifier,
		store:           store,
		metrics:         metrics,
		log:             log,
		interval:        interval,
		defaultCooldown: defaultCooldown,
		now:             time.Now,
		prevPrices:      make(map[string]decimal.Decimal),
		prevPnL:         make(map[string]decimal.Decimal),
	}
}

// LoadRules pulls the persisted rule list. Called once at startup; a load
// failure leaves the engine running with an empty list.
func (e *AlertEngine) LoadRules(ctx context.Context) error {
	rules, err := e.store.Load(ctx)
	if err != nil {
		e.log.Error("failed to load alert rules", logger.Error(err))
		return err
	}
	e.mu.Lock()
	e.rules = rules
	e.mu.Unlock()
	e.log.Info("alert rules loaded", logger.Int("count", len(rules)))
	return nil
}

// Rules returns a copy of the current rule list.
func (e *AlertEngine) Rules() []models.AlertRule {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.AlertRule, len(e.rules))
	copy(out, e.rules)
	return out
}

// ReplaceRules swaps in a new rule list and persists it. The previous
// observation maps are kept so surviving rules keep their crossing context.
func (e *AlertEngine) ReplaceRules(ctx context.Context, rules []models.AlertRule) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.store.Save(ctx, rules); err != nil {
		return err
	}
	e.rules = rules
	return nil
}

// Run ticks until the context is cancelled.
func (e *AlertEngine) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick evaluates every enabled rule once.
func (e *AlertEngine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	needPrice, needPnL := false, false
	for i := range e.rules {
		if !e.rules[i].Enabled {
			continue
		}
		if e.rules[i].Kind.IsPnL() {
			needPnL = true
		} else {
			needPrice = true
		}
	}
	if !needPrice && !needPnL {
		return
	}

	var prices map[string]decimal.Decimal
	if needPrice {
		var err error
		prices, err = e.source.GetTickerPrices(ctx)
		if err != nil {
			e.log.Warn("ticker price fetch failed, skipping price rules", logger.Error(err))
			e.metrics.RecordError("ticker_fetch")
			prices = nil
		}
	}

	var pnls map[string]decimal.Decimal
	if needPnL {
		positions, err := e.source.GetPositions(ctx)
		if err != nil {
			e.log.Warn("position fetch failed, skipping pnl rules", logger.Error(err))
			e.metrics.RecordError("position_fetch")
		} else {
			pnls = sumPnL(positions)
			// A scope key with no open position observes as zero: closing
			// a position is a crossing to flat, not a gap in the series.
			for i := range e.rules {
				rule := &e.rules[i]
				if !rule.Enabled || !rule.Kind.IsPnL() {
					continue
				}
				if _, ok := pnls[rule.ScopeKey()]; !ok {
					pnls[rule.ScopeKey()] = decimal.Zero
				}
			}
		}
	}

	now := e.now()
	changed := false
	for i := range e.rules {
		rule := &e.rules[i]
		if !rule.Enabled || rule.InCooldown(now) {
			continue
		}
		if rule.Kind.IsPnL() {
			if pnls == nil {
				continue
			}
			if e.evalPnLRule(ctx, rule, pnls, now) {
				changed = true
			}
		} else {
			if prices == nil {
				continue
			}
			if e.evalPriceRule(ctx, rule, prices, now) {
				changed = true
			}
		}
	}

	// Commit observations once so every rule above compared against the
	// same previous tick.
	if prices != nil {
		for k, v := range prices {
			e.prevPrices[k] = v
		}
	}
	if pnls != nil {
		for k, v := range pnls {
			e.prevPnL[k] = v
		}
	}

	if changed {
		if err := e.store.Save(ctx, e.rules); err != nil {
			e.log.Error("failed to persist alert rules", logger.Error(err))
			e.metrics.RecordError("rule_save")
		}
	}
}

// sumPnL folds positions into per-symbol unrealized PnL plus the account
// total.
func sumPnL(positions []models.Position) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(positions)+1)
	total := decimal.Zero
	for _, p := range positions {
		out[p.Symbol] = out[p.Symbol].Add(p.UnrealizedProfit)
		total = total.Add(p.UnrealizedProfit)
	}
	out[models.AccountScopeKey] = total
	return out
}

func (e *AlertEngine) evalPriceRule(ctx context.Context, rule *models.AlertRule, prices map[string]decimal.Decimal, now time.Time) bool {
	curr, ok := prices[rule.Symbol]
	if !ok {
		return false
	}
	e.metrics.RecordLastPrice(rule.Symbol, curr.InexactFloat64())

	prev, seen := e.prevPrices[rule.Symbol]
	if !seen {
		// First observation primes the crossing state only.
		return false
	}
	if crossed(prev, curr, rule.ReferenceValue) {
		return e.fire(ctx, rule, curr, rule.ReferenceValue, now)
	}
	return false
}

func (e *AlertEngine) evalPnLRule(ctx context.Context, rule *models.AlertRule, pnls map[string]decimal.Decimal, now time.Time) bool {
	key := rule.ScopeKey()
	curr := pnls[key]
	prev, seen := e.prevPnL[key]

	if rule.Kind.IsStep() {
		if !seen {
			return false
		}
		boundary, hit := stepBoundary(rule.Kind, prev, curr, rule.ReferenceValue)
		if !hit {
			return false
		}
		return e.fire(ctx, rule, curr, boundary, now)
	}

	ref := rule.ReferenceValue
	if rule.Kind == models.KindLossThreshold {
		ref = ref.Neg()
	}
	if !seen {
		// One-sided initial check: no crossing history yet.
		var hit bool
		if rule.Kind == models.KindProfitThreshold {
			hit = curr.GreaterThanOrEqual(ref)
		} else {
			hit = curr.LessThanOrEqual(ref)
		}
		if hit {
			return e.fire(ctx, rule, curr, ref, now)
		}
		return false
	}
	if crossed(prev, curr, ref) {
		return e.fire(ctx, rule, curr, ref, now)
	}
	return false
}

// crossed reports a reference crossing in either direction between two
// observations.
func crossed(prev, curr, ref decimal.Decimal) bool {
	if prev.LessThan(ref) && curr.GreaterThanOrEqual(ref) {
		return true
	}
	return prev.GreaterThan(ref) && curr.LessThanOrEqual(ref)
}

// stepBoundary finds the crossed step boundary for step rules. Both
// observations must sit in the rule's sign region; the reported boundary is
// the higher level times the step, negated for loss steps.
func stepBoundary(kind models.AlertKind, prev, curr, step decimal.Decimal) (decimal.Decimal, bool) {
	if kind == models.KindProfitStep {
		if !prev.IsPositive() || !curr.IsPositive() {
			return decimal.Decimal{}, false
		}
	} else {
		if !prev.IsNegative() || !curr.IsNegative() {
			return decimal.Decimal{}, false
		}
	}

	prevLevel := prev.Abs().Div(step).Floor()
	currLevel := curr.Abs().Div(step).Floor()
	if prevLevel.Equal(currLevel) {
		return decimal.Decimal{}, false
	}

	top := prevLevel
	if currLevel.GreaterThan(top) {
		top = currLevel
	}
	boundary := top.Mul(step)
	if kind == models.KindLossStep {
		boundary = boundary.Neg()
	}
	return boundary, true
}

// fire sends the notification and commits the rule state change. Send
// failures are logged only; the trigger still counts.
func (e *AlertEngine) fire(ctx context.Context, rule *models.AlertRule, curr, displayTarget decimal.Decimal, now time.Time) bool {
	n := models.NotificationFor(rule, curr, displayTarget, now)
	if err := e.notifier.Send(ctx, n); err != nil {
		e.log.Error("alert notification failed",
			logger.String("rule_id", rule.ID),
			logger.String("kind", string(rule.Kind)),
			logger.Error(err))
		e.metrics.RecordError("notify")
	}

	rule.LastTriggerTime = now
	if rule.RepeatMode == models.RepeatOnce {
		rule.Triggered = true
		rule.Enabled = false
	}
	e.metrics.RecordAlertTriggered(string(rule.Kind))
	e.log.Info("alert triggered",
		logger.String("rule_id", rule.ID),
		logger.String("kind", string(rule.Kind)),
		logger.String("scope", rule.ScopeKey()),
		logger.String("current", curr.String()),
		logger.String("target", displayTarget.String()))
	return true
}
