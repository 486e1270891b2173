package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AlertKind enumerates the supported rule kinds.
type AlertKind string

const (
	KindPriceThreshold  AlertKind = "price_reached"
	KindProfitThreshold AlertKind = "profit_reached"
	KindLossThreshold   AlertKind = "loss_reached"
	KindProfitStep      AlertKind = "profit_step"
	KindLossStep        AlertKind = "loss_step"
)

// IsPnL reports whether the kind evaluates against position PnL rather than
// ticker price.
func (k AlertKind) IsPnL() bool {
	switch k {
	case KindProfitThreshold, KindLossThreshold, KindProfitStep, KindLossStep:
		return true
	}
	return false
}

// IsStep reports whether the kind uses repeating step levels.
func (k AlertKind) IsStep() bool {
	return k == KindProfitStep || k == KindLossStep
}

// Valid reports whether k is a known kind.
func (k AlertKind) Valid() bool {
	switch k {
	case KindPriceThreshold, KindProfitThreshold, KindLossThreshold, KindProfitStep, KindLossStep:
		return true
	}
	return false
}

// RepeatMode controls whether a rule disarms after its first trigger.
type RepeatMode string

const (
	RepeatOnce       RepeatMode = "once"
	RepeatContinuous RepeatMode = "continuous"
)

// AccountScopeKey is the synthetic observation key for whole-account PnL
// rules (empty rule symbol).
const AccountScopeKey = "ACCOUNT"

// AlertRule is one user-configured alert. The rule list is persisted
// wholesale through the rule store after every state change.
type AlertRule struct {
	ID              string          `json:"id"`
	Symbol          string          `json:"symbol,omitempty"`
	Kind            AlertKind       `json:"type"`
	ReferenceValue  decimal.Decimal `json:"targetValue"`
	RepeatMode      RepeatMode      `json:"frequency"`
	Enabled         bool            `json:"enabled"`
	Triggered       bool            `json:"isTriggered"`
	LastTriggerTime time.Time       `json:"lastTriggerTime,omitempty"`
	CooldownSeconds int             `json:"cooldownSeconds"`
}

// ScopeKey returns the observation key the rule evaluates against.
// Price rules always carry a symbol; PnL rules fall back to the account key.
func (r *AlertRule) ScopeKey() string {
	if r.Symbol == "" && r.Kind.IsPnL() {
		return AccountScopeKey
	}
	return r.Symbol
}

// InCooldown reports whether the rule triggered less than its cooldown ago.
func (r *AlertRule) InCooldown(now time.Time) bool {
	if r.LastTriggerTime.IsZero() {
		return false
	}
	return now.Sub(r.LastTriggerTime) < time.Duration(r.CooldownSeconds)*time.Second
}

// Validate rejects rules the engine cannot evaluate.
func (r *AlertRule) Validate() error {
	if !r.Kind.Valid() {
		return fmt.Errorf("unknown alert kind %q", r.Kind)
	}
	if r.RepeatMode != RepeatOnce && r.RepeatMode != RepeatContinuous {
		return fmt.Errorf("unknown repeat mode %q", r.RepeatMode)
	}
	if !r.ReferenceValue.IsPositive() {
		return fmt.Errorf("reference value must be positive, got %s", r.ReferenceValue)
	}
	if r.Kind == KindPriceThreshold && r.Symbol == "" {
		return fmt.Errorf("price rule requires a symbol")
	}
	if r.CooldownSeconds < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}
	return nil
}
