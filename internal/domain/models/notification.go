package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Notification carries all display fields for an alert push. Delivery is
// best-effort; a failed send never rolls back the rule state.
type Notification struct {
	Title        string
	Scope        string
	KindLabel    string
	TargetLabel  string
	TargetValue  decimal.Decimal
	CurrentLabel string
	CurrentValue decimal.Decimal
	At           time.Time
}

// NotificationFor builds the push payload for a fired rule. displayTarget is
// the crossed boundary: the reference for thresholds, the step boundary for
// step rules.
func NotificationFor(rule *AlertRule, current, displayTarget decimal.Decimal, at time.Time) Notification {
	n := Notification{
		Scope:        rule.Symbol,
		TargetValue:  displayTarget,
		CurrentValue: current,
		At:           at,
	}
	if n.Scope == "" {
		n.Scope = "account"
	}

	switch rule.Kind {
	case KindPriceThreshold:
		n.Title = "Price alert"
		n.KindLabel = "price reached"
		n.TargetLabel = "target price"
		n.CurrentLabel = "current price"
	case KindProfitThreshold:
		n.Title = "Profit alert"
		n.KindLabel = "profit reached"
		n.TargetLabel = "target profit"
		n.CurrentLabel = "current PnL"
	case KindLossThreshold:
		n.Title = "Loss alert"
		n.KindLabel = "loss reached"
		n.TargetLabel = "target loss"
		n.CurrentLabel = "current PnL"
	case KindProfitStep:
		n.Title = "Profit step alert"
		n.KindLabel = "profit step"
		n.TargetLabel = "step boundary"
		n.CurrentLabel = "current PnL"
	case KindLossStep:
		n.Title = "Loss step alert"
		n.KindLabel = "loss step"
		n.TargetLabel = "step boundary"
		n.CurrentLabel = "current PnL"
	}
	return n
}
