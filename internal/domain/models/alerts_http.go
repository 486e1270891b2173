package models

import "time"

// Requests for the alert HTTP endpoints. Defined in domain for consistency and reuse.

// AlertRuleRequest is one rule in a whole-list replace payload. Trigger state
// round-trips so that editing the list does not reset cooldown windows or
// once-mode history; CooldownSeconds is a pointer so an explicit zero is
// distinguishable from an absent field.
type AlertRuleRequest struct {
	ID              string    `json:"id"`
	Symbol          string    `json:"symbol"`
	Kind            string    `json:"type" validate:"required,oneof=price_reached profit_reached loss_reached profit_step loss_step"`
	ReferenceValue  string    `json:"targetValue" validate:"required"`
	RepeatMode      string    `json:"frequency" default:"continuous" validate:"oneof=once continuous"`
	Enabled         *bool     `json:"enabled"`
	Triggered       bool      `json:"isTriggered"`
	LastTriggerTime time.Time `json:"lastTriggerTime"`
	CooldownSeconds *int      `json:"cooldownSeconds" validate:"omitempty,gte=0"`
}

// ReplaceAlertRulesRequest replaces the whole rule collection.
type ReplaceAlertRulesRequest struct {
	Rules []AlertRuleRequest `json:"rules" validate:"dive"`
}
