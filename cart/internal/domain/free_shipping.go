package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RuleScope string

const (
	RuleScopeB2C RuleScope = "b2c"
	RuleScopeB2B RuleScope = "b2b"
	RuleScopeAll RuleScope = "all"
)

type FreeShippingRule struct {
	ID        uuid.UUID       `json:"id"`
	Threshold decimal.Decimal `json:"threshold"`
	ExpiresAt *time.Time      `json:"expires_at,omitempty"`
	IsActive  bool            `json:"is_active"`
	AppliesTo RuleScope       `json:"applies_to"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ActiveAt is true when the rule is switched on and not expired at now.
func (r FreeShippingRule) ActiveAt(now time.Time) bool {
	if !r.IsActive {
		return false
	}
	return r.ExpiresAt == nil || r.ExpiresAt.After(now)
}

// AppliesToChannel is true for rules scoped to ch or to every channel.
func (r FreeShippingRule) AppliesToChannel(ch Channel) bool {
	return r.AppliesTo == RuleScopeAll || string(r.AppliesTo) == string(ch)
}
