package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/spices/cart/internal/domain"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/config"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
)

type RuleSource interface {
	EffectiveFreeShippingRules(c context.Context, ch domain.Channel, now time.Time) ([]domain.FreeShippingRule, error)
}

type Engine struct {
	rules       RuleSource
	taxRate     decimal.Decimal
	shippingFee decimal.Decimal
	now         func() time.Time
}

func NewEngine(rules RuleSource, cfg config.Cart, now func() time.Time) (*Engine, error) {
	taxRate, err := decimal.NewFromString(cfg.TaxRate)
	if err != nil {
		return nil, fmt.Errorf("failed parsing tax_rate=%q with error=%w", cfg.TaxRate, err)
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax_rate=%s must not be negative", taxRate)
	}
	shippingFee, err := decimal.NewFromString(cfg.ShippingFee)
	if err != nil {
		return nil, fmt.Errorf("failed parsing shipping_fee=%q with error=%w", cfg.ShippingFee, err)
	}
	if shippingFee.IsNegative() {
		return nil, fmt.Errorf("shipping_fee=%s must not be negative", shippingFee)
	}
	if now == nil {
		now = time.Now
	}
	return &Engine{rules: rules, taxRate: taxRate, shippingFee: shippingFee, now: now}, nil
}

func (e *Engine) TaxRate() decimal.Decimal {
	return e.taxRate
}

// EvaluateFreeShipping returns nil when ch has no active rule, which is different from a
// rule the subtotal does not reach. Wholesale carts are never evaluated.
func (e *Engine) EvaluateFreeShipping(
	c context.Context,
	ch domain.Channel,
	subtotal decimal.Decimal,
) (*FreeShipping, error) {
	c, span := otel.Tracer.Start(c, "Engine EvaluateFreeShipping")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "Engine EvaluateFreeShipping").
		Str(constants.KEY_CHANNEL, ch.String()).
		Str(constants.KEY_SUBTOTAL, subtotal.String()).
		Logger()

	if ch.IsWholesale() {
		logger.Trace().Msg("wholesale carts have no free shipping")
		return nil, nil
	}

	now := e.now()
	logger = logger.With().Str(constants.KEY_PROCESS, "finding free shipping rules").Logger()
	logger.Trace().Msg("finding free shipping rules")
	rules, err := e.rules.EffectiveFreeShippingRules(c, ch, now)
	if err != nil {
		err = fmt.Errorf("failed finding free shipping rules with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int("rules", len(rules)).Msg("found free shipping rules")

	rule, ok := SelectRule(rules, ch, now)
	if !ok {
		logger.Trace().Msg("no active free shipping rule")
		return nil, nil
	}

	result := EvaluateRule(rule, subtotal)
	logger.Trace().
		Str(constants.KEY_RULE, rule.ID.String()).
		Bool(constants.KEY_FREE_SHIPPING, result.Eligible).
		Msg("evaluated free shipping")
	return &result, nil
}

// Totals prices lines for ch. Retail carts pay the flat shipping fee unless free shipping
// is reached; wholesale shipping is quoted offline and carries no fee here.
func (e *Engine) Totals(c context.Context, ch domain.Channel, lines []Line) (Totals, error) {
	c, span := otel.Tracer.Start(c, "Engine Totals")
	defer span.End()

	subtotal := Subtotal(lines)
	tax := Tax(lines, e.taxRate)

	freeShipping, err := e.EvaluateFreeShipping(c, ch, subtotal)
	if err != nil {
		inOtel.RecordError(err, span)
		return Totals{}, err
	}

	shippingFee := decimal.Zero
	if !ch.IsWholesale() && len(lines) > 0 && (freeShipping == nil || !freeShipping.Eligible) {
		shippingFee = e.shippingFee
	}

	return Totals{
		Subtotal:     subtotal,
		Tax:          tax,
		ShippingFee:  shippingFee,
		Total:        subtotal.Add(tax).Add(shippingFee),
		FreeShipping: freeShipping,
	}, nil
}
