package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alturino/spices/cart/internal/domain"
)

// Line joins a stored line item with the catalog rows it references. Variant is nil when the
// item has no variant or the variant is no longer in the catalog.
type Line struct {
	Item    domain.LineItem
	Product domain.ProductSnapshot
	Variant *domain.VariantSnapshot
}

// UnitPrice is the price a line is charged at. Each line falls back on its own: the stored
// snapshot first, then the variant price, then the product price.
func UnitPrice(line Line) decimal.Decimal {
	if line.Item.UnitPrice.Valid {
		return line.Item.UnitPrice.Decimal
	}
	if line.Variant != nil && line.Variant.Price.Valid {
		return line.Variant.Price.Decimal
	}
	return line.Product.Price
}

// SnapshotPrice is the price captured on add: the variant price when the variant carries
// one, else the product price.
func SnapshotPrice(product domain.ProductSnapshot, variant *domain.VariantSnapshot) decimal.Decimal {
	if variant != nil && variant.Price.Valid {
		return variant.Price.Decimal
	}
	return product.Price
}

func LineTotal(line Line) decimal.Decimal {
	return UnitPrice(line).Mul(decimal.NewFromInt32(line.Item.Quantity))
}

// Subtotal is pure merchandise value. Tax is never part of it.
func Subtotal(lines []Line) decimal.Decimal {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(LineTotal(line))
	}
	return subtotal
}

// Tax charges rate on the lines whose product is taxable, rounded to cents.
func Tax(lines []Line, rate decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for _, line := range lines {
		if !line.Product.HasTax {
			continue
		}
		tax = tax.Add(LineTotal(line).Mul(rate))
	}
	return tax.Round(2)
}

// SelectRule picks the single rule that applies to ch at now. A rule scoped to ch beats one
// scoped to every channel; among equally specific rules the first one wins, so callers pass
// rules most recently updated first.
func SelectRule(rules []domain.FreeShippingRule, ch domain.Channel, now time.Time) (domain.FreeShippingRule, bool) {
	var (
		fallback    domain.FreeShippingRule
		hasFallback bool
	)
	for _, rule := range rules {
		if !rule.ActiveAt(now) || !rule.AppliesToChannel(ch) {
			continue
		}
		if string(rule.AppliesTo) == ch.String() {
			return rule, true
		}
		if !hasFallback {
			fallback, hasFallback = rule, true
		}
	}
	return fallback, hasFallback
}

type FreeShipping struct {
	Eligible  bool
	Threshold decimal.Decimal
	ExpiresAt *time.Time
}

// EvaluateRule reports eligibility against rule. Reaching the threshold exactly is eligible.
func EvaluateRule(rule domain.FreeShippingRule, subtotal decimal.Decimal) FreeShipping {
	return FreeShipping{
		Eligible:  subtotal.GreaterThanOrEqual(rule.Threshold),
		Threshold: rule.Threshold,
		ExpiresAt: rule.ExpiresAt,
	}
}

type Totals struct {
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	ShippingFee  decimal.Decimal
	Total        decimal.Decimal
	FreeShipping *FreeShipping
}
