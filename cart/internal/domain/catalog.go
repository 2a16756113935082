package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductSnapshot is the read-only projection of a catalog product the cart needs.
type ProductSnapshot struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int32           `json:"stock"`
	IsB2B       bool            `json:"is_b2b"`
	PriceHidden bool            `json:"price_hidden"`
	HasTax      bool            `json:"has_tax"`
}

func (p ProductSnapshot) Channel() Channel {
	return ChannelOf(p.IsB2B)
}

// VariantSnapshot is a purchasable variation of a product. A variant without its own
// price sells at the product price.
type VariantSnapshot struct {
	ID        uuid.UUID           `json:"id"`
	ProductID uuid.UUID           `json:"product_id"`
	Name      string              `json:"name"`
	Price     decimal.NullDecimal `json:"price"`
	Stock     int32               `json:"stock"`
}
