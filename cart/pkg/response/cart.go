package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartItem is one line of the cart view. Stock is the live catalog stock, UnitPrice is the
// price the line is charged at.
type CartItem struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	VariantID   *uuid.UUID      `json:"variant_id,omitempty"`
	Name        string          `json:"name"`
	VariantName string          `json:"variant_name,omitempty"`
	Quantity    int32           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
	Stock       int32           `json:"stock"`
	InStock     bool            `json:"in_stock"`
	HasTax      bool            `json:"has_tax"`
	PriceHidden bool            `json:"price_hidden"`
}

type FreeShipping struct {
	Eligible  bool            `json:"eligible"`
	Threshold decimal.Decimal `json:"threshold"`
	ExpiresAt *time.Time      `json:"expires_at"`
}

// Cart is the hydrated cart view. ID is nil when the caller has no active cart yet.
type Cart struct {
	ID           *uuid.UUID      `json:"id"`
	Channel      string          `json:"channel"`
	Status       string          `json:"status,omitempty"`
	Items        []CartItem      `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Tax          decimal.Decimal `json:"tax"`
	ShippingFee  decimal.Decimal `json:"shipping_fee"`
	Total        decimal.Decimal `json:"total"`
	FreeShipping *FreeShipping   `json:"free_shipping"`
	UpdatedAt    *time.Time      `json:"updated_at,omitempty"`
}

func EmptyCart(channel string) Cart {
	return Cart{
		Channel:     channel,
		Items:       []CartItem{},
		Subtotal:    decimal.Zero,
		Tax:         decimal.Zero,
		ShippingFee: decimal.Zero,
		Total:       decimal.Zero,
	}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// ClearCart reports what a clear did. ForgetToken asks the caller to drop the anonymous
// cart token of the channel.
type ClearCart struct {
	Channel      string `json:"channel"`
	RemovedItems int64  `json:"removed_items"`
	ForgetToken  bool   `json:"forget_token"`
}

type Checkout struct {
	CartID      uuid.UUID       `json:"cart_id"`
	OrderID     string          `json:"order_id"`
	Channel     string          `json:"channel"`
	Items       []CartItem      `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Tax         decimal.Decimal `json:"tax"`
	ShippingFee decimal.Decimal `json:"shipping_fee"`
	Total       decimal.Decimal `json:"total"`
}
