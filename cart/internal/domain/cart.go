package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartStatus string

const (
	CartStatusActive     CartStatus = "active"
	CartStatusCheckedOut CartStatus = "checked_out"
	CartStatusAbandoned  CartStatus = "abandoned"
)

// Cart is the cart header. At most one active cart exists per identity and channel.
type Cart struct {
	ID                 uuid.UUID
	UserID             uuid.NullUUID
	AnonymousTokenHash string
	Channel            Channel
	Status             CartStatus
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// LineItem is unique per (cart, product, variant). UnitPrice is the price captured when
// the item was last added.
type LineItem struct {
	ID        uuid.UUID
	CartID    uuid.UUID
	ProductID uuid.UUID
	VariantID uuid.NullUUID
	Quantity  int32
	UnitPrice decimal.NullDecimal
	CreatedAt time.Time
	UpdatedAt time.Time
}
