package request

import (
	"github.com/google/uuid"
)

// Cart addresses the active cart of the caller in one channel.
type Cart struct {
	Channel string `validate:"required,channel" json:"channel"`
}

type AddToCart struct {
	ProductID uuid.UUID  `validate:"required"         json:"product_id"`
	VariantID *uuid.UUID `validate:"omitempty,notnil" json:"variant_id,omitempty"`
	Quantity  int32      `validate:"gte=1"            json:"quantity"`
}

// UpdateItemQuantity sets the quantity of a line. Zero or a negative quantity removes it.
type UpdateItemQuantity struct {
	ItemID   uuid.UUID `validate:"required" json:"item_id"`
	Quantity int32     `json:"quantity"`
}

type RemoveItem struct {
	ItemID uuid.UUID `validate:"required" json:"item_id"`
}
