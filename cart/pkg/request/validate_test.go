package request

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	cartErrors "github.com/Alturino/spices/cart/internal/errors"
)

func TestValidate(t *testing.T) {
	c := context.Background()
	variantID := uuid.New()
	nilVariant := uuid.Nil

	tests := []struct {
		name      string
		req       interface{}
		wantField string
	}{
		{name: "valid add", req: AddToCart{ProductID: uuid.New(), Quantity: 1}},
		{name: "valid add with variant", req: AddToCart{ProductID: uuid.New(), VariantID: &variantID, Quantity: 3}},
		{name: "add without product", req: AddToCart{Quantity: 1}, wantField: "product_id"},
		{name: "add with zero quantity", req: AddToCart{ProductID: uuid.New()}, wantField: "quantity"},
		{name: "add with negative quantity", req: AddToCart{ProductID: uuid.New(), Quantity: -2}, wantField: "quantity"},
		{name: "add with nil variant", req: AddToCart{ProductID: uuid.New(), VariantID: &nilVariant, Quantity: 1}, wantField: "variant_id"},
		{name: "update to zero is valid", req: UpdateItemQuantity{ItemID: uuid.New()}},
		{name: "update to negative is valid", req: UpdateItemQuantity{ItemID: uuid.New(), Quantity: -1}},
		{name: "update without item", req: UpdateItemQuantity{Quantity: 1}, wantField: "item_id"},
		{name: "remove without item", req: RemoveItem{}, wantField: "item_id"},
		{name: "retail channel", req: Cart{Channel: "b2c"}},
		{name: "wholesale channel", req: Cart{Channel: "b2b"}},
		{name: "unknown channel", req: Cart{Channel: "B2C"}, wantField: "channel"},
		{name: "missing channel", req: Cart{}, wantField: "channel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(c, tt.req)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, cartErrors.ErrValidation)
			var validationErr *cartErrors.ValidationError
			if assert.True(t, errors.As(err, &validationErr)) {
				assert.Equal(t, tt.wantField, validationErr.Field)
			}
		})
	}
}
