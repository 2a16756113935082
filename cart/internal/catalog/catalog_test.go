package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/internal/repository"
)

var (
	paprikaID     = uuid.MustParse("0b8f9f36-5a43-4c8e-9a55-6f6d3b1e0a01")
	cuminSackID   = uuid.MustParse("0b8f9f36-5a43-4c8e-9a55-6f6d3b1e0a02")
	saffronBulkID = uuid.MustParse("0b8f9f36-5a43-4c8e-9a55-6f6d3b1e0a03")
	retiredID     = uuid.MustParse("0b8f9f36-5a43-4c8e-9a55-6f6d3b1e0a04")
	paprika100gID = uuid.MustParse("5d1c7e4a-2b7f-4f57-8c1e-1c0e6a7b0b01")
	paprika50gID  = uuid.MustParse("5d1c7e4a-2b7f-4f57-8c1e-1c0e6a7b0b02")
	cuminPalletID = uuid.MustParse("5d1c7e4a-2b7f-4f57-8c1e-1c0e6a7b0b03")
)

func TestReaders(t *testing.T) {
	c := context.Background()
	service, public := setupDatabase(t, c)
	cache := setupCache(t, c)

	readers := Readers{
		domain.ChannelB2C: NewCachedReader(NewRetailReader(repository.New(public)), cache, domain.ChannelB2C, time.Minute),
		domain.ChannelB2B: NewCachedReader(NewWholesaleReader(repository.New(service)), cache, domain.ChannelB2B, time.Minute),
	}
	retail, err := readers.For(domain.ChannelB2C)
	require.NoError(t, err)
	wholesale, err := readers.For(domain.ChannelB2B)
	require.NoError(t, err)

	t.Run("public role cannot see wholesale rows", func(t *testing.T) {
		var count int
		err := public.QueryRow(c, "select count(*) from products").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		err = public.QueryRow(c, "select count(*) from product_variants").Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	products := []struct {
		name      string
		reader    Reader
		productID uuid.UUID
		wantErr   error
		wantPrice string
		wantB2B   bool
	}{
		{name: "retail reads retail product", reader: retail, productID: paprikaID, wantPrice: "10"},
		{name: "retail hides wholesale product", reader: retail, productID: cuminSackID, wantErr: cartErrors.ErrProductNotFound},
		{name: "retail hides inactive product", reader: retail, productID: retiredID, wantErr: cartErrors.ErrProductNotFound},
		{name: "wholesale reads wholesale product", reader: wholesale, productID: cuminSackID, wantPrice: "900", wantB2B: true},
		{name: "wholesale reads price hidden product", reader: wholesale, productID: saffronBulkID, wantPrice: "0", wantB2B: true},
		{name: "wholesale reads retail product", reader: wholesale, productID: paprikaID, wantPrice: "10"},
		{name: "unknown product", reader: wholesale, productID: uuid.New(), wantErr: cartErrors.ErrProductNotFound},
	}
	for _, tt := range products {
		t.Run(tt.name, func(t *testing.T) {
			for range 2 {
				got, err := tt.reader.GetProduct(c, tt.productID)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
					continue
				}
				require.NoError(t, err)
				assert.Equal(t, tt.productID, got.ID)
				assert.Equal(t, tt.wantB2B, got.IsB2B)
				assert.True(t, decimal.RequireFromString(tt.wantPrice).Equal(got.Price), got.Price.String())
			}
		})
	}

	variants := []struct {
		name      string
		reader    Reader
		variantID uuid.UUID
		productID uuid.UUID
		wantErr   error
		wantPrice decimal.NullDecimal
	}{
		{
			name:      "retail reads priced variant",
			reader:    retail,
			variantID: paprika100gID,
			productID: paprikaID,
			wantPrice: decimal.NewNullDecimal(decimal.RequireFromString("12.50")),
		},
		{name: "retail reads unpriced variant", reader: retail, variantID: paprika50gID, productID: paprikaID},
		{
			name:      "retail hides variant of wholesale product",
			reader:    retail,
			variantID: cuminPalletID,
			productID: cuminSackID,
			wantErr:   cartErrors.ErrVariantNotFound,
		},
		{
			name:      "variant must belong to product",
			reader:    wholesale,
			variantID: cuminPalletID,
			productID: paprikaID,
			wantErr:   cartErrors.ErrVariantNotFound,
		},
		{
			name:      "wholesale reads variant",
			reader:    wholesale,
			variantID: cuminPalletID,
			productID: cuminSackID,
			wantPrice: decimal.NewNullDecimal(decimal.NewFromInt(850)),
		},
	}
	for _, tt := range variants {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.reader.GetVariant(c, tt.variantID, tt.productID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.productID, got.ProductID)
			assert.Equal(t, tt.wantPrice.Valid, got.Price.Valid)
			if tt.wantPrice.Valid {
				assert.True(t, tt.wantPrice.Decimal.Equal(got.Price.Decimal))
			}
		})
	}

	t.Run("unknown channel has no reader", func(t *testing.T) {
		_, err := readers.For(domain.Channel("b2x"))
		assert.ErrorIs(t, err, cartErrors.ErrValidation)
	})
}
