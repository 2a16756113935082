package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/metric"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/cart/internal/pricing"
	"github.com/Alturino/spices/cart/pkg/response"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
)

// lines joins the stored items of cart with live catalog rows. Items whose product is gone,
// or is not sold in the cart's channel, are left out so they can neither be shown nor priced.
func (svc CartService) lines(c context.Context, cart domain.Cart) ([]pricing.Line, error) {
	c, span := otel.Tracer.Start(c, "CartService lines")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartService lines").
		Str(constants.KEY_CART_ID, cart.ID.String()).
		Logger()

	reader, err := svc.catalogs.For(cart.Channel)
	if err != nil {
		inOtel.RecordError(err, span)
		return nil, err
	}

	logger.Debug().Msg("loading line items")
	items, err := svc.store.LoadLineItems(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed loading line items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Int(constants.KEY_CART_ITEMS_COUNT, len(items)).Msg("loaded line items")

	lines := make([]pricing.Line, 0, len(items))
	for _, item := range items {
		lg := logger.With().
			Str(constants.KEY_CART_ITEM_ID, item.ID.String()).
			Str(constants.KEY_PRODUCT_ID, item.ProductID.String()).
			Logger()

		product, err := reader.GetProduct(c, item.ProductID)
		if errors.Is(err, cartErrors.ErrNotFound) {
			lg.Warn().Msg("product of line item is not in the catalog, skipping")
			continue
		}
		if err != nil {
			err = fmt.Errorf("failed finding product of line item with error=%w", err)
			inOtel.RecordError(err, span)
			lg.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		if product.Channel() != cart.Channel {
			lg.Warn().Str("productChannel", product.Channel().String()).Msg("product of line item is not sold in channel, skipping")
			continue
		}

		line := pricing.Line{Item: item, Product: product}
		if item.VariantID.Valid {
			variant, err := reader.GetVariant(c, item.VariantID.UUID, item.ProductID)
			switch {
			case err == nil:
				line.Variant = &variant
			case errors.Is(err, cartErrors.ErrNotFound):
				lg.Warn().Str(constants.KEY_VARIANT_ID, item.VariantID.UUID.String()).Msg("variant of line item is not in the catalog")
			default:
				err = fmt.Errorf("failed finding variant of line item with error=%w", err)
				inOtel.RecordError(err, span)
				lg.Error().Err(err).Msg(err.Error())
				return nil, err
			}
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (svc CartService) view(c context.Context, cart domain.Cart) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService view")
	defer span.End()

	lines, err := svc.lines(c, cart)
	if err != nil {
		inOtel.RecordError(err, span)
		return response.Cart{}, err
	}

	totals, err := svc.pricer.Totals(c, cart.Channel, lines)
	if err != nil {
		err = fmt.Errorf("failed pricing cart with error=%w", err)
		inOtel.RecordError(err, span)
		return response.Cart{}, err
	}
	if !cart.Channel.IsWholesale() {
		metric.RecordFreeShipping(totals.FreeShipping)
	}

	id := cart.ID
	updatedAt := cart.UpdatedAt
	view := response.Cart{
		ID:           &id,
		Channel:      cart.Channel.String(),
		Status:       string(cart.Status),
		Items:        cartItems(lines),
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		ShippingFee:  totals.ShippingFee,
		Total:        totals.Total,
		FreeShipping: freeShipping(totals.FreeShipping),
	}
	if !updatedAt.IsZero() {
		view.UpdatedAt = &updatedAt
	}
	return view, nil
}

// emptyView is returned to callers without an active cart. Retail callers still see the
// free shipping rule so it can be advertised.
func (svc CartService) emptyView(c context.Context, ch domain.Channel) (response.Cart, error) {
	totals, err := svc.pricer.Totals(c, ch, nil)
	if err != nil {
		return response.Cart{}, fmt.Errorf("failed pricing empty cart with error=%w", err)
	}
	view := response.EmptyCart(ch.String())
	view.FreeShipping = freeShipping(totals.FreeShipping)
	return view, nil
}

func cartItems(lines []pricing.Line) []response.CartItem {
	items := make([]response.CartItem, 0, len(lines))
	for _, line := range lines {
		stock := line.Product.Stock
		item := response.CartItem{
			ID:          line.Item.ID,
			ProductID:   line.Item.ProductID,
			Name:        line.Product.Name,
			Quantity:    line.Item.Quantity,
			UnitPrice:   pricing.UnitPrice(line),
			LineTotal:   pricing.LineTotal(line),
			HasTax:      line.Product.HasTax,
			PriceHidden: line.Product.PriceHidden,
		}
		if line.Item.VariantID.Valid {
			variantID := line.Item.VariantID.UUID
			item.VariantID = &variantID
		}
		if line.Variant != nil {
			item.VariantName = line.Variant.Name
			stock = line.Variant.Stock
		}
		item.Stock = stock
		item.InStock = stock >= line.Item.Quantity
		items = append(items, item)
	}
	return items
}

func freeShipping(result *pricing.FreeShipping) *response.FreeShipping {
	if result == nil {
		return nil
	}
	return &response.FreeShipping{
		Eligible:  result.Eligible,
		Threshold: result.Threshold,
		ExpiresAt: result.ExpiresAt,
	}
}
