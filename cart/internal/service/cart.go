package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Alturino/spices/cart/internal/catalog"
	"github.com/Alturino/spices/cart/internal/checkout"
	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/metric"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/cart/internal/pricing"
	"github.com/Alturino/spices/cart/pkg/request"
	"github.com/Alturino/spices/cart/pkg/response"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
)

const (
	OperationGetCart            = "get_cart"
	OperationAddToCart          = "add_to_cart"
	OperationUpdateItemQuantity = "update_item_quantity"
	OperationRemoveItem         = "remove_item"
	OperationClearCart          = "clear_cart"
	OperationCheckout           = "checkout"
)

type CartStore interface {
	LoadActiveCart(c context.Context, identity domain.Identity, ch domain.Channel) (domain.Cart, error)
	CreateCart(c context.Context, identity domain.Identity, ch domain.Channel) (domain.Cart, error)
	UpsertLineItem(
		c context.Context,
		cartID uuid.UUID,
		productID uuid.UUID,
		variantID uuid.NullUUID,
		quantity int32,
		unitPrice decimal.NullDecimal,
	) (domain.LineItem, error)
	LoadLineItems(c context.Context, cartID uuid.UUID) ([]domain.LineItem, error)
	UpdateLineItemQuantity(c context.Context, cartID uuid.UUID, itemID uuid.UUID, quantity int32) error
	DeleteLineItem(c context.Context, cartID uuid.UUID, itemID uuid.UUID) (bool, error)
	DeleteAllLineItems(c context.Context, cartID uuid.UUID) (int64, error)
	MarkCheckedOut(c context.Context, cartID uuid.UUID) error
}

type CatalogReaders interface {
	For(ch domain.Channel) (catalog.Reader, error)
}

type Pricer interface {
	Totals(c context.Context, ch domain.Channel, lines []pricing.Line) (pricing.Totals, error)
}

type OrderClient interface {
	Submit(c context.Context, handoff checkout.Handoff) (checkout.Receipt, error)
}

// CartService is the only entry point to carts. Every operation takes the caller's identity
// and the channel explicitly, and never infers either from the request.
type CartService struct {
	store    CartStore
	catalogs CatalogReaders
	pricer   Pricer
	orders   OrderClient
}

func NewCartService(
	store CartStore,
	catalogs CatalogReaders,
	pricer Pricer,
	orders OrderClient,
) CartService {
	return CartService{store: store, catalogs: catalogs, pricer: pricer, orders: orders}
}

func checkChannel(ch domain.Channel) error {
	if !ch.Valid() {
		return cartErrors.NewValidationError("channel", "must be b2c or b2b")
	}
	return nil
}

func (svc CartService) logger(c context.Context, tag string, identity domain.Identity, ch domain.Channel) zerolog.Logger {
	return zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, tag).
		Str(constants.KEY_CHANNEL, ch.String()).
		Str(constants.KEY_IDENTITY_KIND, string(identity.Kind)).
		Str(constants.KEY_IDENTITY_KEY, identity.Key()).
		Logger()
}

// GetCart returns the hydrated active cart. A caller without a cart gets an empty cart,
// never an error.
func (svc CartService) GetCart(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
) (cart response.Cart, err error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()
	defer func() { metric.RecordOperation(OperationGetCart, ch, err) }()

	logger := svc.logger(c, "CartService GetCart", identity, ch)
	c = logger.WithContext(c)

	if err = checkChannel(ch); err != nil {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "loading active cart").Logger()
	logger.Debug().Msg("loading active cart")
	active, err := svc.store.LoadActiveCart(c, identity, ch)
	if errors.Is(err, cartErrors.ErrCartNotFound) {
		logger.Debug().Msg("no active cart")
		return svc.emptyView(c, ch)
	}
	if err != nil {
		err = fmt.Errorf("failed loading active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Debug().Str(constants.KEY_CART_ID, active.ID.String()).Msg("loaded active cart")

	cart, err = svc.view(c, active)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return cart, nil
}

// AddToCart validates the product against the channel, snapshots its price and adds
// quantity to the matching line, creating the cart on first write.
func (svc CartService) AddToCart(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
	req request.AddToCart,
) (cart response.Cart, err error) {
	c, span := otel.Tracer.Start(c, "CartService AddToCart")
	defer span.End()
	defer func() { metric.RecordOperation(OperationAddToCart, ch, err) }()

	logger := svc.logger(c, "CartService AddToCart", identity, ch).
		With().
		Str(constants.KEY_PRODUCT_ID, req.ProductID.String()).
		Int32(constants.KEY_CART_ITEM_QUANTITY, req.Quantity).
		Logger()
	c = logger.WithContext(c)

	fail := func(err error) (response.Cart, error) {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	logger.Debug().Msg("validating request")
	if err = checkChannel(ch); err != nil {
		return fail(err)
	}
	if err = request.Validate(c, req); err != nil {
		return fail(err)
	}
	logger.Debug().Msg("validated request")

	reader, err := svc.catalogs.For(ch)
	if err != nil {
		return fail(err)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "finding product").Logger()
	logger.Debug().Msg("finding product")
	product, err := reader.GetProduct(c, req.ProductID)
	if err != nil {
		return fail(fmt.Errorf("failed finding product with error=%w", err))
	}
	if product.Channel() != ch {
		return fail(fmt.Errorf("product is sold in channel=%s with error=%w", product.Channel(), cartErrors.ErrChannelMismatch))
	}
	if product.PriceHidden {
		return fail(fmt.Errorf("failed adding product with error=%w", cartErrors.ErrPriceHidden))
	}
	logger.Debug().Msg("found product")

	var (
		variant   *domain.VariantSnapshot
		variantID uuid.NullUUID
	)
	if req.VariantID != nil {
		logger = logger.With().
			Str(constants.KEY_PROCESS, "finding variant").
			Str(constants.KEY_VARIANT_ID, req.VariantID.String()).
			Logger()
		logger.Debug().Msg("finding variant")
		found, err := reader.GetVariant(c, *req.VariantID, product.ID)
		if err != nil {
			return fail(fmt.Errorf("failed finding variant with error=%w", err))
		}
		if found.ProductID != product.ID {
			return fail(fmt.Errorf("variant belongs to another product with error=%w", cartErrors.ErrVariantNotFound))
		}
		variant = &found
		variantID = uuid.NullUUID{UUID: found.ID, Valid: true}
		logger.Debug().Msg("found variant")
	}

	active, err := svc.loadOrCreateCart(c, identity, ch)
	if err != nil {
		return fail(err)
	}

	unitPrice := pricing.SnapshotPrice(product, variant)
	logger = logger.With().
		Str(constants.KEY_PROCESS, "upserting line item").
		Str(constants.KEY_CART_ID, active.ID.String()).
		Logger()
	logger.Debug().Str("unitPrice", unitPrice.String()).Msg("upserting line item")
	item, err := svc.store.UpsertLineItem(
		c,
		active.ID,
		product.ID,
		variantID,
		req.Quantity,
		decimal.NewNullDecimal(unitPrice),
	)
	if err != nil {
		err = fmt.Errorf("failed upserting line item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().
		Str(constants.KEY_CART_ITEM_ID, item.ID.String()).
		Int32("lineQuantity", item.Quantity).
		Msg("upserted line item")

	cart, err = svc.view(c, active)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	return cart, nil
}

func (svc CartService) loadOrCreateCart(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
) (domain.Cart, error) {
	logger := zerolog.Ctx(c).With().Str(constants.KEY_PROCESS, "loading active cart").Logger()

	logger.Debug().Msg("loading active cart")
	active, err := svc.store.LoadActiveCart(c, identity, ch)
	if err == nil {
		logger.Debug().Str(constants.KEY_CART_ID, active.ID.String()).Msg("loaded active cart")
		return active, nil
	}
	if !errors.Is(err, cartErrors.ErrCartNotFound) {
		return domain.Cart{}, fmt.Errorf("failed loading active cart with error=%w", err)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "creating cart").Logger()
	logger.Debug().Msg("creating cart")
	active, err = svc.store.CreateCart(c, identity, ch)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("failed creating cart with error=%w", err)
	}
	logger.Info().Str(constants.KEY_CART_ID, active.ID.String()).Msg("created cart")
	return active, nil
}

// UpdateItemQuantity sets a line's quantity in the caller's cart. A quantity of zero or
// less removes the line. Stock is not checked here, it is only advisory on display.
func (svc CartService) UpdateItemQuantity(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
	req request.UpdateItemQuantity,
) (cart response.Cart, err error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItemQuantity")
	defer span.End()

	logger := svc.logger(c, "CartService UpdateItemQuantity", identity, ch).
		With().
		Str(constants.KEY_CART_ITEM_ID, req.ItemID.String()).
		Int32(constants.KEY_CART_ITEM_QUANTITY, req.Quantity).
		Logger()
	c = logger.WithContext(c)

	if req.Quantity <= 0 {
		logger.Debug().Msg("quantity is not positive, removing item")
		return svc.RemoveItem(c, identity, ch, request.RemoveItem{ItemID: req.ItemID})
	}
	defer func() { metric.RecordOperation(OperationUpdateItemQuantity, ch, err) }()

	fail := func(err error) (response.Cart, error) {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	if err = checkChannel(ch); err != nil {
		return fail(err)
	}
	if err = request.Validate(c, req); err != nil {
		return fail(err)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "loading active cart").Logger()
	logger.Debug().Msg("loading active cart")
	active, err := svc.store.LoadActiveCart(c, identity, ch)
	if errors.Is(err, cartErrors.ErrCartNotFound) {
		return fail(fmt.Errorf("caller has no active cart with error=%w", cartErrors.ErrCartItemNotFound))
	}
	if err != nil {
		return fail(fmt.Errorf("failed loading active cart with error=%w", err))
	}
	logger.Debug().Msg("loaded active cart")

	logger = logger.With().
		Str(constants.KEY_PROCESS, "updating line item quantity").
		Str(constants.KEY_CART_ID, active.ID.String()).
		Logger()
	logger.Debug().Msg("updating line item quantity")
	if err = svc.store.UpdateLineItemQuantity(c, active.ID, req.ItemID, req.Quantity); err != nil {
		return fail(fmt.Errorf("failed updating line item quantity with error=%w", err))
	}
	logger.Info().Msg("updated line item quantity")

	cart, err = svc.view(c, active)
	if err != nil {
		return fail(err)
	}
	return cart, nil
}

// RemoveItem deletes a line from the caller's cart. Removing a line that does not exist,
// or belongs to somebody else, is a no-op.
func (svc CartService) RemoveItem(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
	req request.RemoveItem,
) (cart response.Cart, err error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()
	defer func() { metric.RecordOperation(OperationRemoveItem, ch, err) }()

	logger := svc.logger(c, "CartService RemoveItem", identity, ch).
		With().
		Str(constants.KEY_CART_ITEM_ID, req.ItemID.String()).
		Logger()
	c = logger.WithContext(c)

	fail := func(err error) (response.Cart, error) {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}

	if err = checkChannel(ch); err != nil {
		return fail(err)
	}
	if err = request.Validate(c, req); err != nil {
		return fail(err)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "loading active cart").Logger()
	logger.Debug().Msg("loading active cart")
	active, err := svc.store.LoadActiveCart(c, identity, ch)
	if errors.Is(err, cartErrors.ErrCartNotFound) {
		logger.Debug().Msg("no active cart, nothing to remove")
		return svc.emptyView(c, ch)
	}
	if err != nil {
		return fail(fmt.Errorf("failed loading active cart with error=%w", err))
	}
	logger.Debug().Msg("loaded active cart")

	logger = logger.With().
		Str(constants.KEY_PROCESS, "deleting line item").
		Str(constants.KEY_CART_ID, active.ID.String()).
		Logger()
	logger.Debug().Msg("deleting line item")
	deleted, err := svc.store.DeleteLineItem(c, active.ID, req.ItemID)
	if err != nil {
		return fail(fmt.Errorf("failed deleting line item with error=%w", err))
	}
	logger.Info().Bool("deleted", deleted).Msg("deleted line item")

	cart, err = svc.view(c, active)
	if err != nil {
		return fail(err)
	}
	return cart, nil
}

// ClearCart empties the caller's cart and keeps the cart row active for reuse. Only an
// anonymous caller is told to forget its token.
func (svc CartService) ClearCart(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
) (cleared response.ClearCart, err error) {
	c, span := otel.Tracer.Start(c, "CartService ClearCart")
	defer span.End()
	defer func() { metric.RecordOperation(OperationClearCart, ch, err) }()

	logger := svc.logger(c, "CartService ClearCart", identity, ch)
	c = logger.WithContext(c)

	fail := func(err error) (response.ClearCart, error) {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.ClearCart{}, err
	}

	if err = checkChannel(ch); err != nil {
		return fail(err)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "loading active cart").Logger()
	logger.Debug().Msg("loading active cart")
	active, err := svc.store.LoadActiveCart(c, identity, ch)
	if errors.Is(err, cartErrors.ErrCartNotFound) {
		logger.Debug().Msg("no active cart, nothing to clear")
		return response.ClearCart{Channel: ch.String()}, nil
	}
	if err != nil {
		return fail(fmt.Errorf("failed loading active cart with error=%w", err))
	}
	logger.Debug().Msg("loaded active cart")

	logger = logger.With().
		Str(constants.KEY_PROCESS, "deleting all line items").
		Str(constants.KEY_CART_ID, active.ID.String()).
		Logger()
	logger.Debug().Msg("deleting all line items")
	removed, err := svc.store.DeleteAllLineItems(c, active.ID)
	if err != nil {
		return fail(fmt.Errorf("failed deleting all line items with error=%w", err))
	}
	logger.Info().Int64(constants.KEY_CART_ITEMS_COUNT, removed).Msg("deleted all line items")

	return response.ClearCart{
		Channel:      ch.String(),
		RemovedItems: removed,
		ForgetToken:  identity.IsAnonymous(),
	}, nil
}

// Checkout hands the priced cart over to the order-creation flow and closes it. Carts with
// a price-hidden line must go through sales instead.
func (svc CartService) Checkout(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
) (summary response.Checkout, err error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()
	defer func() { metric.RecordOperation(OperationCheckout, ch, err) }()

	logger := svc.logger(c, "CartService Checkout", identity, ch)
	c = logger.WithContext(c)

	fail := func(err error) (response.Checkout, error) {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}

	if err = checkChannel(ch); err != nil {
		return fail(err)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "loading active cart").Logger()
	logger.Debug().Msg("loading active cart")
	active, err := svc.store.LoadActiveCart(c, identity, ch)
	if errors.Is(err, cartErrors.ErrCartNotFound) {
		return fail(fmt.Errorf("caller has no active cart with error=%w", cartErrors.ErrCartEmpty))
	}
	if err != nil {
		return fail(fmt.Errorf("failed loading active cart with error=%w", err))
	}
	logger = logger.With().Str(constants.KEY_CART_ID, active.ID.String()).Logger()
	logger.Debug().Msg("loaded active cart")

	lines, err := svc.lines(c, active)
	if err != nil {
		return fail(err)
	}
	if len(lines) == 0 {
		return fail(fmt.Errorf("failed checking out with error=%w", cartErrors.ErrCartEmpty))
	}
	for _, line := range lines {
		if line.Product.PriceHidden {
			return fail(fmt.Errorf("productId=%s is price hidden with error=%w", line.Product.ID, cartErrors.ErrPriceHidden))
		}
	}

	totals, err := svc.pricer.Totals(c, ch, lines)
	if err != nil {
		return fail(fmt.Errorf("failed pricing cart with error=%w", err))
	}

	handoff := checkout.Handoff{
		CartID:       active.ID,
		Channel:      ch.String(),
		IdentityKind: string(identity.Kind),
		IdentityKey:  identity.Key(),
		Lines:        make([]checkout.HandoffLine, 0, len(lines)),
		Subtotal:     totals.Subtotal,
		Tax:          totals.Tax,
		ShippingFee:  totals.ShippingFee,
		Total:        totals.Total,
	}
	for _, line := range lines {
		handoffLine := checkout.HandoffLine{
			ProductID: line.Item.ProductID,
			Quantity:  line.Item.Quantity,
			UnitPrice: pricing.UnitPrice(line),
			HasTax:    line.Product.HasTax,
		}
		if line.Item.VariantID.Valid {
			variantID := line.Item.VariantID.UUID
			handoffLine.VariantID = &variantID
		}
		handoff.Lines = append(handoff.Lines, handoffLine)
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "submitting handoff").Logger()
	logger.Debug().Msg("submitting handoff")
	receipt, err := svc.orders.Submit(c, handoff)
	if err != nil {
		return fail(fmt.Errorf("failed submitting handoff with error=%w", err))
	}
	logger.Info().Str("orderId", receipt.OrderID).Msg("submitted handoff")

	logger = logger.With().Str(constants.KEY_PROCESS, "marking cart checked out").Logger()
	logger.Debug().Msg("marking cart checked out")
	if err = svc.store.MarkCheckedOut(c, active.ID); err != nil {
		err = fmt.Errorf("failed marking cart checked out with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Checkout{}, err
	}
	logger.Info().Msg("marked cart checked out")

	return response.Checkout{
		CartID:      active.ID,
		OrderID:     receipt.OrderID,
		Channel:     ch.String(),
		Items:       cartItems(lines),
		Subtotal:    totals.Subtotal,
		Tax:         totals.Tax,
		ShippingFee: totals.ShippingFee,
		Total:       totals.Total,
	}, nil
}
