package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
	"github.com/Alturino/spices/internal/repository"
)

// CartStore persists carts and their line items in postgres. Every error it returns that
// is not a not-found error wraps ErrStoreFailure.
type CartStore struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
}

func NewCartStore(pool *pgxpool.Pool, queries *repository.Queries) CartStore {
	return CartStore{pool: pool, queries: queries}
}

func storeFailure(err error) error {
	return fmt.Errorf("%w: %w", cartErrors.ErrStoreFailure, err)
}

func (s CartStore) inTx(
	c context.Context,
	logger zerolog.Logger,
	span trace.Span,
	fn func(queries *repository.Queries) error,
) error {
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed initializing transaction with error=%w", storeFailure(err))
	}
	logger.Trace().Msg("initialized transaction")
	defer func() {
		if err := tx.Rollback(c); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()

	if err := fn(s.queries.WithTx(tx)); err != nil {
		return err
	}

	logger.Trace().Msg("committing transaction")
	if err := tx.Commit(c); err != nil {
		return fmt.Errorf("failed committing transaction with error=%w", storeFailure(err))
	}
	logger.Trace().Msg("committed transaction")
	return nil
}

// LoadActiveCart returns ErrCartNotFound when the identity has no active cart in ch.
func (s CartStore) LoadActiveCart(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartStore LoadActiveCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore LoadActiveCart").
		Str(constants.KEY_CHANNEL, ch.String()).
		Str(constants.KEY_IDENTITY_KIND, string(identity.Kind)).
		Logger()

	if !identity.HasKey() {
		logger.Trace().Msg("identity has no key")
		return domain.Cart{}, cartErrors.ErrCartNotFound
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "finding active cart").Logger()
	logger.Trace().Msg("finding active cart")
	var (
		row repository.Cart
		err error
	)
	if identity.IsAnonymous() {
		row, err = s.queries.FindActiveCartByAnonymousTokenHash(
			c,
			repository.FindActiveCartByAnonymousTokenHashParams{
				AnonymousTokenHash: identity.Key(),
				Channel:            ch.String(),
			},
		)
	} else {
		row, err = s.queries.FindActiveCartByUserId(
			c,
			repository.FindActiveCartByUserIdParams{UserID: identity.UserID, Channel: ch.String()},
		)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Trace().Msg("active cart not found")
		return domain.Cart{}, cartErrors.ErrCartNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding active cart with error=%w", storeFailure(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	logger.Trace().Str(constants.KEY_CART_ID, row.ID.String()).Msg("found active cart")

	return cartFromRow(row), nil
}

// CreateCart creates the active cart of the identity in ch. Concurrent first requests
// converge on a single cart: the loser of the insert race reloads the winner's cart.
func (s CartStore) CreateCart(
	c context.Context,
	identity domain.Identity,
	ch domain.Channel,
) (domain.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartStore CreateCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore CreateCart").
		Str(constants.KEY_CHANNEL, ch.String()).
		Str(constants.KEY_IDENTITY_KIND, string(identity.Kind)).
		Logger()

	if !identity.HasKey() {
		err := fmt.Errorf("failed creating cart with error=%w", cartErrors.NewValidationError("identity", "has no key"))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}

	params := repository.InsertCartParams{
		ID:                 uuid.New(),
		AnonymousTokenHash: tokenHash(identity),
		Channel:            ch.String(),
	}
	if !identity.IsAnonymous() {
		params.UserID = uuid.NullUUID{UUID: identity.UserID, Valid: true}
	}

	logger = logger.With().Str(constants.KEY_PROCESS, "inserting cart").Logger()
	logger.Trace().Msg("inserting cart")
	row, err := s.queries.InsertCart(c, params)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Trace().Msg("active cart already exists, reloading")
		return s.LoadActiveCart(c, identity, ch)
	}
	if err != nil {
		err = fmt.Errorf("failed inserting cart with error=%w", storeFailure(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.Cart{}, err
	}
	logger.Trace().Str(constants.KEY_CART_ID, row.ID.String()).Msg("inserted cart")

	return cartFromRow(row), nil
}

// UpsertLineItem adds quantity to the (product, variant) line of the cart, creating it if
// absent, and overwrites the stored unit price with unitPrice. The increment happens in a
// single statement so concurrent adds never lose an update.
func (s CartStore) UpsertLineItem(
	c context.Context,
	cartID uuid.UUID,
	productID uuid.UUID,
	variantID uuid.NullUUID,
	quantity int32,
	unitPrice decimal.NullDecimal,
) (domain.LineItem, error) {
	c, span := otel.Tracer.Start(c, "CartStore UpsertLineItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore UpsertLineItem").
		Str(constants.KEY_CART_ID, cartID.String()).
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Int32(constants.KEY_CART_ITEM_QUANTITY, quantity).
		Logger()

	var item repository.CartItem
	err := s.inTx(c, logger, span, func(queries *repository.Queries) error {
		logger.Trace().Msg("upserting cart item")
		row, err := queries.UpsertCartItem(c, repository.UpsertCartItemParams{
			ID:        uuid.New(),
			CartID:    cartID,
			ProductID: productID,
			VariantID: variantID,
			Quantity:  quantity,
			UnitPrice: repository.NullNumericFromDecimal(unitPrice),
		})
		if err != nil {
			return fmt.Errorf("failed upserting cart item with error=%w", storeFailure(err))
		}
		item = row
		logger.Trace().Str(constants.KEY_CART_ITEM_ID, row.ID.String()).Msg("upserted cart item")

		logger.Trace().Msg("touching cart")
		if _, err := queries.TouchCart(c, cartID); err != nil {
			return fmt.Errorf("failed touching cart with error=%w", storeFailure(err))
		}
		logger.Trace().Msg("touched cart")
		return nil
	})
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.LineItem{}, err
	}

	return lineItemFromRow(item), nil
}

func (s CartStore) LoadLineItems(c context.Context, cartID uuid.UUID) ([]domain.LineItem, error) {
	c, span := otel.Tracer.Start(c, "CartStore LoadLineItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore LoadLineItems").
		Str(constants.KEY_CART_ID, cartID.String()).
		Logger()

	logger.Trace().Msg("finding cart items")
	rows, err := s.queries.FindCartItemsByCartId(c, cartID)
	if err != nil {
		err = fmt.Errorf("failed finding cart items with error=%w", storeFailure(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Int(constants.KEY_CART_ITEMS_COUNT, len(rows)).Msg("found cart items")

	return lineItemsFromRows(rows), nil
}

// FindLineItem returns ErrCartItemNotFound when itemID is not a line of cartID.
func (s CartStore) FindLineItem(c context.Context, cartID uuid.UUID, itemID uuid.UUID) (domain.LineItem, error) {
	c, span := otel.Tracer.Start(c, "CartStore FindLineItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore FindLineItem").
		Str(constants.KEY_CART_ID, cartID.String()).
		Str(constants.KEY_CART_ITEM_ID, itemID.String()).
		Logger()

	logger.Trace().Msg("finding cart item")
	row, err := s.queries.FindCartItemByIdAndCartId(
		c,
		repository.FindCartItemByIdAndCartIdParams{ID: itemID, CartID: cartID},
	)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Trace().Msg("cart item not found")
		return domain.LineItem{}, cartErrors.ErrCartItemNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed finding cart item with error=%w", storeFailure(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.LineItem{}, err
	}
	logger.Trace().Msg("found cart item")

	return lineItemFromRow(row), nil
}

// UpdateLineItemQuantity sets the quantity of a line. It returns ErrCartItemNotFound when
// itemID is not a line of cartID.
func (s CartStore) UpdateLineItemQuantity(
	c context.Context,
	cartID uuid.UUID,
	itemID uuid.UUID,
	quantity int32,
) error {
	c, span := otel.Tracer.Start(c, "CartStore UpdateLineItemQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore UpdateLineItemQuantity").
		Str(constants.KEY_CART_ID, cartID.String()).
		Str(constants.KEY_CART_ITEM_ID, itemID.String()).
		Int32(constants.KEY_CART_ITEM_QUANTITY, quantity).
		Logger()

	err := s.inTx(c, logger, span, func(queries *repository.Queries) error {
		logger.Trace().Msg("updating cart item quantity")
		affected, err := queries.UpdateCartItemQuantity(c, repository.UpdateCartItemQuantityParams{
			ID:       itemID,
			CartID:   cartID,
			Quantity: quantity,
		})
		if err != nil {
			return fmt.Errorf("failed updating cart item quantity with error=%w", storeFailure(err))
		}
		if affected == 0 {
			return cartErrors.ErrCartItemNotFound
		}
		logger.Trace().Msg("updated cart item quantity")

		if _, err := queries.TouchCart(c, cartID); err != nil {
			return fmt.Errorf("failed touching cart with error=%w", storeFailure(err))
		}
		return nil
	})
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

// DeleteLineItem reports whether a line was removed. Removing an absent line is not an error.
func (s CartStore) DeleteLineItem(c context.Context, cartID uuid.UUID, itemID uuid.UUID) (bool, error) {
	c, span := otel.Tracer.Start(c, "CartStore DeleteLineItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore DeleteLineItem").
		Str(constants.KEY_CART_ID, cartID.String()).
		Str(constants.KEY_CART_ITEM_ID, itemID.String()).
		Logger()

	var deleted bool
	err := s.inTx(c, logger, span, func(queries *repository.Queries) error {
		logger.Trace().Msg("deleting cart item")
		affected, err := queries.DeleteCartItemByIdAndCartId(
			c,
			repository.DeleteCartItemByIdAndCartIdParams{ID: itemID, CartID: cartID},
		)
		if err != nil {
			return fmt.Errorf("failed deleting cart item with error=%w", storeFailure(err))
		}
		deleted = affected > 0
		logger.Trace().Bool("deleted", deleted).Msg("deleted cart item")

		if !deleted {
			return nil
		}
		if _, err := queries.TouchCart(c, cartID); err != nil {
			return fmt.Errorf("failed touching cart with error=%w", storeFailure(err))
		}
		return nil
	})
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return false, err
	}
	return deleted, nil
}

// DeleteAllLineItems empties the cart and returns how many lines were removed.
func (s CartStore) DeleteAllLineItems(c context.Context, cartID uuid.UUID) (int64, error) {
	c, span := otel.Tracer.Start(c, "CartStore DeleteAllLineItems")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore DeleteAllLineItems").
		Str(constants.KEY_CART_ID, cartID.String()).
		Logger()

	var deleted int64
	err := s.inTx(c, logger, span, func(queries *repository.Queries) error {
		logger.Trace().Msg("deleting cart items")
		affected, err := queries.DeleteCartItemsByCartId(c, cartID)
		if err != nil {
			return fmt.Errorf("failed deleting cart items with error=%w", storeFailure(err))
		}
		deleted = affected
		logger.Trace().Int64(constants.KEY_CART_ITEMS_COUNT, affected).Msg("deleted cart items")

		if _, err := queries.TouchCart(c, cartID); err != nil {
			return fmt.Errorf("failed touching cart with error=%w", storeFailure(err))
		}
		return nil
	})
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	return deleted, nil
}

// MarkCheckedOut moves an active cart to checked_out. It returns ErrCartNotFound when the
// cart is no longer active.
func (s CartStore) MarkCheckedOut(c context.Context, cartID uuid.UUID) error {
	c, span := otel.Tracer.Start(c, "CartStore MarkCheckedOut")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CartStore MarkCheckedOut").
		Str(constants.KEY_CART_ID, cartID.String()).
		Logger()

	logger.Trace().Msg("updating cart status")
	affected, err := s.queries.UpdateCartStatus(c, repository.UpdateCartStatusParams{
		ID:     cartID,
		Status: string(domain.CartStatusCheckedOut),
	})
	if err != nil {
		err = fmt.Errorf("failed updating cart status with error=%w", storeFailure(err))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if affected == 0 {
		logger.Info().Msg("cart is no longer active")
		return cartErrors.ErrCartNotFound
	}
	logger.Trace().Msg("updated cart status")
	return nil
}
