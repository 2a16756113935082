package store

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
)

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestCartStore(t *testing.T) {
	c := context.Background()
	pool, store := setup(t, c)

	t.Run("load without key finds nothing", func(t *testing.T) {
		_, err := store.LoadActiveCart(c, domain.AnonymousIdentity(""), domain.ChannelB2C)
		assert.ErrorIs(t, err, cartErrors.ErrCartNotFound)
	})

	t.Run("create is idempotent per identity and channel", func(t *testing.T) {
		user := domain.UserIdentity(uuid.New())

		first, err := store.CreateCart(c, user, domain.ChannelB2C)
		require.NoError(t, err)
		second, err := store.CreateCart(c, user, domain.ChannelB2C)
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		wholesale, err := store.CreateCart(c, user, domain.ChannelB2B)
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, wholesale.ID)
		assert.Equal(t, domain.ChannelB2B, wholesale.Channel)

		loaded, err := store.LoadActiveCart(c, user, domain.ChannelB2C)
		require.NoError(t, err)
		assert.Equal(t, first.ID, loaded.ID)
		assert.Equal(t, domain.CartStatusActive, loaded.Status)
	})

	t.Run("anonymous token is stored hashed", func(t *testing.T) {
		token := uuid.NewString()
		anonymous := domain.AnonymousIdentity(token)

		cart, err := store.CreateCart(c, anonymous, domain.ChannelB2C)
		require.NoError(t, err)
		assert.Equal(t, domain.HashToken(token), cart.AnonymousTokenHash)
		assert.False(t, cart.UserID.Valid)

		var stored string
		err = pool.QueryRow(c, "select anonymous_token_hash from carts where id = $1", cart.ID).Scan(&stored)
		require.NoError(t, err)
		assert.NotEqual(t, token, stored)
	})

	t.Run("concurrent first creates converge", func(t *testing.T) {
		user := domain.UserIdentity(uuid.New())
		ids := make([]uuid.UUID, 8)
		var wg sync.WaitGroup
		for i := range ids {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				cart, err := store.CreateCart(c, user, domain.ChannelB2C)
				assert.NoError(t, err)
				ids[i] = cart.ID
			}(i)
		}
		wg.Wait()
		for _, id := range ids {
			assert.Equal(t, ids[0], id)
		}
	})

	t.Run("repeated adds accumulate quantity", func(t *testing.T) {
		cart, err := store.CreateCart(c, domain.UserIdentity(uuid.New()), domain.ChannelB2C)
		require.NoError(t, err)
		productID := uuid.New()

		var item domain.LineItem
		for range 3 {
			item, err = store.UpsertLineItem(c, cart.ID, productID, uuid.NullUUID{}, 1, price("10.00"))
			require.NoError(t, err)
		}
		assert.Equal(t, int32(3), item.Quantity)

		items, err := store.LoadLineItems(c, cart.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int32(3), items[0].Quantity)
	})

	t.Run("concurrent adds never lose an update", func(t *testing.T) {
		cart, err := store.CreateCart(c, domain.UserIdentity(uuid.New()), domain.ChannelB2C)
		require.NoError(t, err)
		productID := uuid.New()

		var wg sync.WaitGroup
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.UpsertLineItem(c, cart.ID, productID, uuid.NullUUID{}, 2, price("4.00"))
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		items, err := store.LoadLineItems(c, cart.ID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int32(20), items[0].Quantity)
	})

	t.Run("variants are separate lines and price is overwritten", func(t *testing.T) {
		cart, err := store.CreateCart(c, domain.UserIdentity(uuid.New()), domain.ChannelB2C)
		require.NoError(t, err)
		productID := uuid.New()
		variantID := uuid.NullUUID{UUID: uuid.New(), Valid: true}

		_, err = store.UpsertLineItem(c, cart.ID, productID, uuid.NullUUID{}, 1, price("10.00"))
		require.NoError(t, err)
		_, err = store.UpsertLineItem(c, cart.ID, productID, variantID, 1, price("12.00"))
		require.NoError(t, err)
		item, err := store.UpsertLineItem(c, cart.ID, productID, variantID, 1, price("11.50"))
		require.NoError(t, err)
		assert.Equal(t, int32(2), item.Quantity)
		assert.True(t, item.UnitPrice.Decimal.Equal(decimal.RequireFromString("11.50")))

		hidden, err := store.UpsertLineItem(c, cart.ID, uuid.New(), uuid.NullUUID{}, 1, decimal.NullDecimal{})
		require.NoError(t, err)
		assert.False(t, hidden.UnitPrice.Valid)

		items, err := store.LoadLineItems(c, cart.ID)
		require.NoError(t, err)
		assert.Len(t, items, 3)
	})

	t.Run("item mutations are scoped to the cart", func(t *testing.T) {
		cart, err := store.CreateCart(c, domain.UserIdentity(uuid.New()), domain.ChannelB2C)
		require.NoError(t, err)
		other, err := store.CreateCart(c, domain.UserIdentity(uuid.New()), domain.ChannelB2C)
		require.NoError(t, err)

		item, err := store.UpsertLineItem(c, cart.ID, uuid.New(), uuid.NullUUID{}, 2, price("3.00"))
		require.NoError(t, err)

		err = store.UpdateLineItemQuantity(c, other.ID, item.ID, 5)
		assert.ErrorIs(t, err, cartErrors.ErrCartItemNotFound)
		_, err = store.FindLineItem(c, other.ID, item.ID)
		assert.ErrorIs(t, err, cartErrors.ErrCartItemNotFound)
		deleted, err := store.DeleteLineItem(c, other.ID, item.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		require.NoError(t, store.UpdateLineItemQuantity(c, cart.ID, item.ID, 5))
		found, err := store.FindLineItem(c, cart.ID, item.ID)
		require.NoError(t, err)
		assert.Equal(t, int32(5), found.Quantity)

		deleted, err = store.DeleteLineItem(c, cart.ID, item.ID)
		require.NoError(t, err)
		assert.True(t, deleted)
		deleted, err = store.DeleteLineItem(c, cart.ID, item.ID)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("clear then checkout", func(t *testing.T) {
		user := domain.UserIdentity(uuid.New())
		cart, err := store.CreateCart(c, user, domain.ChannelB2B)
		require.NoError(t, err)
		for range 2 {
			_, err = store.UpsertLineItem(c, cart.ID, uuid.New(), uuid.NullUUID{}, 1, price("1.00"))
			require.NoError(t, err)
		}

		deleted, err := store.DeleteAllLineItems(c, cart.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), deleted)
		items, err := store.LoadLineItems(c, cart.ID)
		require.NoError(t, err)
		assert.Empty(t, items)

		require.NoError(t, store.MarkCheckedOut(c, cart.ID))
		assert.ErrorIs(t, store.MarkCheckedOut(c, cart.ID), cartErrors.ErrCartNotFound)

		_, err = store.LoadActiveCart(c, user, domain.ChannelB2B)
		assert.ErrorIs(t, err, cartErrors.ErrCartNotFound)

		next, err := store.CreateCart(c, user, domain.ChannelB2B)
		require.NoError(t, err)
		assert.NotEqual(t, cart.ID, next.ID)
	})
}
