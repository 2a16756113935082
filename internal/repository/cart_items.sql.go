package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartItemColumns = `id, cart_id, product_id, variant_id, quantity, unit_price, created_at, updated_at`

func scanCartItem(row interface{ Scan(...interface{}) error }) (CartItem, error) {
	var i CartItem
	err := row.Scan(
		&i.ID,
		&i.CartID,
		&i.ProductID,
		&i.VariantID,
		&i.Quantity,
		&i.UnitPrice,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findCartItemsByCartId = `-- name: FindCartItemsByCartId :many
select ` + cartItemColumns + ` from cart_items
where cart_id = $1
order by created_at, id
`

func (q *Queries) FindCartItemsByCartId(ctx context.Context, cartID uuid.UUID) ([]CartItem, error) {
	rows, err := q.db.Query(ctx, findCartItemsByCartId, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []CartItem{}
	for rows.Next() {
		i, err := scanCartItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const findCartItemByIdAndCartId = `-- name: FindCartItemByIdAndCartId :one
select ` + cartItemColumns + ` from cart_items
where id = $1 and cart_id = $2
`

type FindCartItemByIdAndCartIdParams struct {
	ID     uuid.UUID `json:"id"`
	CartID uuid.UUID `json:"cart_id"`
}

func (q *Queries) FindCartItemByIdAndCartId(
	ctx context.Context,
	arg FindCartItemByIdAndCartIdParams,
) (CartItem, error) {
	row := q.db.QueryRow(ctx, findCartItemByIdAndCartId, arg.ID, arg.CartID)
	return scanCartItem(row)
}

const upsertCartItem = `-- name: UpsertCartItem :one
insert into cart_items (id, cart_id, product_id, variant_id, quantity, unit_price)
values ($1, $2, $3, $4, $5, $6)
on conflict on constraint cart_items_cart_product_variant_key do update
set quantity = cart_items.quantity + excluded.quantity,
    unit_price = excluded.unit_price,
    updated_at = now()
returning ` + cartItemColumns + `
`

type UpsertCartItemParams struct {
	ID        uuid.UUID      `json:"id"`
	CartID    uuid.UUID      `json:"cart_id"`
	ProductID uuid.UUID      `json:"product_id"`
	VariantID uuid.NullUUID  `json:"variant_id"`
	Quantity  int32          `json:"quantity"`
	UnitPrice pgtype.Numeric `json:"unit_price"`
}

func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(ctx, upsertCartItem,
		arg.ID,
		arg.CartID,
		arg.ProductID,
		arg.VariantID,
		arg.Quantity,
		arg.UnitPrice,
	)
	return scanCartItem(row)
}

const updateCartItemQuantity = `-- name: UpdateCartItemQuantity :execrows
update cart_items set quantity = $3, updated_at = now()
where id = $1 and cart_id = $2
`

type UpdateCartItemQuantityParams struct {
	ID       uuid.UUID `json:"id"`
	CartID   uuid.UUID `json:"cart_id"`
	Quantity int32     `json:"quantity"`
}

func (q *Queries) UpdateCartItemQuantity(
	ctx context.Context,
	arg UpdateCartItemQuantityParams,
) (int64, error) {
	result, err := q.db.Exec(ctx, updateCartItemQuantity, arg.ID, arg.CartID, arg.Quantity)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItemByIdAndCartId = `-- name: DeleteCartItemByIdAndCartId :execrows
delete from cart_items where id = $1 and cart_id = $2
`

type DeleteCartItemByIdAndCartIdParams struct {
	ID     uuid.UUID `json:"id"`
	CartID uuid.UUID `json:"cart_id"`
}

func (q *Queries) DeleteCartItemByIdAndCartId(
	ctx context.Context,
	arg DeleteCartItemByIdAndCartIdParams,
) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItemByIdAndCartId, arg.ID, arg.CartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteCartItemsByCartId = `-- name: DeleteCartItemsByCartId :execrows
delete from cart_items where cart_id = $1
`

func (q *Queries) DeleteCartItemsByCartId(ctx context.Context, cartID uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItemsByCartId, cartID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
