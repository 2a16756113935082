package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const cartColumns = `id, user_id, anonymous_token_hash, channel, status, created_at, updated_at`

func scanCart(row interface{ Scan(...interface{}) error }) (Cart, error) {
	var i Cart
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.AnonymousTokenHash,
		&i.Channel,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findActiveCartByUserId = `-- name: FindActiveCartByUserId :one
select ` + cartColumns + ` from carts
where user_id = $1 and channel = $2 and status = 'active'
`

type FindActiveCartByUserIdParams struct {
	UserID  uuid.UUID `json:"user_id"`
	Channel string    `json:"channel"`
}

func (q *Queries) FindActiveCartByUserId(
	ctx context.Context,
	arg FindActiveCartByUserIdParams,
) (Cart, error) {
	row := q.db.QueryRow(ctx, findActiveCartByUserId, arg.UserID, arg.Channel)
	return scanCart(row)
}

const findActiveCartByAnonymousTokenHash = `-- name: FindActiveCartByAnonymousTokenHash :one
select ` + cartColumns + ` from carts
where anonymous_token_hash = $1 and channel = $2 and status = 'active'
`

type FindActiveCartByAnonymousTokenHashParams struct {
	AnonymousTokenHash string `json:"anonymous_token_hash"`
	Channel            string `json:"channel"`
}

func (q *Queries) FindActiveCartByAnonymousTokenHash(
	ctx context.Context,
	arg FindActiveCartByAnonymousTokenHashParams,
) (Cart, error) {
	row := q.db.QueryRow(ctx, findActiveCartByAnonymousTokenHash, arg.AnonymousTokenHash, arg.Channel)
	return scanCart(row)
}

const insertCart = `-- name: InsertCart :one
insert into carts (id, user_id, anonymous_token_hash, channel, status)
values ($1, $2, $3, $4, 'active')
on conflict do nothing
returning ` + cartColumns + `
`

type InsertCartParams struct {
	ID                 uuid.UUID     `json:"id"`
	UserID             uuid.NullUUID `json:"user_id"`
	AnonymousTokenHash pgtype.Text   `json:"anonymous_token_hash"`
	Channel            string        `json:"channel"`
}

// InsertCart returns pgx.ErrNoRows when an active cart already exists for the identity and channel.
func (q *Queries) InsertCart(ctx context.Context, arg InsertCartParams) (Cart, error) {
	row := q.db.QueryRow(ctx, insertCart,
		arg.ID,
		arg.UserID,
		arg.AnonymousTokenHash,
		arg.Channel,
	)
	return scanCart(row)
}

const touchCart = `-- name: TouchCart :execrows
update carts set updated_at = now() where id = $1
`

func (q *Queries) TouchCart(ctx context.Context, id uuid.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, touchCart, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const updateCartStatus = `-- name: UpdateCartStatus :execrows
update carts set status = $2, updated_at = now() where id = $1 and status = 'active'
`

type UpdateCartStatusParams struct {
	ID     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

func (q *Queries) UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateCartStatus, arg.ID, arg.Status)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
