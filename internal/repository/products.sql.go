package repository

import (
	"context"

	"github.com/google/uuid"
)

const productColumns = `id, name, price, stock, is_b2b, price_hidden, has_tax, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Price,
		&i.Stock,
		&i.IsB2b,
		&i.PriceHidden,
		&i.HasTax,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

func scanProductVariant(row interface{ Scan(...interface{}) error }) (ProductVariant, error) {
	var i ProductVariant
	err := row.Scan(
		&i.ID,
		&i.ProductID,
		&i.Name,
		&i.Price,
		&i.Stock,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findProductById = `-- name: FindProductById :one
select ` + productColumns + ` from products
where id = $1 and is_active
`

func (q *Queries) FindProductById(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findProductById, id)
	return scanProduct(row)
}

const findRetailProductById = `-- name: FindRetailProductById :one
select ` + productColumns + ` from products
where id = $1 and is_active and is_b2b = false
`

func (q *Queries) FindRetailProductById(ctx context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(ctx, findRetailProductById, id)
	return scanProduct(row)
}

const findVariantByIdAndProductId = `-- name: FindVariantByIdAndProductId :one
select v.id, v.product_id, v.name, v.price, v.stock, v.created_at, v.updated_at
from product_variants v
join products p on p.id = v.product_id
where v.id = $1 and v.product_id = $2 and p.is_active
`

type FindVariantByIdAndProductIdParams struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
}

func (q *Queries) FindVariantByIdAndProductId(
	ctx context.Context,
	arg FindVariantByIdAndProductIdParams,
) (ProductVariant, error) {
	row := q.db.QueryRow(ctx, findVariantByIdAndProductId, arg.ID, arg.ProductID)
	return scanProductVariant(row)
}

const findRetailVariantByIdAndProductId = `-- name: FindRetailVariantByIdAndProductId :one
select v.id, v.product_id, v.name, v.price, v.stock, v.created_at, v.updated_at
from product_variants v
join products p on p.id = v.product_id
where v.id = $1 and v.product_id = $2 and p.is_active and p.is_b2b = false
`

func (q *Queries) FindRetailVariantByIdAndProductId(
	ctx context.Context,
	arg FindVariantByIdAndProductIdParams,
) (ProductVariant, error) {
	row := q.db.QueryRow(ctx, findRetailVariantByIdAndProductId, arg.ID, arg.ProductID)
	return scanProductVariant(row)
}
