package repository

import (
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Cart struct {
	ID                 uuid.UUID          `json:"id"`
	UserID             uuid.NullUUID      `json:"user_id"`
	AnonymousTokenHash pgtype.Text        `json:"anonymous_token_hash"`
	Channel            string             `json:"channel"`
	Status             string             `json:"status"`
	CreatedAt          pgtype.Timestamptz `json:"created_at"`
	UpdatedAt          pgtype.Timestamptz `json:"updated_at"`
}

type CartItem struct {
	ID        uuid.UUID          `json:"id"`
	CartID    uuid.UUID          `json:"cart_id"`
	ProductID uuid.UUID          `json:"product_id"`
	VariantID uuid.NullUUID      `json:"variant_id"`
	Quantity  int32              `json:"quantity"`
	UnitPrice pgtype.Numeric     `json:"unit_price"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type FreeShippingRule struct {
	ID        uuid.UUID          `json:"id"`
	Threshold pgtype.Numeric     `json:"threshold"`
	ExpiresAt pgtype.Timestamptz `json:"expires_at"`
	IsActive  bool               `json:"is_active"`
	AppliesTo string             `json:"applies_to"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type Product struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"name"`
	Price       pgtype.Numeric     `json:"price"`
	Stock       int32              `json:"stock"`
	IsB2b       bool               `json:"is_b2b"`
	PriceHidden bool               `json:"price_hidden"`
	HasTax      bool               `json:"has_tax"`
	IsActive    bool               `json:"is_active"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type ProductVariant struct {
	ID        uuid.UUID          `json:"id"`
	ProductID uuid.UUID          `json:"product_id"`
	Name      string             `json:"name"`
	Price     pgtype.Numeric     `json:"price"`
	Stock     int32              `json:"stock"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}
