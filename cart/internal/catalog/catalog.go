package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/internal/repository"
)

// Reader is a read-only view of the catalog for one channel.
type Reader interface {
	GetProduct(c context.Context, id uuid.UUID) (domain.ProductSnapshot, error)
	GetVariant(c context.Context, id uuid.UUID, productID uuid.UUID) (domain.VariantSnapshot, error)
}

// Readers holds the reader of every channel. It is built once at wiring time.
type Readers map[domain.Channel]Reader

func (r Readers) For(ch domain.Channel) (Reader, error) {
	reader, ok := r[ch]
	if !ok || reader == nil {
		return nil, fmt.Errorf("no catalog reader for channel=%s with error=%w", ch, cartErrors.ErrValidation)
	}
	return reader, nil
}

func productSnapshot(p repository.Product) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ID:          p.ID,
		Name:        p.Name,
		Price:       repository.DecimalFromNumeric(p.Price),
		Stock:       p.Stock,
		IsB2B:       p.IsB2b,
		PriceHidden: p.PriceHidden,
		HasTax:      p.HasTax,
	}
}

func variantSnapshot(v repository.ProductVariant) domain.VariantSnapshot {
	return domain.VariantSnapshot{
		ID:        v.ID,
		ProductID: v.ProductID,
		Name:      v.Name,
		Price:     repository.NullDecimalFromNumeric(v.Price),
		Stock:     v.Stock,
	}
}

func lookupError(err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return fmt.Errorf("%w: %w", cartErrors.ErrStoreFailure, err)
}
