package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
	"github.com/Alturino/spices/internal/repository"
)

// RetailReader reads the catalog through the public database role. Its queries filter
// wholesale rows out and the role's row-level policy hides them as well, so it can never
// return a product flagged for b2b.
type RetailReader struct {
	queries *repository.Queries
}

func NewRetailReader(queries *repository.Queries) *RetailReader {
	return &RetailReader{queries: queries}
}

func (r *RetailReader) GetProduct(c context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	c, span := otel.Tracer.Start(c, "RetailReader GetProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "RetailReader GetProduct").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Logger()

	logger.Trace().Msg("finding retail product")
	product, err := r.queries.FindRetailProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding retail productId=%s with error=%w", id, lookupError(err, cartErrors.ErrProductNotFound))
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return domain.ProductSnapshot{}, err
	}
	logger.Trace().Msg("found retail product")

	snapshot := productSnapshot(product)
	if snapshot.IsB2B {
		err = fmt.Errorf("retail reader received wholesale productId=%s with error=%w", id, cartErrors.ErrProductNotFound)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return domain.ProductSnapshot{}, err
	}
	return snapshot, nil
}

func (r *RetailReader) GetVariant(
	c context.Context,
	id uuid.UUID,
	productID uuid.UUID,
) (domain.VariantSnapshot, error) {
	c, span := otel.Tracer.Start(c, "RetailReader GetVariant")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "RetailReader GetVariant").
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Str(constants.KEY_VARIANT_ID, id.String()).
		Logger()

	logger.Trace().Msg("finding retail variant")
	variant, err := r.queries.FindRetailVariantByIdAndProductId(
		c,
		repository.FindVariantByIdAndProductIdParams{ID: id, ProductID: productID},
	)
	if err != nil {
		err = fmt.Errorf("failed finding retail variantId=%s with error=%w", id, lookupError(err, cartErrors.ErrVariantNotFound))
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return domain.VariantSnapshot{}, err
	}
	logger.Trace().Msg("found retail variant")

	return variantSnapshot(variant), nil
}
