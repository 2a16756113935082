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

// WholesaleReader reads the catalog through the service role, which is not subject to
// the public row-level policy. It is only ever wired to the b2b channel.
type WholesaleReader struct {
	queries *repository.Queries
}

func NewWholesaleReader(queries *repository.Queries) *WholesaleReader {
	return &WholesaleReader{queries: queries}
}

func (r *WholesaleReader) GetProduct(c context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	c, span := otel.Tracer.Start(c, "WholesaleReader GetProduct")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "WholesaleReader GetProduct").
		Str(constants.KEY_PRODUCT_ID, id.String()).
		Logger()

	logger.Trace().Msg("finding product")
	product, err := r.queries.FindProductById(c, id)
	if err != nil {
		err = fmt.Errorf("failed finding productId=%s with error=%w", id, lookupError(err, cartErrors.ErrProductNotFound))
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return domain.ProductSnapshot{}, err
	}
	logger.Trace().Msg("found product")

	return productSnapshot(product), nil
}

func (r *WholesaleReader) GetVariant(
	c context.Context,
	id uuid.UUID,
	productID uuid.UUID,
) (domain.VariantSnapshot, error) {
	c, span := otel.Tracer.Start(c, "WholesaleReader GetVariant")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "WholesaleReader GetVariant").
		Str(constants.KEY_PRODUCT_ID, productID.String()).
		Str(constants.KEY_VARIANT_ID, id.String()).
		Logger()

	logger.Trace().Msg("finding variant")
	variant, err := r.queries.FindVariantByIdAndProductId(
		c,
		repository.FindVariantByIdAndProductIdParams{ID: id, ProductID: productID},
	)
	if err != nil {
		err = fmt.Errorf("failed finding variantId=%s with error=%w", id, lookupError(err, cartErrors.ErrVariantNotFound))
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return domain.VariantSnapshot{}, err
	}
	logger.Trace().Msg("found variant")

	return variantSnapshot(variant), nil
}
