package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Alturino/spices/cart/internal/domain"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
)

const (
	keyProduct = "catalog:%s:product:%s"
	keyVariant = "catalog:%s:variant:%s:%s"
)

// CachedReader keeps short-lived catalog snapshots in redis. Keys are namespaced by
// channel so a retail lookup can never be answered from a wholesale entry. Lookups that
// fail, including not found, are never cached.
type CachedReader struct {
	next    Reader
	cache   *redis.Client
	channel domain.Channel
	ttl     time.Duration
	sfg     singleflight.Group
}

func NewCachedReader(next Reader, cache *redis.Client, channel domain.Channel, ttl time.Duration) *CachedReader {
	return &CachedReader{next: next, cache: cache, channel: channel, ttl: ttl}
}

func (r *CachedReader) GetProduct(c context.Context, id uuid.UUID) (domain.ProductSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CachedReader GetProduct")
	defer span.End()

	key := fmt.Sprintf(keyProduct, r.channel, id)
	product, err := readThrough(c, r, key, func(c context.Context) (domain.ProductSnapshot, error) {
		return r.next.GetProduct(c, id)
	})
	if err != nil {
		inOtel.RecordError(err, span)
		return domain.ProductSnapshot{}, err
	}
	return product, nil
}

func (r *CachedReader) GetVariant(
	c context.Context,
	id uuid.UUID,
	productID uuid.UUID,
) (domain.VariantSnapshot, error) {
	c, span := otel.Tracer.Start(c, "CachedReader GetVariant")
	defer span.End()

	key := fmt.Sprintf(keyVariant, r.channel, productID, id)
	variant, err := readThrough(c, r, key, func(c context.Context) (domain.VariantSnapshot, error) {
		return r.next.GetVariant(c, id, productID)
	})
	if err != nil {
		inOtel.RecordError(err, span)
		return domain.VariantSnapshot{}, err
	}
	return variant, nil
}

func readThrough[T any](
	c context.Context,
	r *CachedReader,
	key string,
	load func(context.Context) (T, error),
) (T, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "CachedReader readThrough").
		Str(constants.KEY_CHANNEL, r.channel.String()).
		Str(constants.KEY_CACHE_KEY, key).
		Logger()

	var zero T
	logger.Trace().Msg("getting catalog entry from cache")
	data, err := r.cache.Get(c, key).Bytes()
	switch {
	case err == nil:
		var value T
		if err = json.Unmarshal(data, &value); err == nil {
			logger.Trace().Msg("got catalog entry from cache")
			return value, nil
		}
		logger.Warn().Err(err).Msg("failed unmarshaling cached catalog entry")
	case errors.Is(err, redis.Nil):
		logger.Trace().Msg("catalog entry not in cache")
	default:
		logger.Warn().Err(err).Msg("failed getting catalog entry from cache")
	}

	v, err, _ := r.sfg.Do(key, func() (interface{}, error) {
		value, err := load(c)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			logger.Warn().Err(err).Msg("failed marshaling catalog entry")
			return value, nil
		}
		logger.Trace().Msg("setting catalog entry to cache")
		if err := r.cache.Set(c, key, data, r.ttl).Err(); err != nil {
			logger.Warn().Err(err).Msg("failed setting catalog entry to cache")
			return value, nil
		}
		logger.Trace().Msg("set catalog entry to cache")
		return value, nil
	})
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
