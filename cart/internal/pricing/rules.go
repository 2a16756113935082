package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/otel"
	"github.com/Alturino/spices/internal/constants"
	inOtel "github.com/Alturino/spices/internal/otel"
	"github.com/Alturino/spices/internal/repository"
)

// RepositoryRuleSource reads free-shipping rules from postgres.
type RepositoryRuleSource struct {
	queries *repository.Queries
}

func NewRepositoryRuleSource(queries *repository.Queries) RepositoryRuleSource {
	return RepositoryRuleSource{queries: queries}
}

func (s RepositoryRuleSource) EffectiveFreeShippingRules(
	c context.Context,
	ch domain.Channel,
	now time.Time,
) ([]domain.FreeShippingRule, error) {
	c, span := otel.Tracer.Start(c, "RepositoryRuleSource EffectiveFreeShippingRules")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(constants.KEY_TAG, "RepositoryRuleSource EffectiveFreeShippingRules").
		Str(constants.KEY_CHANNEL, ch.String()).
		Logger()

	logger.Trace().Msg("finding effective free shipping rules")
	rows, err := s.queries.FindEffectiveFreeShippingRules(
		c,
		repository.FindEffectiveFreeShippingRulesParams{AppliesTo: ch.String(), Now: now},
	)
	if err != nil {
		err = fmt.Errorf("failed finding effective free shipping rules with error=%w: %w", cartErrors.ErrStoreFailure, err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Trace().Msg("found effective free shipping rules")

	rules := make([]domain.FreeShippingRule, 0, len(rows))
	for _, row := range rows {
		rule := domain.FreeShippingRule{
			ID:        row.ID,
			Threshold: repository.DecimalFromNumeric(row.Threshold),
			IsActive:  row.IsActive,
			AppliesTo: domain.RuleScope(row.AppliesTo),
			UpdatedAt: row.UpdatedAt.Time,
		}
		if row.ExpiresAt.Valid {
			expiresAt := row.ExpiresAt.Time
			rule.ExpiresAt = &expiresAt
		}
		rules = append(rules, rule)
	}
	return rules, nil
}
