package repository

import (
	"context"
	"time"
)

const findEffectiveFreeShippingRules = `-- name: FindEffectiveFreeShippingRules :many
select id, threshold, expires_at, is_active, applies_to, created_at, updated_at
from free_shipping_rules
where is_active
  and (expires_at is null or expires_at > $2)
  and applies_to in ($1, 'all')
order by updated_at desc
`

type FindEffectiveFreeShippingRulesParams struct {
	AppliesTo string    `json:"applies_to"`
	Now       time.Time `json:"now"`
}

func (q *Queries) FindEffectiveFreeShippingRules(
	ctx context.Context,
	arg FindEffectiveFreeShippingRulesParams,
) ([]FreeShippingRule, error) {
	rows, err := q.db.Query(ctx, findEffectiveFreeShippingRules, arg.AppliesTo, arg.Now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rules := []FreeShippingRule{}
	for rows.Next() {
		var i FreeShippingRule
		if err := rows.Scan(
			&i.ID,
			&i.Threshold,
			&i.ExpiresAt,
			&i.IsActive,
			&i.AppliesTo,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		rules = append(rules, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rules, nil
}
