package metric

import (
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/pricing"
)

func TestRecordOperation(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		result string
	}{
		{name: "success", result: ResultSuccess},
		{name: "price hidden", err: fmt.Errorf("failed adding with error=%w", cartErrors.ErrPriceHidden), result: cartErrors.CodePriceHidden},
		{name: "not found", err: cartErrors.ErrProductNotFound, result: cartErrors.CodeNotFound},
		{name: "store failure", err: cartErrors.ErrStoreFailure, result: cartErrors.CodeStoreFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := Operations.WithLabelValues("test_"+tt.name, domain.ChannelB2B.String(), tt.result)
			before := testutil.ToFloat64(counter)
			RecordOperation("test_"+tt.name, domain.ChannelB2B, tt.err)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestRecordFreeShipping(t *testing.T) {
	tests := []struct {
		name         string
		freeShipping *pricing.FreeShipping
		result       string
	}{
		{name: "no rule", result: ResultAbsent},
		{name: "eligible", freeShipping: &pricing.FreeShipping{Eligible: true}, result: ResultEligible},
		{name: "ineligible", freeShipping: &pricing.FreeShipping{}, result: ResultIneligible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := FreeShippingEvaluations.WithLabelValues(tt.result)
			before := testutil.ToFloat64(counter)
			RecordFreeShipping(tt.freeShipping)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}
