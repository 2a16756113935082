package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
	"github.com/Alturino/spices/cart/internal/pricing"
)

const (
	ResultSuccess    = "success"
	ResultAbsent     = "absent"
	ResultEligible   = "eligible"
	ResultIneligible = "ineligible"
)

var (
	Operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cart",
			Name:      "operations_total",
			Help:      "Cart operations by operation, channel and result code.",
		},
		[]string{"operation", "channel", "result"},
	)

	FreeShippingEvaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cart",
			Name:      "free_shipping_evaluations_total",
			Help:      "Free shipping evaluations of retail carts by outcome.",
		},
		[]string{"result"},
	)
)

// RecordOperation counts one cart operation. Failures are labelled with their error code.
func RecordOperation(operation string, ch domain.Channel, err error) {
	result := ResultSuccess
	if err != nil {
		result = cartErrors.Classify(err).Code
	}
	Operations.WithLabelValues(operation, ch.String(), result).Inc()
}

func RecordFreeShipping(freeShipping *pricing.FreeShipping) {
	switch {
	case freeShipping == nil:
		FreeShippingEvaluations.WithLabelValues(ResultAbsent).Inc()
	case freeShipping.Eligible:
		FreeShippingEvaluations.WithLabelValues(ResultEligible).Inc()
	default:
		FreeShippingEvaluations.WithLabelValues(ResultIneligible).Inc()
	}
}
