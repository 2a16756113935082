package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrValidation = errors.New("invalid request")

	ErrChannelMismatch = errors.New("this product is not available in this context")
	ErrPriceHidden     = fmt.Errorf(
		"%w: the price of this product is available on request, please contact sales",
		ErrChannelMismatch,
	)

	ErrNotFound         = errors.New("not found")
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrVariantNotFound  = fmt.Errorf("product variant %w", ErrNotFound)
	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)

	ErrCartEmpty       = errors.New("cart is empty")
	ErrStoreFailure    = errors.New("cart is temporarily unavailable, please retry")
	ErrCheckoutFailure = errors.New("order could not be created, please retry")
)

// ValidationError describes malformed input on a single field.
type ValidationError struct {
	Field  string
	Reason string
}

func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Kind is how an error is presented to a caller: a status code, a stable machine code and
// a short message that never carries internal identifiers.
type Kind struct {
	StatusCode int
	Code       string
	Message    string
}

const (
	CodeValidation      = "validation_error"
	CodeChannelMismatch = "channel_mismatch"
	CodePriceHidden     = "price_hidden"
	CodeNotFound        = "not_found"
	CodeCartEmpty       = "cart_empty"
	CodeStoreFailure    = "store_failure"
	CodeCheckoutFailure = "checkout_failure"
	CodeInternal        = "internal_error"
)

var notFounds = []error{
	ErrProductNotFound,
	ErrVariantNotFound,
	ErrCartItemNotFound,
	ErrCartNotFound,
}

func Classify(err error) Kind {
	var validationErr *ValidationError
	switch {
	case err == nil:
		return Kind{StatusCode: http.StatusOK}
	case errors.As(err, &validationErr):
		return Kind{http.StatusBadRequest, CodeValidation, validationErr.Error()}
	case errors.Is(err, ErrValidation):
		return Kind{http.StatusBadRequest, CodeValidation, ErrValidation.Error()}
	case errors.Is(err, ErrPriceHidden):
		return Kind{http.StatusUnprocessableEntity, CodePriceHidden, ErrPriceHidden.Error()}
	case errors.Is(err, ErrChannelMismatch):
		return Kind{http.StatusUnprocessableEntity, CodeChannelMismatch, ErrChannelMismatch.Error()}
	case errors.Is(err, ErrNotFound):
		for _, target := range notFounds {
			if errors.Is(err, target) {
				return Kind{http.StatusNotFound, CodeNotFound, target.Error()}
			}
		}
		return Kind{http.StatusNotFound, CodeNotFound, ErrNotFound.Error()}
	case errors.Is(err, ErrCartEmpty):
		return Kind{http.StatusConflict, CodeCartEmpty, ErrCartEmpty.Error()}
	case errors.Is(err, ErrStoreFailure):
		return Kind{http.StatusServiceUnavailable, CodeStoreFailure, ErrStoreFailure.Error()}
	case errors.Is(err, ErrCheckoutFailure):
		return Kind{http.StatusBadGateway, CodeCheckoutFailure, ErrCheckoutFailure.Error()}
	default:
		return Kind{http.StatusInternalServerError, CodeInternal, "internal server error"}
	}
}
