package request

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Alturino/spices/cart/internal/domain"
	cartErrors "github.com/Alturino/spices/cart/internal/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})
	if err := v.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		return domain.Channel(fl.Field().String()).Valid()
	}); err != nil {
		panic(fmt.Errorf("failed registering channel validation with error=%w", err))
	}
	if err := v.RegisterValidation("notnil", func(fl validator.FieldLevel) bool {
		id, ok := fl.Field().Interface().(uuid.UUID)
		return !ok || id != uuid.Nil
	}); err != nil {
		panic(fmt.Errorf("failed registering notnil validation with error=%w", err))
	}
	return v
}

// Validate checks req against its validate tags. The first violation is returned as a
// ValidationError naming the offending json field.
func Validate(c context.Context, req interface{}) error {
	err := validate.StructCtx(c, req)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("failed validating request with error=%w", err)
	}

	var violations validator.ValidationErrors
	if errors.As(err, &violations) && len(violations) > 0 {
		violation := violations[0]
		return cartErrors.NewValidationError(violation.Field(), reason(violation))
	}
	return cartErrors.NewValidationError("request", err.Error())
}

func reason(violation validator.FieldError) string {
	switch violation.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + violation.Param()
	case "channel":
		return "must be b2c or b2b"
	case "notnil":
		return "must not be the nil uuid"
	default:
		return "is invalid"
	}
}
