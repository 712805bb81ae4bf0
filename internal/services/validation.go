package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const priceRangeMessage = "Price should be between $0 and $1000"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// Report fields under their JSON names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Let numeric tags such as gte/lte apply to decimal prices.
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	if err := v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	}); err != nil {
		panic(err)
	}
	return v
}

// check runs the struct validators over in and collects the failures into
// a ValidationError, which is empty when the input is valid.
func check(in interface{}) (*ValidationError, error) {
	verr := &ValidationError{}
	err := validate.Struct(in)
	if err == nil {
		return verr, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, fmt.Errorf("failed to validate input: %w", err)
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if fe.Tag() == "eqfield" {
			field = "non_field_errors"
		}
		verr.add(field, fieldMessage(fe))
	}
	return verr, nil
}

// validateInput is check for callers with no extra rules.
func validateInput(in interface{}) error {
	verr, err := check(in)
	if err != nil {
		return err
	}
	return verr.orNil()
}

func fieldMessage(fe validator.FieldError) string {
	tag := fe.Tag()
	switch fe.Field() {
	case "name":
		if tag == "required" || tag == "notblank" {
			return "Name cannot be blank"
		}
	case "price":
		if tag == "gte" || tag == "lte" {
			return priceRangeMessage
		}
	case "stock_quantity":
		if tag == "gte" || tag == "lte" {
			return "Quantity should be between 0 to 100"
		}
	case "category":
		switch tag {
		case "required", "notblank":
			return "Select category"
		case "oneof":
			return fmt.Sprintf("%q is not a valid choice.", fe.Value())
		}
	case "rating":
		if tag == "gte" || tag == "lte" {
			return "Rating must be between 0 to 5"
		}
	case "product":
		if tag == "uuid" {
			return fmt.Sprintf("Invalid pk %q - object does not exist.", fe.Value())
		}
	}

	switch tag {
	case "required":
		return "This field is required."
	case "notblank":
		return "This field may not be blank."
	case "max":
		return fmt.Sprintf("Ensure this field has no more than %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "gt":
		return fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
	case "eqfield":
		return "Passwords must match."
	}
	return fmt.Sprintf("Failed on the '%s' rule.", tag)
}
