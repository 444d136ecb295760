package validator

import (
	"errors"
	"reflect"
	"strings"

	"go-flowershop-admin/pkg/apperr"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	FailedField string
	Tag         string
	Value       string
}

var validate = validator.New()

func init() {
	// report fields by their JSON name so errors match the request payload
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// decimals validate as float64, so money fields can use gte/lte
	validate.RegisterCustomTypeFunc(func(v reflect.Value) interface{} {
		switch d := v.Interface().(type) {
		case decimal.Decimal:
			f, _ := d.Float64()
			return f
		case decimal.NullDecimal:
			if !d.Valid {
				return nil
			}
			f, _ := d.Decimal.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
}

func ValidateStruct(data interface{}) []*ErrorResponse {
	var out []*ErrorResponse
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []*ErrorResponse{{FailedField: "", Tag: "invalid", Value: err.Error()}}
	}
	for _, fe := range verrs {
		out = append(out, &ErrorResponse{
			FailedField: fieldPath(fe.Namespace()),
			Tag:         fe.Tag(),
			Value:       fe.Param(),
		})
	}
	return out
}

// Check validates data and turns the first failure into a coded
// validation error naming the JSON field.
func Check(data interface{}) error {
	errs := ValidateStruct(data)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	switch first.Tag {
	case "required":
		return apperr.MissingField(first.FailedField)
	case "email":
		return apperr.InvalidField(first.FailedField, "must be a valid email address")
	case "oneof":
		return apperr.InvalidField(first.FailedField, "must be one of: "+strings.ReplaceAll(first.Value, " ", ", "))
	case "min":
		return apperr.InvalidField(first.FailedField, "must have at least "+first.Value+" entry")
	case "gte":
		return apperr.InvalidField(first.FailedField, "must be greater than or equal to "+first.Value)
	default:
		return apperr.InvalidField(first.FailedField, "failed on '"+first.Tag+"'")
	}
}

// fieldPath drops the root struct name: "createOrderRequest.items[0].quantity"
// becomes "items[0].quantity".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}
