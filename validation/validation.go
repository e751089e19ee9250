// Package validation collects form violations as a field → code map, either
// from the helpers below or from `validate` struct tags.
package validation

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Error makes Violations usable as an error value.
func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for field, code := range v {
		parts = append(parts, field+": "+code)
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

func PositiveDecimal(field string, val decimal.Decimal, v Violations) {
	if !val.IsPositive() {
		v[field] = "must_be_positive"
	}
}

// MaxPlaces flags a decimal with more than places digits after the point,
// unless the field already has a violation.
func MaxPlaces(field string, val decimal.Decimal, places int32, v Violations) {
	if _, seen := v[field]; seen {
		return
	}
	if !val.Equal(val.Truncate(places)) {
		v[field] = "too_precise"
	}
}

func RangeInt(field string, val, minVal, maxVal int, v Violations) {
	if val < minVal || val > maxVal {
		v[field] = "out_of_range"
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validator returns the shared validator instance. Field names in reports
// come from the `form` tag, then `json`, then the Go field name.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"form", "json"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// Struct validates s against its `validate` tags and returns the violations,
// keyed by field name. Any non-validation error is reported under "_".
func Struct(s any) Violations {
	v := Violations{}
	err := Validator().Struct(s)
	if err == nil {
		return v
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		v["_"] = err.Error()
		return v
	}
	for _, fe := range verrs {
		v[fe.Field()] = codeFor(fe.Tag())
	}
	return v
}

func codeFor(tag string) string {
	switch tag {
	case "required":
		return "required"
	case "gt", "gte", "min":
		return "too_small"
	case "lt", "lte", "max":
		return "too_large"
	case "email":
		return "invalid_email"
	default:
		return "invalid"
	}
}
