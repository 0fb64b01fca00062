package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// decimals are validated by their float value so numeric tags (gte, lte) apply to them
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		switch value := field.Interface().(type) {
		case decimal.Decimal:
			return value.InexactFloat64()
		case decimal.NullDecimal:
			if !value.Valid {
				return nil
			}
			return value.Decimal.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{}, decimal.NullDecimal{})
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks the validate struct tags of v.
func Validate(v any) error {
	return validate.Struct(v)
}

// DecodeAndValidate reads a JSON body into v and validates it. On failure it writes a 400 response and
// returns false.
func DecodeAndValidate(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		details := err.Error()
		if errors.Is(err, io.EOF) {
			details = "request body is empty"
		}
		WriteError(w, http.StatusBadRequest, "Invalid request body", details)
		return false
	}
	if err := Validate(v); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed", describeValidationError(err))
		return false
	}
	return true
}

func describeValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}
	messages := make([]string, 0, len(validationErrors))
	for _, fe := range validationErrors {
		if fe.Param() != "" {
			messages = append(messages, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			messages = append(messages, fmt.Sprintf("%s must satisfy %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(messages, "; ")
}
