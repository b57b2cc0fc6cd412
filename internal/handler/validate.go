package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/josh-kwaku/edificio/internal/format"
)

const maxJSONBody = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Amounts validate as numbers so gt/gte tags apply to them.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return v
}

// decodeJSON reads and validates a request body, writing the error response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return false
	}
	if fields := validationErrors(validate.Struct(dst)); len(fields) > 0 {
		RespondValidationError(w, fields)
		return false
	}
	return true
}

func validationErrors(err error) []FieldError {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "body", Message: "inválido"}}
	}
	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		out = append(out, FieldError{Field: e.Field(), Message: validationMessage(e)})
	}
	return out
}

func validationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es obligatorio"
	case "email":
		return "debe ser un email válido"
	case "url":
		return "debe ser una URL válida"
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "min":
		if e.Kind() == reflect.String {
			return "debe tener al menos " + e.Param() + " caracteres"
		}
		return "debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "debe tener como máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "gt":
		return "debe ser mayor a " + e.Param()
	case "gte":
		return "debe ser mayor o igual a " + e.Param()
	case "lte":
		return "debe ser menor o igual a " + e.Param()
	case "unique":
		return "no puede tener elementos repetidos"
	}
	return "valor inválido"
}

// cents converts an API amount to cents, rejecting sub-cent precision and overflow.
func cents(field string, d decimal.Decimal) (int64, *FieldError) {
	c, err := format.FromDecimal(d)
	if errors.Is(err, format.ErrOutOfRange) {
		return 0, &FieldError{Field: field, Message: "el monto es demasiado grande"}
	}
	if err != nil {
		return 0, &FieldError{Field: field, Message: "admite como máximo dos decimales"}
	}
	return c, nil
}

func optionalCents(field string, d *decimal.Decimal) (*int64, *FieldError) {
	if d == nil {
		return nil, nil
	}
	c, fe := cents(field, *d)
	if fe != nil {
		return nil, fe
	}
	return &c, nil
}
