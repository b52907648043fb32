// Package validation checks request structs against their `binding` tags and
// converts failures into VALIDATION errors with per-field details.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/stackit-qa/stackit/backend/internal/apperr"
)

// Validator wraps go-playground/validator with domain error conversion.
type Validator struct {
	v *validator.Validate
}

// New creates a validator that reads the same `binding` tags gin uses, so a
// request can be re-checked after its fields are normalised.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.SetTagName("binding")
	v.RegisterTagNameFunc(jsonName)
	return &Validator{v: v}
}

// Validate validates a struct and returns a domain error.
func (v *Validator) Validate(s any) error {
	if err := v.v.Struct(s); err != nil {
		return FromBinding(err)
	}
	return nil
}

// RegisterGin makes gin's binding validator report JSON field names.
func RegisterGin() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(jsonName)
	}
}

// FromBinding converts an error from gin's ShouldBind* or from Validate into
// a VALIDATION error. Errors that are already domain errors pass through.
func FromBinding(err error) error {
	if err == nil {
		return nil
	}

	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fieldErrors := make(map[string]string, len(validationErrs))
		for _, e := range validationErrs {
			fieldErrors[fieldPath(e)] = friendlyMessage(e)
		}
		return apperr.ValidationWithDetails("validation failed", fieldErrors)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperr.Validation("request body is required")
	case errors.As(err, &syntaxErr):
		return apperr.Validation("request body is not valid JSON")
	case errors.As(err, &typeErr):
		return apperr.ValidationWithDetails("validation failed", map[string]string{
			typeErr.Field: "must be a " + typeErr.Type.String(),
		})
	}

	return apperr.Validation("invalid request: " + err.Error())
}

// fieldPath strips the struct name from the namespace, keeping nested and
// indexed paths such as tags[0].
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func jsonName(fld reflect.StructField) string {
	name := fld.Tag.Get("json")
	if name == "" {
		return fld.Name
	}
	name, _, _ = strings.Cut(name, ",")
	if name == "-" {
		return ""
	}
	return name
}

func friendlyMessage(e validator.FieldError) string {
	isList := e.Kind() == reflect.Slice || e.Kind() == reflect.Array || e.Kind() == reflect.Map
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if isList {
			return fmt.Sprintf("must contain at least %s item(s)", e.Param())
		}
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		if isList {
			return fmt.Sprintf("must not contain more than %s item(s)", e.Param())
		}
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "is invalid"
	}
}
