// Package validation builds the request validator shared by every handler.
//
// On top of the go-playground/validator built-ins it registers:
//
//	cpf: the field must be a CPF with matching check digits (see package cpf)
//
// Field names in validation errors are taken from the json tag, so clients
// see "cpf" rather than "CPF".
package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/compuse/compuse-api/internal/cpf"
)

// TagCPF is the struct tag that runs the CPF checksum.
const TagCPF = "cpf"

// New returns a validator with the custom tags registered.
//
// A *validator.Validate caches struct metadata and is safe for concurrent
// use, so build it once at startup and hand it to the handlers.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(jsonFieldName)

	// RegisterValidation only fails on an empty tag name or nil func.
	if err := v.RegisterValidation(TagCPF, validateCPF); err != nil {
		panic(err)
	}

	return v
}

func validateCPF(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return cpf.IsValid(field.String())
}

// jsonFieldName maps a struct field to its json key; "-" hides the field.
func jsonFieldName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}
