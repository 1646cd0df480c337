package dto

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Usar el nombre JSON en los mensajes de error.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate aplica las etiquetas `validate` del struct.
func Validate(v interface{}) error {
	return engine().Struct(v)
}

// ValidEmail indica si s es una dirección de email sintácticamente válida (sin nombre visible).
func ValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	return engine().Var(s, "email") == nil
}

// ValidationMessage resume el primer error de validación en un texto legible.
func ValidationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "datos inválidos"
	}
	e := verrs[0]
	switch e.Tag() {
	case "required":
		return e.Field() + " es requerido"
	case "email":
		return e.Field() + " no es un email válido"
	case "oneof":
		return e.Field() + " debe ser uno de: " + e.Param()
	case "min", "gte":
		return e.Field() + " debe ser como mínimo " + e.Param()
	case "max", "lte":
		return e.Field() + " debe ser como máximo " + e.Param()
	default:
		return e.Field() + " inválido (" + e.Tag() + ")"
	}
}
