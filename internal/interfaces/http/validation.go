package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
)

var validate = newValidator()

// newValidator reporta los campos con su nombre JSON.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// parseAndValidate decodifica el body JSON y aplica las etiquetas validate del DTO.
// Si falla ya escribió la respuesta 400; el handler solo debe devolver el error retornado.
func parseAndValidate(c *fiber.Ctx, out interface{}) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, badBody(c)
	}
	if resp := validateStruct(out); resp != nil {
		return false, c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return true, nil
}

// validateStruct devuelve nil si el DTO es válido.
func validateStruct(v interface{}) *dto.ErrorResponse {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fieldName(fe)
		details[field] = fieldMessage(field, fe)
	}
	return &dto.ErrorResponse{Code: "VALIDATION", Message: "datos inválidos", Details: details}
}

func fieldName(fe validator.FieldError) string {
	if f := fe.Field(); f != "" {
		return f
	}
	return strings.ToLower(fe.StructField())
}

func fieldMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s es requerido", field)
	case "uuid":
		return fmt.Sprintf("%s debe ser un UUID", field)
	case "gt":
		return fmt.Sprintf("%s debe ser mayor que %s", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s debe ser al menos %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s debe ser como máximo %s", field, fe.Param())
	case "nefield":
		return fmt.Sprintf("%s debe ser distinto de %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s es inválido", field)
	}
}
