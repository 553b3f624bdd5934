package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrUserNotFound        = errors.New("usuario no encontrado")
	ErrUsernameTaken       = errors.New("el nombre de usuario ya existe")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrDuplicate           = errors.New("recurso duplicado")
	ErrUnauthorized        = errors.New("no autorizado")
	ErrForbidden           = errors.New("acceso denegado")
	ErrConflict            = errors.New("conflicto con el estado actual")
	ErrInsufficientStock   = errors.New("stock insuficiente")
	ErrConcurrencyConflict = errors.New("el registro fue modificado por otra operación")
	ErrConfiguration       = errors.New("configuración requerida ausente")
)

// ErrReferenceNotFound producto o bodega referenciado inexistente. errors.Is(err, ErrNotFound) es true.
var ErrReferenceNotFound = fmt.Errorf("referencia inexistente: %w", ErrNotFound)
