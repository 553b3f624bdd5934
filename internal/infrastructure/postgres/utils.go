package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stockledger-api/internal/domain"
)

// Códigos SQLSTATE que el servicio distingue.
const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	codeInvalidTextRepr      = "22P02"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	if code := pgCode(err); code != "" {
		return code == codeUniqueViolation
	}
	return strings.Contains(err.Error(), codeUniqueViolation)
}

func isForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// isRetryable serialización o deadlock: el motor lo trata como conflicto de concurrencia.
func isRetryable(err error) bool {
	code := pgCode(err)
	return code == codeSerializationFailure || code == codeDeadlockDetected
}

// classify traduce errores de PostgreSQL a errores de dominio; el resto se devuelve sin cambios.
func classify(err error) error {
	switch pgCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return domain.ErrConcurrencyConflict
	case codeCheckViolation:
		// quantity >= 0 es la única restricción CHECK que un movimiento válido puede romper
		return domain.ErrInsufficientStock
	case codeInvalidTextRepr:
		return domain.ErrInvalidInput
	}
	return err
}
