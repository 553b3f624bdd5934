package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	wrap := func(code string) error {
		return fmt.Errorf("update inventory: %w", &pgconn.PgError{Code: code})
	}

	assert.ErrorIs(t, classify(wrap("40001")), domain.ErrConcurrencyConflict)
	assert.ErrorIs(t, classify(wrap("40P01")), domain.ErrConcurrencyConflict)
	assert.ErrorIs(t, classify(wrap("23514")), domain.ErrInsufficientStock)
	assert.ErrorIs(t, classify(wrap("22P02")), domain.ErrInvalidInput)

	other := errors.New("conexión cerrada")
	assert.Equal(t, other, classify(other))
}

func TestPredicadosDeCodigo(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.True(t, isForeignKeyViolation(fmt.Errorf("x: %w", &pgconn.PgError{Code: "23503"})))
	assert.True(t, isRetryable(&pgconn.PgError{Code: "40P01"}))
	assert.False(t, isRetryable(errors.New("timeout")))
}
