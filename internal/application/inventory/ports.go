package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error (o el contexto se cancela antes del commit) todo se revierte.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		invRepo repository.InventoryRepository,
		logRepo repository.StockLogWriter,
	) error) error
}

// MovementRecorder recibe las métricas del motor. nil = sin métricas.
type MovementRecorder interface {
	ObserveMovement(operation, outcome string, elapsed time.Duration)
	IncConflictRetry(operation string)
}
