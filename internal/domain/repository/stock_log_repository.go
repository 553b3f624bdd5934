package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// StockLogFilter filtros opcionales sobre el ledger. From y To son inclusivos.
type StockLogFilter struct {
	ProductID   string
	WarehouseID string
	From        *time.Time
	To          *time.Time
	ChangeType  *entity.ChangeType
}

// StockLogWriter solo inserta; es lo único que el motor necesita dentro de la transacción.
type StockLogWriter interface {
	Append(ctx context.Context, log *entity.StockLog) error
}

// StockLogRepository puerto del ledger de stock (append-only).
type StockLogRepository interface {
	StockLogWriter
	// Query devuelve los asientos que cumplen el filtro, sin orden garantizado.
	Query(ctx context.Context, filter StockLogFilter) ([]*entity.StockLog, error)
	// Page devuelve una página ordenada por timestamp descendente y el total del filtro.
	Page(ctx context.Context, filter StockLogFilter, limit, offset int) ([]*entity.StockLog, int, error)
}
