// Package ledger escribe y consulta el historial inmutable de cambios de stock.
// La escritura es una función sin estado sobre el repositorio atado a la transacción del llamador.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// AppendInput datos de un asiento. UserID y TransferID son opcionales.
type AppendInput struct {
	ProductID   string
	WarehouseID string
	Delta       int
	Before      int
	ChangeType  entity.ChangeType
	UserID      *string
	TransferID  *string
	At          time.Time
}

// Append construye el asiento (after = before + delta, timestamp UTC) y lo persiste con w.
// w debe ser el repositorio de la misma transacción que mutó el inventario.
func Append(ctx context.Context, w repository.StockLogWriter, in AppendInput) (*entity.StockLog, error) {
	if in.ProductID == "" || in.WarehouseID == "" || !in.ChangeType.Valid() {
		return nil, domain.ErrInvalidInput
	}
	if in.Before < 0 || in.Before+in.Delta < 0 {
		return nil, domain.ErrInvalidInput
	}
	at := in.At
	if at.IsZero() {
		at = time.Now()
	}
	entry := &entity.StockLog{
		ID:             uuid.New().String(),
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		QuantityChange: in.Delta,
		QuantityBefore: in.Before,
		QuantityAfter:  in.Before + in.Delta,
		ChangeType:     in.ChangeType,
		UserID:         in.UserID,
		TransferID:     in.TransferID,
		Timestamp:      at.UTC(),
	}
	if err := w.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append stock log: %w", err)
	}
	return entry, nil
}
