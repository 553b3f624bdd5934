package entity

import (
	"fmt"
	"time"
)

// ChangeType motivo de un asiento del ledger de stock.
type ChangeType string

// Tipos de cambio de stock.
const (
	ChangeTypeInitialStock ChangeType = "InitialStock"
	ChangeTypeRestock      ChangeType = "Restock"
	ChangeTypeSale         ChangeType = "Sale"
	ChangeTypeTransferIn   ChangeType = "TransferIn"
	ChangeTypeTransferOut  ChangeType = "TransferOut"
)

// Valid indica si el tipo pertenece a la enumeración.
func (c ChangeType) Valid() bool {
	switch c {
	case ChangeTypeInitialStock, ChangeTypeRestock, ChangeTypeSale, ChangeTypeTransferIn, ChangeTypeTransferOut:
		return true
	}
	return false
}

// ParseChangeType convierte el texto recibido (p. ej. query string) al enum.
func ParseChangeType(s string) (ChangeType, error) {
	c := ChangeType(s)
	if !c.Valid() {
		return "", fmt.Errorf("tipo de cambio desconocido: %q", s)
	}
	return c, nil
}

// StockLog asiento inmutable del ledger: un cambio de cantidad en (producto, bodega).
// QuantityAfter = QuantityBefore + QuantityChange.
type StockLog struct {
	ID             string
	ProductID      string
	WarehouseID    string
	QuantityChange int
	QuantityBefore int
	QuantityAfter  int
	ChangeType     ChangeType
	UserID         *string
	TransferID     *string // agrupa los dos asientos de un traslado
	Timestamp      time.Time

	// Campos de join (solo lectura, no siempre poblados).
	Username    string
	ProductName string
}
