package entity

import "time"

// DefaultMinStockLevel umbral de stock bajo cuando no se indica uno.
const DefaultMinStockLevel = 10

// InventoryRecord es la foto actual de un producto en una bodega.
// Único por (ProductID, WarehouseID); solo lo muta el motor de movimientos.
type InventoryRecord struct {
	ID            string
	ProductID     string
	WarehouseID   string
	Quantity      int
	MinStockLevel int
	LastRestocked time.Time
	Version       int64 // versión de fila para concurrencia optimista
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsLowStock se recalcula en cada lectura; nunca se persiste.
func (r *InventoryRecord) IsLowStock() bool {
	return r.Quantity < r.MinStockLevel
}

// StockDelta describe una variación de cantidad sobre un registro con la versión leída.
type StockDelta struct {
	ProductID       string
	WarehouseID     string
	Delta           int
	ExpectedVersion int64
	At              time.Time
}
