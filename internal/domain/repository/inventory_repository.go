package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// InventoryRepository puerto del almacén de inventario, clave (producto, bodega).
// Usable con pool o dentro de una transacción.
type InventoryRepository interface {
	// Get devuelve domain.ErrNotFound si no existe registro para el par.
	Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error)
	// Create falla con domain.ErrDuplicate si el par ya existe y con
	// domain.ErrReferenceNotFound si el producto o la bodega no existen.
	Create(ctx context.Context, record *entity.InventoryRecord) error
	// ApplyDelta suma delta a la cantidad si la versión coincide.
	// Errores: domain.ErrNotFound, domain.ErrInsufficientStock, domain.ErrConcurrencyConflict.
	ApplyDelta(ctx context.Context, d entity.StockDelta) (*entity.InventoryRecord, error)
	List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error)
	ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error)
	// ListLowStock filtra por quantity < min_stock_level; warehouseID vacío = todas las bodegas.
	ListLowStock(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error)
	// Count número total de registros (usado por el seed para saber si ya hay inventario).
	Count(ctx context.Context) (int, error)
}
