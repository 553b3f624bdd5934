package repository

import (
	"context"

	"github.com/jhoicas/stockledger-api/internal/domain/entity"
)

// WarehouseRepository define el puerto de persistencia para Warehouse (DIP).
type WarehouseRepository interface {
	Create(ctx context.Context, warehouse *entity.Warehouse) error
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
	Update(ctx context.Context, warehouse *entity.Warehouse) error
	List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error)
	// First devuelve la bodega más antigua (bodega base) o nil si no hay ninguna.
	First(ctx context.Context) (*entity.Warehouse, error)
	// Delete devuelve domain.ErrConflict si la bodega tiene registros de inventario.
	Delete(ctx context.Context, id string) error
}
