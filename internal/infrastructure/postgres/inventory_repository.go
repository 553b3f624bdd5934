package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

const inventoryColumns = `id, product_id, warehouse_id, quantity, min_stock_level, last_restocked, version, created_at, updated_at`

// InventoryRepo implementación de InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

func scanInventory(row pgx.Row) (*entity.InventoryRecord, error) {
	var rec entity.InventoryRecord
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.WarehouseID, &rec.Quantity, &rec.MinStockLevel,
		&rec.LastRestocked, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Get obtiene el registro de un producto en una bodega.
func (r *InventoryRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE product_id = $1 AND warehouse_id = $2`
	rec, err := scanInventory(r.q.QueryRow(ctx, query, productID, warehouseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get inventory: %w", classify(err))
	}
	return rec, nil
}

// Create inserta el registro con version = 1.
func (r *InventoryRepo) Create(ctx context.Context, rec *entity.InventoryRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.Version = 1
	query := `
		INSERT INTO inventory (` + inventoryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		rec.ID, rec.ProductID, rec.WarehouseID, rec.Quantity, rec.MinStockLevel,
		rec.LastRestocked, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err):
			return domain.ErrDuplicate
		case isForeignKeyViolation(err):
			return domain.ErrReferenceNotFound
		}
		return fmt.Errorf("insert inventory: %w", classify(err))
	}
	return nil
}

// ApplyDelta actualización optimista: solo afecta la fila si la versión coincide y la cantidad
// resultante no es negativa. Con cero filas se relee el registro para clasificar el motivo.
func (r *InventoryRepo) ApplyDelta(ctx context.Context, d entity.StockDelta) (*entity.InventoryRecord, error) {
	query := `
		UPDATE inventory
		SET quantity = quantity + $3::int,
		    version = version + 1,
		    updated_at = $5,
		    last_restocked = CASE WHEN $3::int > 0 THEN $5 ELSE last_restocked END
		WHERE product_id = $1 AND warehouse_id = $2
		  AND version = $4
		  AND quantity + $3::int >= 0
		RETURNING ` + inventoryColumns
	rec, err := scanInventory(r.q.QueryRow(ctx, query, d.ProductID, d.WarehouseID, d.Delta, d.ExpectedVersion, d.At))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("apply inventory delta: %w", classify(err))
	}

	current, err := r.Get(ctx, d.ProductID, d.WarehouseID)
	if err != nil {
		return nil, err
	}
	if current.Version != d.ExpectedVersion {
		return nil, domain.ErrConcurrencyConflict
	}
	return nil, domain.ErrInsufficientStock
}

func (r *InventoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory ORDER BY product_id, warehouse_id LIMIT $1 OFFSET $2`
	return r.list(ctx, "list inventory", query, limit, offset)
}

func (r *InventoryRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE warehouse_id = $1 ORDER BY product_id`
	return r.list(ctx, "list inventory by warehouse", query, warehouseID)
}

func (r *InventoryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory WHERE product_id = $1 ORDER BY warehouse_id`
	return r.list(ctx, "list inventory by product", query, productID)
}

// ListLowStock usa el índice parcial sobre quantity < min_stock_level.
func (r *InventoryRepo) ListLowStock(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	query := `
		SELECT ` + inventoryColumns + ` FROM inventory
		WHERE quantity < min_stock_level AND ($1 = '' OR warehouse_id::text = $1)
		ORDER BY warehouse_id, product_id`
	return r.list(ctx, "list low stock", query, warehouseID)
}

func (r *InventoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count inventory: %w", err)
	}
	return n, nil
}

func (r *InventoryRepo) list(ctx context.Context, op, query string, args ...any) ([]*entity.InventoryRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, classify(err))
	}
	defer rows.Close()

	out := []*entity.InventoryRecord{}
	for rows.Next() {
		rec, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("%s scan: %w", op, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
