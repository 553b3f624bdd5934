package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación en memoria de repository.InventoryRepository.
type InventoryRepo struct {
	db access
}

// NewInventoryRepo repositorio en modo autocommit sobre el almacén.
func NewInventoryRepo(store *Store) *InventoryRepo {
	return &InventoryRepo{db: store}
}

func (r *InventoryRepo) Get(ctx context.Context, productID, warehouseID string) (*entity.InventoryRecord, error) {
	var (
		rec entity.InventoryRecord
		ok  bool
	)
	r.db.view(func(st *state) {
		rec, ok = st.inventory[pairKey{productID, warehouseID}]
	})
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &rec, nil
}

func (r *InventoryRepo) Create(ctx context.Context, record *entity.InventoryRecord) error {
	return r.db.update(func(st *state) error {
		if _, ok := st.products[record.ProductID]; !ok {
			return domain.ErrReferenceNotFound
		}
		if _, ok := st.warehouses[record.WarehouseID]; !ok {
			return domain.ErrReferenceNotFound
		}
		key := pairKey{record.ProductID, record.WarehouseID}
		if _, ok := st.inventory[key]; ok {
			return domain.ErrDuplicate
		}
		if record.ID == "" {
			record.ID = uuid.New().String()
		}
		record.Version = 1
		st.inventory[key] = *record
		return nil
	})
}

func (r *InventoryRepo) ApplyDelta(ctx context.Context, d entity.StockDelta) (*entity.InventoryRecord, error) {
	var out entity.InventoryRecord
	err := r.db.update(func(st *state) error {
		key := pairKey{d.ProductID, d.WarehouseID}
		rec, ok := st.inventory[key]
		if !ok {
			return domain.ErrNotFound
		}
		if rec.Version != d.ExpectedVersion {
			return domain.ErrConcurrencyConflict
		}
		next, err := inventory.NextQuantity(rec.Quantity, d.Delta)
		if err != nil {
			return err
		}
		rec.Quantity = next
		rec.Version++
		rec.UpdatedAt = d.At
		if d.Delta > 0 {
			rec.LastRestocked = d.At
		}
		st.inventory[key] = rec
		out = rec
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *InventoryRepo) List(ctx context.Context, limit, offset int) ([]*entity.InventoryRecord, error) {
	all := r.filter(func(entity.InventoryRecord) bool { return true })
	return window(all, limit, offset), nil
}

func (r *InventoryRepo) ListByWarehouse(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	return r.filter(func(rec entity.InventoryRecord) bool { return rec.WarehouseID == warehouseID }), nil
}

func (r *InventoryRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.InventoryRecord, error) {
	return r.filter(func(rec entity.InventoryRecord) bool { return rec.ProductID == productID }), nil
}

func (r *InventoryRepo) ListLowStock(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	return r.filter(func(rec entity.InventoryRecord) bool {
		return rec.IsLowStock() && (warehouseID == "" || rec.WarehouseID == warehouseID)
	}), nil
}

func (r *InventoryRepo) Count(ctx context.Context) (int, error) {
	var n int
	r.db.view(func(st *state) { n = len(st.inventory) })
	return n, nil
}

// filter devuelve copias ordenadas por (producto, bodega) para resultados deterministas.
func (r *InventoryRepo) filter(keep func(entity.InventoryRecord) bool) []*entity.InventoryRecord {
	out := []*entity.InventoryRecord{}
	r.db.view(func(st *state) {
		for _, rec := range st.inventory {
			if keep(rec) {
				rec := rec
				out = append(out, &rec)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return out[i].WarehouseID < out[j].WarehouseID
	})
	return out
}
