package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository   = (*ProductRepo)(nil)
	_ repository.WarehouseRepository = (*WarehouseRepo)(nil)
	_ repository.UserRepository      = (*UserRepo)(nil)
)

// ProductRepo catálogo en memoria; también resuelve precios para el reporte de ventas.
type ProductRepo struct {
	db access
}

func NewProductRepo(store *Store) *ProductRepo {
	return &ProductRepo{db: store}
}

func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	return r.db.update(func(st *state) error {
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		if _, ok := st.products[p.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[p.ID] = *p
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	var (
		p  entity.Product
		ok bool
	)
	r.db.view(func(st *state) { p, ok = st.products[id] })
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	return r.db.update(func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	var all []*entity.Product
	r.db.view(func(st *state) {
		for _, p := range st.products {
			p := p
			all = append(all, &p)
		}
	})
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return window(all, limit, offset), nil
}

func (r *ProductRepo) Count(ctx context.Context) (int, error) {
	var n int
	r.db.view(func(st *state) { n = len(st.products) })
	return n, nil
}

func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrNotFound
		}
		for k := range st.inventory {
			if k.productID == id {
				return domain.ErrConflict
			}
		}
		for _, l := range st.logs {
			if l.log.ProductID == id {
				return domain.ErrConflict
			}
		}
		delete(st.products, id)
		return nil
	})
}

// PricesByIDs precio vigente de los productos existentes; los IDs desconocidos se omiten.
func (r *ProductRepo) PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(ids))
	r.db.view(func(st *state) {
		for _, id := range ids {
			if p, ok := st.products[id]; ok {
				out[id] = p.Price
			}
		}
	})
	return out, nil
}

// WarehouseRepo bodegas en memoria.
type WarehouseRepo struct {
	db access
}

func NewWarehouseRepo(store *Store) *WarehouseRepo {
	return &WarehouseRepo{db: store}
}

func (r *WarehouseRepo) Create(ctx context.Context, w *entity.Warehouse) error {
	return r.db.update(func(st *state) error {
		if w.ID == "" {
			w.ID = uuid.New().String()
		}
		if w.CreatedAt.IsZero() {
			w.CreatedAt = time.Now().UTC()
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

// GetByID devuelve (nil, nil) si no existe.
func (r *WarehouseRepo) GetByID(ctx context.Context, id string) (*entity.Warehouse, error) {
	var (
		w  entity.Warehouse
		ok bool
	)
	r.db.view(func(st *state) { w, ok = st.warehouses[id] })
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (r *WarehouseRepo) Update(ctx context.Context, w *entity.Warehouse) error {
	return r.db.update(func(st *state) error {
		if _, ok := st.warehouses[w.ID]; !ok {
			return domain.ErrNotFound
		}
		st.warehouses[w.ID] = *w
		return nil
	})
}

func (r *WarehouseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Warehouse, error) {
	return window(r.sorted(), limit, offset), nil
}

func (r *WarehouseRepo) First(ctx context.Context) (*entity.Warehouse, error) {
	all := r.sorted()
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

func (r *WarehouseRepo) Delete(ctx context.Context, id string) error {
	return r.db.update(func(st *state) error {
		if _, ok := st.warehouses[id]; !ok {
			return domain.ErrNotFound
		}
		for k := range st.inventory {
			if k.warehouseID == id {
				return domain.ErrConflict
			}
		}
		for _, l := range st.logs {
			if l.log.WarehouseID == id {
				return domain.ErrConflict
			}
		}
		delete(st.warehouses, id)
		return nil
	})
}

// sorted bodegas por fecha de creación (la más antigua primero).
func (r *WarehouseRepo) sorted() []*entity.Warehouse {
	var all []*entity.Warehouse
	r.db.view(func(st *state) {
		for _, w := range st.warehouses {
			w := w
			all = append(all, &w)
		}
	})
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.Before(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	return all
}

// UserRepo usuarios en memoria.
type UserRepo struct {
	db access
}

func NewUserRepo(store *Store) *UserRepo {
	return &UserRepo{db: store}
}

func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	return r.db.update(func(st *state) error {
		for _, existing := range st.users {
			if existing.Username == u.Username {
				return domain.ErrUsernameTaken
			}
		}
		if u.ID == "" {
			u.ID = uuid.New().String()
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var (
		u  entity.User
		ok bool
	)
	r.db.view(func(st *state) { u, ok = st.users[id] })
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	var found *entity.User
	r.db.view(func(st *state) {
		for _, u := range st.users {
			if u.Username == username {
				u := u
				found = &u
				return
			}
		}
	})
	if found == nil {
		return nil, domain.ErrUserNotFound
	}
	return found, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.update(func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return domain.ErrUserNotFound
		}
		u.LastLogin = at
		st.users[id] = u
		return nil
	})
}

func window[T any](all []T, limit, offset int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}
