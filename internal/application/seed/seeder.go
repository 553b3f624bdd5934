// Package seed deja la base con los datos mínimos para operar: usuario admin,
// bodega base, catálogo inicial e inventario inicial. Cada paso es idempotente.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stockledger-api/internal/application/auth"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/usecase"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
	"github.com/shopspring/decimal"
)

// Valores del inventario inicial por producto.
const (
	AdminUsername   = "admin"
	InitialQuantity = 100
	InitialMinStock = 10
	productPageSize = 100
)

// ProductLoader entrega el catálogo inicial; solo se invoca si no hay productos.
type ProductLoader func() ([]dto.SeedProduct, error)

// Seeder ejecuta los pasos de siembra en orden.
type Seeder struct {
	users      repository.UserRepository
	products   repository.ProductRepository
	inventory  repository.InventoryRepository
	warehouses *usecase.WarehouseUseCase
	engine     *inventory.StockMovementUseCase
	log        *logger.Logger
	now        func() time.Time
}

// NewSeeder construye el seeder.
func NewSeeder(
	users repository.UserRepository,
	products repository.ProductRepository,
	inv repository.InventoryRepository,
	warehouses *usecase.WarehouseUseCase,
	engine *inventory.StockMovementUseCase,
	log *logger.Logger,
) *Seeder {
	return &Seeder{
		users:      users,
		products:   products,
		inventory:  inv,
		warehouses: warehouses,
		engine:     engine,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run siembra admin, bodega base, productos e inventario inicial.
// adminPassword vacío con el admin inexistente devuelve domain.ErrConfiguration.
func (s *Seeder) Run(ctx context.Context, adminPassword string, load ProductLoader) error {
	if err := s.ensureAdmin(ctx, adminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	base, created, err := s.warehouses.EnsureBase(ctx)
	if err != nil {
		return fmt.Errorf("seed bodega base: %w", err)
	}
	if created {
		s.log.Info().Str("warehouse_id", base.ID).Msg("bodega base creada")
	}
	if err := s.ensureProducts(ctx, load); err != nil {
		return fmt.Errorf("seed productos: %w", err)
	}
	if err := s.ensureInventory(ctx, base.ID); err != nil {
		return fmt.Errorf("seed inventario: %w", err)
	}
	return nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, password string) error {
	_, err := s.users.GetByUsername(ctx, AdminUsername)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: ADMIN_PASSWORD", domain.ErrConfiguration)
	}
	admin, err := auth.NewUser(AdminUsername, password, entity.RoleAdmin, s.now())
	if err != nil {
		return err
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return err
	}
	s.log.Info().Str("user_id", admin.ID).Msg("usuario admin creado")
	return nil
}

func (s *Seeder) ensureProducts(ctx context.Context, load ProductLoader) error {
	n, err := s.products.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	seeds, err := load()
	if err != nil {
		return err
	}
	if len(seeds) == 0 {
		return fmt.Errorf("%w: el catálogo inicial está vacío", domain.ErrInvalidInput)
	}
	now := s.now()
	for _, sp := range seeds {
		name := strings.TrimSpace(sp.Name)
		if name == "" || !sp.Price.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: producto %q", domain.ErrInvalidInput, sp.Name)
		}
		p := &entity.Product{
			ID:          uuid.New().String(),
			Name:        name,
			Description: sp.Description,
			Price:       sp.Price,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.products.Create(ctx, p); err != nil {
			return err
		}
	}
	s.log.Info().Int("count", len(seeds)).Msg("productos base creados")
	return nil
}

// ensureInventory asigna InitialQuantity de cada producto a la bodega base a través del motor,
// de modo que cada alta deja su asiento InitialStock.
func (s *Seeder) ensureInventory(ctx context.Context, warehouseID string) error {
	n, err := s.inventory.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	minStock := InitialMinStock
	assigned := 0
	for offset := 0; ; offset += productPageSize {
		page, err := s.products.List(ctx, productPageSize, offset)
		if err != nil {
			return err
		}
		for _, p := range page {
			_, err := s.engine.InitialAssignment(ctx, inventory.InitialAssignmentInput{
				ProductID:     p.ID,
				WarehouseID:   warehouseID,
				Quantity:      InitialQuantity,
				MinStockLevel: &minStock,
			})
			if err != nil {
				return fmt.Errorf("producto %s: %w", p.ID, err)
			}
			assigned++
		}
		if len(page) < productPageSize {
			break
		}
	}
	s.log.Info().Int("count", assigned).Str("warehouse_id", warehouseID).Msg("inventario base creado")
	return nil
}

// DecodeProducts lee el catálogo inicial en formato JSON (arreglo de dto.SeedProduct).
func DecodeProducts(r io.Reader) ([]dto.SeedProduct, error) {
	var out []dto.SeedProduct
	if err := json.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decodificar productos: %w", err)
	}
	return out, nil
}
