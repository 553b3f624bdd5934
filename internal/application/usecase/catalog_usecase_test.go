package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/usecase"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductUseCase_CRUD(t *testing.T) {
	store := memory.NewStore()
	uc := usecase.NewProductUseCase(memory.NewProductRepo(store), nil)
	ctx := context.Background()

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Gratis", Price: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "el precio debe ser positivo")

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: " Tornillo ", Price: decimal.RequireFromString("0.35")})
	require.NoError(t, err)
	assert.Equal(t, "Tornillo", p.Name)

	price := decimal.RequireFromString("0.40")
	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: &price})
	require.NoError(t, err)
	assert.True(t, price.Equal(updated.Price))

	list, err := uc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, list.Items, 1)
	assert.Equal(t, 1, list.Page.Total)

	require.NoError(t, uc.Delete(ctx, p.ID))
	_, err = uc.GetByID(ctx, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_ConInventarioEsConflicto(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	products := usecase.NewProductUseCase(memory.NewProductRepo(store), nil)
	warehouses := usecase.NewWarehouseUseCase(memory.NewWarehouseRepo(store))

	p, err := products.Create(ctx, dto.CreateProductRequest{Name: "Tuerca", Price: decimal.NewFromInt(1)})
	require.NoError(t, err)
	w, err := warehouses.Create(ctx, dto.CreateWarehouseRequest{Name: "Central", Location: "Bogotá"})
	require.NoError(t, err)
	require.NoError(t, memory.NewInventoryRepo(store).Create(ctx, &entity.InventoryRecord{
		ProductID: p.ID, WarehouseID: w.ID, Quantity: 3, MinStockLevel: 1,
	}))

	assert.ErrorIs(t, products.Delete(ctx, p.ID), domain.ErrConflict)
	assert.ErrorIs(t, warehouses.Delete(ctx, w.ID), domain.ErrConflict)
	assert.ErrorIs(t, warehouses.Delete(ctx, "no-existe"), domain.ErrNotFound)
}

func TestEnsureBase(t *testing.T) {
	uc := usecase.NewWarehouseUseCase(memory.NewWarehouseRepo(memory.NewStore()))
	ctx := context.Background()

	base, created, err := uc.EnsureBase(ctx)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, usecase.BaseWarehouseName, base.Name)

	again, created, err := uc.EnsureBase(ctx)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, base.ID, again.ID)
}
