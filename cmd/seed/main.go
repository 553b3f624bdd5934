// seed deja la base lista para operar: usuario admin, bodega base, catálogo inicial
// (desde SEED_PRODUCTS_FILE) e inventario inicial de cada producto en la bodega base.
//
// Uso: go run ./cmd/seed
// Requiere ADMIN_PASSWORD cuando el usuario admin aún no existe.
package main

import (
	"context"
	"os"
	"time"

	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/seed"
	"github.com/jhoicas/stockledger-api/internal/application/usecase"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockledger-api/pkg/config"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración incompleta")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	warehouseRepo := postgres.NewWarehouseRepository(pool)
	inventoryRepo := postgres.NewInventoryRepository(pool)
	engine := inventory.NewStockMovementUseCase(postgres.NewTxRunner(pool), inventoryRepo, warehouseRepo, log)

	seeder := seed.NewSeeder(
		postgres.NewUserRepository(pool),
		postgres.NewProductRepository(pool),
		inventoryRepo,
		usecase.NewWarehouseUseCase(warehouseRepo),
		engine,
		log,
	)

	loadProducts := func() ([]dto.SeedProduct, error) {
		f, err := os.Open(cfg.Seed.ProductsFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return seed.DecodeProducts(f)
	}

	if err := seeder.Run(ctx, cfg.Seed.AdminPassword, loadProducts); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	log.Info().Msg("seed completado")
}
