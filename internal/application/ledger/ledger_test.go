package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stockledger-api/internal/application/ledger"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ─── Helpers ────────────────────────────────────────────────────────────────

var day = time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store    *memory.Store
	logs     *memory.StockLogRepo
	products *memory.ProductRepo
	svc      *ledger.Service
}

func newFixture() *fixture {
	store := memory.NewStore()
	f := &fixture{
		store:    store,
		logs:     memory.NewStockLogRepo(store),
		products: memory.NewProductRepo(store),
	}
	f.svc = ledger.NewService(f.logs, f.products)
	return f
}

func (f *fixture) product(t *testing.T, id, price string) {
	t.Helper()
	require.NoError(t, f.products.Create(context.Background(), &entity.Product{
		ID: id, Name: "prod-" + id, Price: decimal.RequireFromString(price),
	}))
}

func (f *fixture) append(t *testing.T, productID string, delta, before int, ct entity.ChangeType, at time.Time) *entity.StockLog {
	t.Helper()
	log, err := ledger.Append(context.Background(), f.logs, ledger.AppendInput{
		ProductID: productID, WarehouseID: "w1", Delta: delta, Before: before, ChangeType: ct, At: at,
	})
	require.NoError(t, err)
	return log
}

// ─── Append ─────────────────────────────────────────────────────────────────

func TestAppend_CalculaCantidadPosterior(t *testing.T) {
	f := newFixture()
	log := f.append(t, "p1", -30, 100, entity.ChangeTypeSale, day.Add(time.Hour))

	assert.NotEmpty(t, log.ID)
	assert.Equal(t, 100, log.QuantityBefore)
	assert.Equal(t, 70, log.QuantityAfter)
	assert.Equal(t, log.QuantityBefore+log.QuantityChange, log.QuantityAfter)
	assert.Equal(t, time.UTC, log.Timestamp.Location())
}

func TestAppend_RechazaEntradaInvalida(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	cases := map[string]ledger.AppendInput{
		"sin producto":       {WarehouseID: "w1", Delta: 1, ChangeType: entity.ChangeTypeRestock},
		"sin bodega":         {ProductID: "p1", Delta: 1, ChangeType: entity.ChangeTypeRestock},
		"tipo desconocido":   {ProductID: "p1", WarehouseID: "w1", Delta: 1, ChangeType: "Gift"},
		"resultado negativo": {ProductID: "p1", WarehouseID: "w1", Delta: -5, Before: 3, ChangeType: entity.ChangeTypeSale},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ledger.Append(ctx, f.logs, in)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	all, err := f.svc.Query(ctx, repository.StockLogFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAppend_PropagaActorYTraslado(t *testing.T) {
	f := newFixture()
	user, transfer := "u-1", "t-1"
	log, err := ledger.Append(context.Background(), f.logs, ledger.AppendInput{
		ProductID: "p1", WarehouseID: "w1", Delta: 5, Before: 0,
		ChangeType: entity.ChangeTypeTransferIn, UserID: &user, TransferID: &transfer, At: day,
	})
	require.NoError(t, err)
	require.NotNil(t, log.UserID)
	assert.Equal(t, "u-1", *log.UserID)
	require.NotNil(t, log.TransferID)
	assert.Equal(t, "t-1", *log.TransferID)
}
