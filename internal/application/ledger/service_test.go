package ledger_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stockledger-api/internal/application/ledger"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_ValidaParametros(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.svc.Page(ctx, repository.StockLogFilter{}, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.Page(ctx, repository.StockLogFilter{}, 1, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// (page-1)*pageSize desbordaría int
	assert.NotPanics(t, func() {
		_, err = f.svc.Page(ctx, repository.StockLogFilter{}, 3, 1<<62)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	res, err := f.svc.Page(ctx, repository.StockLogFilter{}, 2, 1<<62)
	require.NoError(t, err)
	assert.Empty(t, res.Items)

	from, to := day.Add(time.Hour), day
	_, err = f.svc.Page(ctx, repository.StockLogFilter{From: &from, To: &to}, 1, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPage_OrdenDescendenteYContiguo(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		f.append(t, "p1", 1, i, entity.ChangeTypeRestock, day.Add(time.Duration(i)*time.Minute))
	}

	var seen []*entity.StockLog
	for page := 1; page <= 3; page++ {
		res, err := f.svc.Page(ctx, repository.StockLogFilter{}, page, 3)
		require.NoError(t, err)
		assert.Equal(t, 7, res.TotalCount)
		assert.Equal(t, page, res.Page)
		assert.Equal(t, 3, res.PageSize)
		seen = append(seen, res.Items...)
	}

	require.Len(t, seen, 7)
	for i := 1; i < len(seen); i++ {
		assert.True(t, seen[i-1].Timestamp.After(seen[i].Timestamp), "orden descendente en posición %d", i)
	}

	res, err := f.svc.Page(ctx, repository.StockLogFilter{}, 4, 3)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 7, res.TotalCount)
}

func TestPage_Filtros(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.append(t, "p1", 10, 0, entity.ChangeTypeRestock, day.Add(time.Hour))
	f.append(t, "p1", -2, 10, entity.ChangeTypeSale, day.Add(2*time.Hour))
	f.append(t, "p2", -1, 5, entity.ChangeTypeSale, day.Add(3*time.Hour))

	sale := entity.ChangeTypeSale
	res, err := f.svc.Page(ctx, repository.StockLogFilter{ChangeType: &sale}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)

	res, err = f.svc.Page(ctx, repository.StockLogFilter{ProductID: "p1"}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)

	from, to := day.Add(2*time.Hour), day.Add(3*time.Hour)
	res, err = f.svc.Page(ctx, repository.StockLogFilter{From: &from, To: &to}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount, "los límites son inclusivos")
}

func TestSalesValueForDay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.product(t, "p1", "2.50")
	f.product(t, "p2", "10")

	f.append(t, "p1", -3, 100, entity.ChangeTypeSale, day.Add(9*time.Hour))
	f.append(t, "p1", -1, 97, entity.ChangeTypeSale, day.Add(23*time.Hour+59*time.Minute))
	f.append(t, "p2", -2, 10, entity.ChangeTypeSale, day.Add(12*time.Hour))
	f.append(t, "p3", -4, 10, entity.ChangeTypeSale, day.Add(12*time.Hour))
	// fuera del día o de otro tipo: no cuentan
	f.append(t, "p1", -50, 96, entity.ChangeTypeSale, day.Add(-time.Second))
	f.append(t, "p1", -50, 96, entity.ChangeTypeTransferOut, day.Add(time.Hour))
	f.append(t, "p2", 5, 8, entity.ChangeTypeRestock, day.Add(time.Hour))

	report, err := f.svc.SalesValueForDay(ctx, day.Add(15*time.Hour))
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("30").Equal(report.Total), "total = %s", report.Total)
	assert.Equal(t, 10, report.UnitsSold)
	assert.Equal(t, []string{"p3"}, report.MissingProductIDs)
	assert.Equal(t, day, report.Day)
}

func TestSalesValueForDay_SinVentas(t *testing.T) {
	f := newFixture()
	report, err := f.svc.SalesValueForDay(context.Background(), day)
	require.NoError(t, err)
	assert.True(t, report.Total.IsZero())
	assert.Zero(t, report.UnitsSold)
	assert.Empty(t, report.MissingProductIDs)
}

func TestDayBounds(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	start, end := ledger.DayBounds(time.Date(2025, 3, 13, 22, 0, 0, 0, loc))
	assert.Equal(t, day, start)
	assert.Equal(t, day.Add(24*time.Hour-time.Microsecond), end)
}
