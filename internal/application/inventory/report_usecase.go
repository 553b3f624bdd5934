package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/stockledger-api/internal/application/ledger"
	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
)

// ReportUseCase consultas de solo lectura: stock bajo, ventas del día e historial paginado.
type ReportUseCase struct {
	invRepo       repository.InventoryRepository
	warehouseRepo repository.WarehouseRepository
	ledger        *ledger.Service
	now           func() time.Time
}

// NewReportUseCase construye el caso de uso de reportes.
func NewReportUseCase(
	invRepo repository.InventoryRepository,
	warehouseRepo repository.WarehouseRepository,
	ledgerSvc *ledger.Service,
) *ReportUseCase {
	return &ReportUseCase{
		invRepo:       invRepo,
		warehouseRepo: warehouseRepo,
		ledger:        ledgerSvc,
		now:           time.Now,
	}
}

// SetClock reemplaza time.Now (pruebas).
func (uc *ReportUseCase) SetClock(now func() time.Time) {
	uc.now = now
}

// GetLowStockItems registros con quantity < min_stock_level. warehouseID vacío = todas las bodegas.
// Es una foto al momento de la lectura; puede quedar desactualizada frente a movimientos concurrentes.
func (uc *ReportUseCase) GetLowStockItems(ctx context.Context, warehouseID string) ([]*entity.InventoryRecord, error) {
	if warehouseID != "" {
		wh, err := uc.warehouseRepo.GetByID(ctx, warehouseID)
		if err != nil {
			return nil, err
		}
		if wh == nil {
			return nil, domain.ErrNotFound
		}
	}
	items, err := uc.invRepo.ListLowStock(ctx, warehouseID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.InventoryRecord{}
	}
	return items, nil
}

// SalesToday valor de las ventas del día UTC en curso.
func (uc *ReportUseCase) SalesToday(ctx context.Context) (*ledger.SalesReport, error) {
	return uc.ledger.SalesValueForDay(ctx, uc.now().UTC())
}

// StockLogs página del ledger (más reciente primero).
func (uc *ReportUseCase) StockLogs(ctx context.Context, filter repository.StockLogFilter, page, pageSize int) (*ledger.PagedResult, error) {
	return uc.ledger.Page(ctx, filter, page, pageSize)
}
