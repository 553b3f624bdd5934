package ledger

import (
	"context"
	"math"
	"time"

	"github.com/jhoicas/stockledger-api/internal/domain"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// PriceCatalog puerto del catálogo: precio unitario vigente por producto.
// Los IDs desconocidos simplemente no aparecen en el mapa.
type PriceCatalog interface {
	PricesByIDs(ctx context.Context, ids []string) (map[string]decimal.Decimal, error)
}

// PagedResult página del ledger ordenada por timestamp descendente.
type PagedResult struct {
	Items      []*entity.StockLog
	TotalCount int
	Page       int
	PageSize   int
}

// SalesReport valor de ventas de un día UTC.
type SalesReport struct {
	Day               time.Time
	Total             decimal.Decimal
	UnitsSold         int
	MissingProductIDs []string
}

// Service consultas de lectura sobre el ledger. No muta nada.
type Service struct {
	repo    repository.StockLogRepository
	catalog PriceCatalog
}

// NewService construye el servicio de consultas del ledger.
func NewService(repo repository.StockLogRepository, catalog PriceCatalog) *Service {
	return &Service{repo: repo, catalog: catalog}
}

// Query devuelve los asientos del filtro sin orden garantizado.
func (s *Service) Query(ctx context.Context, filter repository.StockLogFilter) ([]*entity.StockLog, error) {
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	return s.repo.Query(ctx, filter)
}

// Page devuelve la página solicitada (page >= 1, pageSize >= 1).
func (s *Service) Page(ctx context.Context, filter repository.StockLogFilter, page, pageSize int) (*PagedResult, error) {
	if page < 1 || pageSize < 1 {
		return nil, domain.ErrInvalidInput
	}
	// el desplazamiento (page-1)*pageSize debe caber en un int
	if page-1 > math.MaxInt/pageSize {
		return nil, domain.ErrInvalidInput
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}
	items, total, err := s.repo.Page(ctx, filter, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*entity.StockLog{}
	}
	return &PagedResult{Items: items, TotalCount: total, Page: page, PageSize: pageSize}, nil
}

// SalesValueForDay suma |delta| de los asientos Sale del día UTC de day por producto
// y lo multiplica por el precio vigente. Productos ausentes del catálogo se excluyen
// del total y se informan en MissingProductIDs.
func (s *Service) SalesValueForDay(ctx context.Context, day time.Time) (*SalesReport, error) {
	start, end := DayBounds(day)
	sale := entity.ChangeTypeSale
	logs, err := s.repo.Query(ctx, repository.StockLogFilter{From: &start, To: &end, ChangeType: &sale})
	if err != nil {
		return nil, err
	}
	units := inventory.UnitsSoldByProduct(logs)
	report := &SalesReport{Day: start, Total: decimal.Zero}
	if len(units) == 0 {
		return report, nil
	}

	ids := make([]string, 0, len(units))
	for id, q := range units {
		ids = append(ids, id)
		report.UnitsSold += q
	}
	prices, err := s.catalog.PricesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	agg := inventory.SalesValue(units, prices)
	report.Total = agg.Total
	report.MissingProductIDs = agg.MissingProductIDs
	return report, nil
}

// DayBounds devuelve [00:00, 23:59:59.999999] UTC del día de t.
// El límite superior es inclusivo con resolución de microsegundos (la del almacén).
func DayBounds(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1).Add(-time.Microsecond)
}

func validateFilter(f repository.StockLogFilter) error {
	if f.ChangeType != nil && !f.ChangeType.Valid() {
		return domain.ErrInvalidInput
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return domain.ErrInvalidInput
	}
	return nil
}
