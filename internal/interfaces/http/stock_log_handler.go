package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/application/ledger"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/internal/domain/repository"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// StockLogHandler consultas sobre el ledger de stock (roles Admin y Warehouse).
type StockLogHandler struct {
	reports *inventory.ReportUseCase
	log     *logger.Logger
}

// NewStockLogHandler construye el handler.
func NewStockLogHandler(reports *inventory.ReportUseCase, log *logger.Logger) *StockLogHandler {
	return &StockLogHandler{reports: reports, log: log}
}

// Page godoc
// @Summary      Historial de movimientos paginado
// @Description  Ordenado por timestamp descendente. from/to aceptan RFC3339 o YYYY-MM-DD y son inclusivos.
// @Tags         stock-logs
// @Security     Bearer
// @Produce      json
// @Param        page          query  int     false  "Página (desde 1)"  default(1)
// @Param        page_size     query  int     false  "Tamaño de página (máximo 100)"  default(10)
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        from          query  string  false  "Desde"
// @Param        to            query  string  false  "Hasta"
// @Param        change_type   query  string  false  "InitialStock | Restock | Sale | TransferIn | TransferOut"
// @Success      200  {object}  dto.StockLogPageResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock-logs [get]
func (h *StockLogHandler) Page(c *fiber.Ctx) error {
	filter, errResp := parseStockLogFilter(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}
	page, errResp := parseQueryInt(c, "page", 1)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}
	pageSize, errResp := parseQueryInt(c, "page_size", 10)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}
	if pageSize > dto.MaxPageSize {
		pageSize = dto.MaxPageSize
	}
	res, err := h.reports.StockLogs(c.UserContext(), filter, page, pageSize)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.StockLogResponse, 0, len(res.Items))
	for _, l := range res.Items {
		items = append(items, toStockLogResponse(l))
	}
	return c.JSON(dto.StockLogPageResponse{
		Items:      items,
		TotalCount: res.TotalCount,
		Page:       res.Page,
		PageSize:   res.PageSize,
	})
}

// SalesToday godoc
// @Summary      Valor vendido hoy (UTC)
// @Description  Suma de unidades vendidas por el precio actual. Los productos sin precio se listan en missing_product_ids.
// @Tags         stock-logs
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SalesTodayResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock-logs/sales/today [get]
func (h *StockLogHandler) SalesToday(c *fiber.Ctx) error {
	report, err := h.reports.SalesToday(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.SalesTodayResponse{
		Date:              report.Day.Format(time.DateOnly),
		TotalSalesValue:   report.Total,
		UnitsSold:         report.UnitsSold,
		MissingProductIDs: report.MissingProductIDs,
	})
}

func parseStockLogFilter(c *fiber.Ctx) (repository.StockLogFilter, *dto.ErrorResponse) {
	filter := repository.StockLogFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
	}
	for _, q := range []struct {
		name string
		dst  **time.Time
		end  bool
	}{{"from", &filter.From, false}, {"to", &filter.To, true}} {
		raw := c.Query(q.name)
		if raw == "" {
			continue
		}
		t, err := parseQueryTime(raw, q.end)
		if err != nil {
			return filter, &dto.ErrorResponse{Code: "VALIDATION", Message: q.name + " debe ser RFC3339 o YYYY-MM-DD"}
		}
		*q.dst = &t
	}
	if raw := c.Query("change_type"); raw != "" {
		ct, err := entity.ParseChangeType(raw)
		if err != nil {
			return filter, &dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
		}
		filter.ChangeType = &ct
	}
	return filter, nil
}

// parseQueryInt devuelve def si el parámetro falta; un valor no entero es error de validación.
func parseQueryInt(c *fiber.Ctx, name string, def int) (int, *dto.ErrorResponse) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &dto.ErrorResponse{Code: "VALIDATION", Message: name + " debe ser un entero"}
	}
	return n, nil
}

// parseQueryTime con fecha sola, "to" cubre el día completo.
func parseQueryTime(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	start, end := ledger.DayBounds(d)
	if endOfDay {
		return end, nil
	}
	return start, nil
}

func toStockLogResponse(l *entity.StockLog) dto.StockLogResponse {
	out := dto.StockLogResponse{
		ID:             l.ID,
		ProductID:      l.ProductID,
		WarehouseID:    l.WarehouseID,
		QuantityChange: l.QuantityChange,
		QuantityBefore: l.QuantityBefore,
		QuantityAfter:  l.QuantityAfter,
		ChangeType:     string(l.ChangeType),
		TransferID:     l.TransferID,
		Timestamp:      l.Timestamp,
	}
	if l.Username != "" {
		out.Username = &l.Username
	}
	if l.ProductName != "" {
		out.ProductName = &l.ProductName
	}
	return out
}
