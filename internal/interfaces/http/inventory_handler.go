package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stockledger-api/internal/application/dto"
	"github.com/jhoicas/stockledger-api/internal/application/inventory"
	"github.com/jhoicas/stockledger-api/internal/domain/entity"
	"github.com/jhoicas/stockledger-api/pkg/logger"
)

// InventoryHandler maneja las peticiones HTTP de movimientos e inventario (protegido).
type InventoryHandler struct {
	uc      *inventory.StockMovementUseCase
	reports *inventory.ReportUseCase
	log     *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.StockMovementUseCase, reports *inventory.ReportUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{uc: uc, reports: reports, log: log}
}

// List godoc
// @Summary      Listar inventario
// @Description  Sin filtros pagina todo el inventario; con warehouse_id o product_id devuelve los registros de esa bodega o producto.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        limit         query  int     false  "Límite"  default(20)
// @Param        offset        query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.InventoryListResponse
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	ctx := c.UserContext()
	var (
		records []*entity.InventoryRecord
		page    dto.PageResponse
		err     error
	)
	switch {
	case c.Query("warehouse_id") != "":
		records, err = h.uc.ListByWarehouse(ctx, c.Query("warehouse_id"))
		page.Total = len(records)
	case c.Query("product_id") != "":
		records, err = h.uc.ListByProduct(ctx, c.Query("product_id"))
		page.Total = len(records)
	default:
		p := pageParams(c)
		page.Limit, page.Offset = p.Limit, p.Offset
		records, page.Total, err = h.uc.ListInventory(ctx, p.Limit, p.Offset)
	}
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.InventoryListResponse{Items: toInventoryResponses(records), Page: page})
}

// Get godoc
// @Summary      Obtener inventario de un producto en una bodega
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId    path  string  true  "ID del producto"
// @Param        warehouseId  path  string  true  "ID de la bodega"
// @Success      200  {object}  dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/{productId}/{warehouseId} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	rec, err := h.uc.GetInventory(c.UserContext(), c.Params("productId"), c.Params("warehouseId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toInventoryResponse(rec))
}

// Create godoc
// @Summary      Asignación inicial de un producto a una bodega
// @Description  Crea el registro de inventario y un asiento InitialStock. min_stock_level por defecto 10.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInventoryRequest  true  "product_id, warehouse_id, quantity, min_stock_level"
// @Success      201   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory [post]
func (h *InventoryHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInventoryRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.uc.InitialAssignment(c.UserContext(), inventory.InitialAssignmentInput{
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		Quantity:      in.Quantity,
		MinStockLevel: in.MinStockLevel,
		UserID:        actorID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toInventoryResponse(res.Record))
}

// Restock godoc
// @Summary      Reponer stock
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, warehouse_id, quantity (> 0)"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/restock [post]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	return h.movement(c, h.uc.Restock)
}

// Deplete godoc
// @Summary      Registrar venta (salida de stock)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, warehouse_id, quantity (> 0)"
// @Success      200   {object}  dto.InventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK o CONCURRENCY_CONFLICT"
// @Router       /api/inventory/deplete [post]
func (h *InventoryHandler) Deplete(c *fiber.Ctx) error {
	return h.movement(c, h.uc.Deplete)
}

// Transfer godoc
// @Summary      Trasladar stock entre bodegas
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.TransferRequest  true  "product_id, source_warehouse_id, destination_warehouse_id, quantity"
// @Success      200   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfer [post]
func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	var in dto.TransferRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.uc.Transfer(c.UserContext(), inventory.TransferInput{
		ProductID:              in.ProductID,
		SourceWarehouseID:      in.SourceWarehouseID,
		DestinationWarehouseID: in.DestinationWarehouseID,
		Quantity:               in.Quantity,
		UserID:                 actorID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.TransferResponse{
		TransferID:  res.TransferID,
		Source:      toInventoryResponse(res.Source),
		Destination: toInventoryResponse(res.Destination),
	})
}

// LowStock godoc
// @Summary      Registros con stock bajo
// @Description  quantity < min_stock_level. El resultado puede quedar desactualizado frente a movimientos concurrentes.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        warehouse_id  query  string  false  "Filtrar por bodega. Vacío = todas."
// @Success      200  {array}   dto.InventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	records, err := h.reports.GetLowStockItems(c.UserContext(), c.Query("warehouse_id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toInventoryResponses(records))
}

func (h *InventoryHandler) movement(c *fiber.Ctx, op func(ctx context.Context, in inventory.MovementInput) (*inventory.MovementResult, error)) error {
	var in dto.StockMovementRequest
	if ok, err := parseAndValidate(c, &in); !ok {
		return err
	}
	res, err := op(c.UserContext(), inventory.MovementInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		Quantity:    in.Quantity,
		UserID:      actorID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toInventoryResponse(res.Record))
}

func toInventoryResponse(r *entity.InventoryRecord) dto.InventoryResponse {
	return dto.InventoryResponse{
		ID:            r.ID,
		ProductID:     r.ProductID,
		WarehouseID:   r.WarehouseID,
		Quantity:      r.Quantity,
		MinStockLevel: r.MinStockLevel,
		IsLowStock:    r.IsLowStock(),
		LastRestocked: r.LastRestocked,
		UpdatedAt:     r.UpdatedAt,
	}
}

func toInventoryResponses(records []*entity.InventoryRecord) []dto.InventoryResponse {
	out := make([]dto.InventoryResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toInventoryResponse(r))
	}
	return out
}
