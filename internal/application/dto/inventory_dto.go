package dto

import "time"

// CreateInventoryRequest body para POST /api/inventory (asignación inicial).
type CreateInventoryRequest struct {
	ProductID     string `json:"product_id" validate:"required,uuid"`
	WarehouseID   string `json:"warehouse_id" validate:"required,uuid"`
	Quantity      int    `json:"quantity" validate:"min=0"`
	MinStockLevel *int   `json:"min_stock_level,omitempty" validate:"omitempty,min=0"`
}

// StockMovementRequest body para restock y deplete.
type StockMovementRequest struct {
	ProductID   string `json:"product_id" validate:"required,uuid"`
	WarehouseID string `json:"warehouse_id" validate:"required,uuid"`
	Quantity    int    `json:"quantity" validate:"required,gt=0"`
}

// TransferRequest body para POST /api/inventory/transfer.
type TransferRequest struct {
	ProductID              string `json:"product_id" validate:"required,uuid"`
	SourceWarehouseID      string `json:"source_warehouse_id" validate:"required,uuid"`
	DestinationWarehouseID string `json:"destination_warehouse_id" validate:"required,uuid,nefield=SourceWarehouseID"`
	Quantity               int    `json:"quantity" validate:"required,gt=0"`
}

// InventoryResponse salida de un registro de inventario; is_low_stock es derivado.
type InventoryResponse struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	WarehouseID   string    `json:"warehouse_id"`
	Quantity      int       `json:"quantity"`
	MinStockLevel int       `json:"min_stock_level"`
	IsLowStock    bool      `json:"is_low_stock"`
	LastRestocked time.Time `json:"last_restocked"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// InventoryListResponse lista de registros de inventario.
type InventoryListResponse struct {
	Items []InventoryResponse `json:"items"`
	Page  PageResponse        `json:"page"`
}

// TransferResponse estado de ambos registros después del traslado.
type TransferResponse struct {
	TransferID  string            `json:"transfer_id"`
	Source      InventoryResponse `json:"source"`
	Destination InventoryResponse `json:"destination"`
}
