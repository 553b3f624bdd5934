package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLogResponse asiento del ledger con datos de join (usuario y producto).
type StockLogResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	QuantityChange int       `json:"quantity_change"`
	QuantityBefore int       `json:"quantity_before"`
	QuantityAfter  int       `json:"quantity_after"`
	ChangeType     string    `json:"change_type"`
	TransferID     *string   `json:"transfer_id,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
	Username       *string   `json:"username,omitempty"`
	ProductName    *string   `json:"product_name,omitempty"`
}

// StockLogPageResponse resultado paginado del ledger (page comienza en 1).
type StockLogPageResponse struct {
	Items      []StockLogResponse `json:"items"`
	TotalCount int                `json:"total_count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
}

// SalesTodayResponse valor vendido del día UTC.
type SalesTodayResponse struct {
	Date              string          `json:"date"`
	TotalSalesValue   decimal.Decimal `json:"total_sales_value"`
	UnitsSold         int             `json:"units_sold"`
	MissingProductIDs []string        `json:"missing_product_ids,omitempty"`
}
