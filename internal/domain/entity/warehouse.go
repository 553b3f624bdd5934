package entity

import "time"

// Warehouse representa una bodega física donde se almacena inventario (multi-bodega).
type Warehouse struct {
	ID            string
	Name          string
	Location      string
	ContactNumber string // opcional
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
