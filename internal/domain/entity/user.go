package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "Admin"
	RoleWarehouse = "Warehouse"
	RoleCustomer  = "Customer"
)

// User representa un usuario del sistema; su ID viaja como actor en los asientos del ledger.
type User struct {
	ID           string
	Username     string
	PasswordHash string // bcrypt hash
	Role         string
	CreatedAt    time.Time
	LastLogin    time.Time
}
