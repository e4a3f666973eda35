package domain

import "time"

// Inventory is one tracked ingredient or stock item belonging to a store.
// Quantity is mutated only inside reconciliation transactions, never directly.
type Inventory struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	StoreID   string    `gorm:"type:text;not null;index:idx_inventories_store" json:"store_id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Unit      string    `gorm:"type:text" json:"unit"`
	Quantity  int       `gorm:"default:0" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Inventory.
func (Inventory) TableName() string {
	return "inventories"
}

// InventoryLogType classifies a stock movement.
type InventoryLogType string

const (
	LogTypeDeduction InventoryLogType = "DEDUCTION"
	LogTypeRestock   InventoryLogType = "RESTOCK"
)

// InventoryLog is one append-only stock movement entry. Entries are never mutated
// or deleted. Invariant: AfterQuantity = BeforeQuantity + QuantityChange.
type InventoryLog struct {
	ID             string           `gorm:"type:text;primaryKey" json:"id"`
	InventoryID    string           `gorm:"type:text;not null;index:idx_inventory_logs_inventory" json:"inventory_id"`
	MatchID        string           `gorm:"type:text;index:idx_inventory_logs_match" json:"match_id"`
	LogType        InventoryLogType `gorm:"type:text;not null" json:"log_type"`
	QuantityChange int              `gorm:"not null" json:"quantity_change"`
	BeforeQuantity int              `gorm:"not null" json:"before_quantity"`
	AfterQuantity  int              `gorm:"not null" json:"after_quantity"`
	Reason         string           `gorm:"type:text" json:"reason"`
	CreatedAt      time.Time        `json:"created_at"`
}

// TableName returns the database table name for InventoryLog.
func (InventoryLog) TableName() string {
	return "inventory_logs"
}
