package domain

import "time"

// Product is one sellable catalog entry belonging to a store.
type Product struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	StoreID   string    `gorm:"type:text;not null;index:idx_products_store" json:"store_id"`
	Name      string    `gorm:"type:text;not null" json:"name"`
	Price     int       `gorm:"default:0" json:"price"`
	Active    bool      `gorm:"index:idx_products_active" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string {
	return "products"
}

// RecipeLine maps a product to one ingredient and the amount of that ingredient
// consumed per unit sold.
type RecipeLine struct {
	ID            string    `gorm:"type:text;primaryKey" json:"id"`
	ProductID     string    `gorm:"type:text;not null;index:idx_recipe_lines_product" json:"product_id"`
	InventoryID   string    `gorm:"type:text;not null" json:"inventory_id"`
	AmountPerUnit int       `gorm:"not null" json:"amount_per_unit"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for RecipeLine.
func (RecipeLine) TableName() string {
	return "recipe_lines"
}
