package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a product in the catalog
type Product struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	SKU         string          `json:"sku" db:"sku"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	CostPrice   decimal.Decimal `json:"costPrice" db:"cost_price"`
	CategoryID  uuid.UUID       `json:"categoryId" db:"category_id"`
	Category    *Category       `json:"category,omitempty"`
	Inventory   *Inventory      `json:"inventory"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Inventory is the stock record owned by exactly one product
type Inventory struct {
	ID           uuid.UUID `json:"id" db:"id"`
	ProductID    uuid.UUID `json:"productId" db:"product_id"`
	Quantity     int       `json:"quantity" db:"quantity"`
	ReorderLevel int       `json:"reorderLevel" db:"reorder_level"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Category represents a product category
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// LowStock reports whether the quantity is at or below the reorder level
func (i *Inventory) LowStock() bool {
	return i != nil && i.Quantity <= i.ReorderLevel
}

// ProductFilter narrows product listings
type ProductFilter struct {
	CategoryID *uuid.UUID
	Search     string
	LowStock   bool
	Limit      int
	Offset     int
}
