package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a sellable item and its current stock level.
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int64           `json:"stock"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProfitPerUnit returns list price minus cost per unit.
func (p Product) ProfitPerUnit() decimal.Decimal {
	return p.Price.Sub(p.CostPrice)
}

// ErrProductNotFound indicates the referenced product id does not exist.
var ErrProductNotFound = errors.New("catalog: product not found")

// ErrInsufficientStock indicates a stock adjustment would drive stock negative.
var ErrInsufficientStock = errors.New("catalog: insufficient stock")

// ListFilters narrows product listings.
type ListFilters struct {
	Page   int
	Limit  int
	Search string
}
