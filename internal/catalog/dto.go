package catalog

import "github.com/shopspring/decimal"

// ProductForm carries product create/update payloads.
type ProductForm struct {
	Name        string          `json:"name" validate:"required,max=100"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int64           `json:"stock" validate:"gte=0"`
}

// StockAdjustmentForm carries manual stock corrections and restocks. A zero
// delta is a plain read of the current product.
type StockAdjustmentForm struct {
	Delta int64 `json:"delta"`
}

func (f ProductForm) toProduct() Product {
	return Product{
		Name:        f.Name,
		CostPrice:   f.CostPrice,
		Price:       f.Price,
		Description: f.Description,
		Stock:       f.Stock,
	}
}
