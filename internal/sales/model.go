package sales

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Sale is an immutable record of a completed transaction. Once recorded it is
// never updated; only direct administrative removal can delete it.
type Sale struct {
	ID              int64           `json:"id"`
	ProductID       int64           `json:"product_id"`
	ProductName     string          `json:"product_name,omitempty"`
	Quantity        int64           `json:"quantity"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	CustomerDetails string          `json:"customer_details"`
	ModeOfPayment   string          `json:"mode_of_payment"`
	SaleDate        time.Time       `json:"sale_date"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	// Derived amounts. TotalProfit uses the product's cost price as looked
	// up when the row was read, not a snapshot taken at sale time.
	TotalPrice  decimal.Decimal `json:"total_price"`
	TotalProfit decimal.Decimal `json:"total_profit"`
}

// ErrInvalidQuantity indicates a requested quantity of zero or less.
var ErrInvalidQuantity = errors.New("sales: quantity must be positive")

// ErrInvalidSellingPrice indicates a negative selling price.
var ErrInvalidSellingPrice = errors.New("sales: selling price must not be negative")

// ErrSaleNotFound indicates the referenced sale id does not exist.
var ErrSaleNotFound = errors.New("sales: sale not found")
