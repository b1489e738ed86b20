package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopledger/shopledger/internal/sales"
)

// ProductAggregate is one report row: total quantity and profit for a product
// within the report window.
type ProductAggregate struct {
	ProductName   string          `json:"product_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
}

// SaleRecord joins a sale with the product's cost price as of query time.
// Profit figures therefore move when a product's cost price is edited after
// the fact; cost is deliberately not snapshotted onto the sale.
type SaleRecord struct {
	sales.Sale
	CostPrice decimal.Decimal `json:"-"`
}

// TransactionFilter narrows transaction listings. Zero values mean the
// filter is not applied.
type TransactionFilter struct {
	Customer  string
	ProductID int64
	Date      *time.Time
}
