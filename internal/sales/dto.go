package sales

import "github.com/shopspring/decimal"

// RecordSaleRequest carries the payload for recording a sale.
type RecordSaleRequest struct {
	ProductID       int64           `json:"product_id" validate:"required,gt=0"`
	Quantity        int64           `json:"quantity"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
	CustomerDetails string          `json:"customer_details" validate:"max=70"`
	ModeOfPayment   string          `json:"mode_of_payment" validate:"max=20"`
}
