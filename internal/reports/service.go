package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	SalesOnDay(ctx context.Context, day time.Time) ([]SaleRecord, error)
	SalesInMonth(ctx context.Context, month time.Month, year int) ([]SaleRecord, error)
	Transactions(ctx context.Context, filter TransactionFilter) ([]SaleRecord, error)
}

// Service produces profit reports from recorded sales. All operations are
// pure reads; a window with no sales yields an empty slice and a zero total.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Daily groups the day's sales by product and sums quantity and profit.
func (s *Service) Daily(ctx context.Context, day time.Time) ([]ProductAggregate, error) {
	records, err := s.repo.SalesOnDay(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("reports: daily: %w", err)
	}
	return aggregate(records), nil
}

// Monthly groups the month's sales by product and sums quantity and profit.
func (s *Service) Monthly(ctx context.Context, month time.Month, year int) ([]ProductAggregate, error) {
	if month < time.January || month > time.December {
		return []ProductAggregate{}, nil
	}
	records, err := s.repo.SalesInMonth(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("reports: monthly: %w", err)
	}
	return aggregate(records), nil
}

// Transactions lists sales newest-first with per-row totals filled in.
func (s *Service) Transactions(ctx context.Context, filter TransactionFilter) ([]SaleRecord, error) {
	records, err := s.repo.Transactions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("reports: transactions: %w", err)
	}
	for i := range records {
		qty := decimal.NewFromInt(records[i].Quantity)
		records[i].TotalPrice = records[i].SellingPrice.Mul(qty)
		records[i].TotalProfit = qty.Mul(records[i].SellingPrice.Sub(records[i].CostPrice))
	}
	if records == nil {
		records = []SaleRecord{}
	}
	return records, nil
}

// GrandTotal sums group profits. Groups are never nil-valued, so an empty
// report simply totals to zero.
func GrandTotal(aggregates []ProductAggregate) decimal.Decimal {
	total := decimal.Zero
	for _, agg := range aggregates {
		total = total.Add(agg.TotalProfit)
	}
	return total
}

// aggregate folds sale records into per-product totals. Profit per record is
// quantity * (selling_price - cost_price) with the cost looked up at query
// time.
func aggregate(records []SaleRecord) []ProductAggregate {
	groups := make(map[int64]*ProductAggregate)

	for _, rec := range records {
		agg, ok := groups[rec.ProductID]
		if !ok {
			agg = &ProductAggregate{ProductName: rec.ProductName, TotalProfit: decimal.Zero}
			groups[rec.ProductID] = agg
		}
		qty := decimal.NewFromInt(rec.Quantity)
		agg.TotalQuantity += rec.Quantity
		agg.TotalProfit = agg.TotalProfit.Add(qty.Mul(rec.SellingPrice.Sub(rec.CostPrice)))
	}

	result := make([]ProductAggregate, 0, len(groups))
	for _, agg := range groups {
		result = append(result, *agg)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ProductName < result[j].ProductName
	})
	return result
}
