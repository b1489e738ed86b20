package reports

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopledger/shopledger/internal/sales"
)

type memoryRepo struct {
	records []SaleRecord
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

func (r *memoryRepo) SalesOnDay(ctx context.Context, day time.Time) ([]SaleRecord, error) {
	result := make([]SaleRecord, 0)
	for _, rec := range r.records {
		if sameDay(rec.SaleDate, day) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *memoryRepo) SalesInMonth(ctx context.Context, month time.Month, year int) ([]SaleRecord, error) {
	result := make([]SaleRecord, 0)
	for _, rec := range r.records {
		if rec.SaleDate.Month() == month && rec.SaleDate.Year() == year {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (r *memoryRepo) Transactions(ctx context.Context, filter TransactionFilter) ([]SaleRecord, error) {
	result := make([]SaleRecord, 0)
	for _, rec := range r.records {
		if filter.Customer != "" && !strings.Contains(strings.ToLower(rec.CustomerDetails), strings.ToLower(filter.Customer)) {
			continue
		}
		if filter.ProductID != 0 && rec.ProductID != filter.ProductID {
			continue
		}
		if filter.Date != nil && !sameDay(rec.SaleDate, *filter.Date) {
			continue
		}
		result = append(result, rec)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SaleDate.After(result[j].SaleDate)
	})
	return result, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func record(id, productID int64, name string, qty int64, selling, cost string, at time.Time, customer string) SaleRecord {
	return SaleRecord{
		Sale: sales.Sale{
			ID:              id,
			ProductID:       productID,
			ProductName:     name,
			Quantity:        qty,
			SellingPrice:    dec(selling),
			CustomerDetails: customer,
			SaleDate:        at,
		},
		CostPrice: dec(cost),
	}
}

func TestDailyAggregatesByProduct(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{records: []SaleRecord{
		record(1, 1, "Sugar 1kg", 3, "10.00", "6.00", day.Add(9*time.Hour), "Alice"),
		record(2, 1, "Sugar 1kg", 2, "10.00", "6.00", day.Add(15*time.Hour), "Bob"),
	}}
	svc := NewService(repo)
	ctx := context.Background()

	report, err := svc.Daily(ctx, day)
	require.NoError(t, err)
	require.Len(t, report, 1)
	require.Equal(t, "Sugar 1kg", report[0].ProductName)
	require.Equal(t, int64(5), report[0].TotalQuantity)
	require.True(t, report[0].TotalProfit.Equal(dec("20.00")), "profit %s", report[0].TotalProfit)
	require.True(t, GrandTotal(report).Equal(dec("20.00")))
}

func TestDailyEmptyWindow(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	report, err := svc.Daily(ctx, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, report)
	require.Empty(t, report)
	require.True(t, GrandTotal(report).IsZero())
}

func TestDailyIsIdempotent(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{records: []SaleRecord{
		record(1, 1, "Sugar 1kg", 3, "10.00", "6.00", day, ""),
	}}
	svc := NewService(repo)
	ctx := context.Background()

	first, err := svc.Daily(ctx, day)
	require.NoError(t, err)
	second, err := svc.Daily(ctx, day)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestMonthlySortsByProductName(t *testing.T) {
	day := time.Date(2026, 8, 10, 12, 0, 0, 0, time.UTC)
	repo := &memoryRepo{records: []SaleRecord{
		record(1, 2, "Tea Leaves 250g", 4, "3.50", "2.20", day, ""),
		record(2, 1, "Rice 5kg", 1, "24.50", "18.00", day.AddDate(0, 0, 5), ""),
	}}
	svc := NewService(repo)
	ctx := context.Background()

	report, err := svc.Monthly(ctx, time.August, 2026)
	require.NoError(t, err)
	require.Len(t, report, 2)
	require.Equal(t, "Rice 5kg", report[0].ProductName)
	require.Equal(t, "Tea Leaves 250g", report[1].ProductName)
}

func TestMonthlyOutOfRangeMonth(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	report, err := svc.Monthly(ctx, time.Month(13), 2026)
	require.NoError(t, err)
	require.Empty(t, report)
}

func TestTransactionsCustomerFilter(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	repo := &memoryRepo{records: []SaleRecord{
		record(1, 1, "Sugar 1kg", 1, "10.00", "6.00", day.Add(8*time.Hour), "John Smith"),
		record(2, 1, "Sugar 1kg", 2, "10.00", "6.00", day.Add(16*time.Hour), "Mary SMITH"),
		record(3, 2, "Rice 5kg", 1, "24.50", "18.00", day.Add(12*time.Hour), "Dana Jones"),
	}}
	svc := NewService(repo)
	ctx := context.Background()

	records, err := svc.Transactions(ctx, TransactionFilter{Customer: "smith"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Newest first.
	require.Equal(t, int64(2), records[0].ID)
	require.Equal(t, int64(1), records[1].ID)
	require.True(t, records[0].TotalPrice.Equal(dec("20.00")))
	require.True(t, records[0].TotalProfit.Equal(dec("8.00")))
}

func TestTransactionsProductAndDateFilter(t *testing.T) {
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	other := day.AddDate(0, 0, -1)
	repo := &memoryRepo{records: []SaleRecord{
		record(1, 1, "Sugar 1kg", 1, "10.00", "6.00", day, ""),
		record(2, 2, "Rice 5kg", 1, "24.50", "18.00", day, ""),
		record(3, 1, "Sugar 1kg", 2, "10.00", "6.00", other, ""),
	}}
	svc := NewService(repo)
	ctx := context.Background()

	records, err := svc.Transactions(ctx, TransactionFilter{ProductID: 1, Date: &day})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(1), records[0].ID)
}

func TestTransactionsNoFilter(t *testing.T) {
	svc := NewService(&memoryRepo{})
	ctx := context.Background()

	records, err := svc.Transactions(ctx, TransactionFilter{})
	require.NoError(t, err)
	require.NotNil(t, records)
	require.Empty(t, records)
}
