package reports

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const saleJoinColumns = `s.id, s.product_id, p.name, s.quantity, s.selling_price,
	s.customer_details, s.mode_of_payment, s.sale_date, s.created_at, s.updated_at, p.cost_price`

// Repository reads sale records joined with live product cost data.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SalesOnDay returns all sales whose sale_date falls on the given calendar day.
func (r *Repository) SalesOnDay(ctx context.Context, day time.Time) ([]SaleRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleJoinColumns+`
		 FROM sales s JOIN products p ON p.id = s.product_id
		 WHERE s.sale_date::date = $1::date
		 ORDER BY s.sale_date DESC`, day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// SalesInMonth returns all sales within the given calendar month and year.
func (r *Repository) SalesInMonth(ctx context.Context, month time.Month, year int) ([]SaleRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+saleJoinColumns+`
		 FROM sales s JOIN products p ON p.id = s.product_id
		 WHERE EXTRACT(MONTH FROM s.sale_date) = $1 AND EXTRACT(YEAR FROM s.sale_date) = $2
		 ORDER BY s.sale_date DESC`, int(month), year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Transactions lists sales newest-first, narrowed by the optional filters.
func (r *Repository) Transactions(ctx context.Context, filter TransactionFilter) ([]SaleRecord, error) {
	query := `SELECT ` + saleJoinColumns + `
		 FROM sales s JOIN products p ON p.id = s.product_id
		 WHERE 1=1`
	args := []any{}

	if filter.Customer != "" {
		args = append(args, "%"+filter.Customer+"%")
		query += ` AND s.customer_details ILIKE $` + strconv.Itoa(len(args))
	}
	if filter.ProductID > 0 {
		args = append(args, filter.ProductID)
		query += ` AND s.product_id = $` + strconv.Itoa(len(args))
	}
	if filter.Date != nil {
		args = append(args, *filter.Date)
		query += ` AND s.sale_date::date = $` + strconv.Itoa(len(args)) + `::date`
	}
	query += ` ORDER BY s.sale_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func collectRecords(rows pgx.Rows) ([]SaleRecord, error) {
	var records []SaleRecord
	for rows.Next() {
		var rec SaleRecord
		err := rows.Scan(
			&rec.ID, &rec.ProductID, &rec.ProductName, &rec.Quantity, &rec.SellingPrice,
			&rec.CustomerDetails, &rec.ModeOfPayment, &rec.SaleDate, &rec.CreatedAt, &rec.UpdatedAt, &rec.CostPrice,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
