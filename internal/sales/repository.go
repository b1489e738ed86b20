package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shopledger/shopledger/internal/catalog"
	"github.com/shopledger/shopledger/internal/platform/db"
)

// TxRepository exposes the operations the recorder runs inside one
// transaction: the stock debit and the sale insert succeed or fail together.
type TxRepository interface {
	GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error)
	AdjustStock(ctx context.Context, id int64, delta int64) (catalog.Product, error)
	InsertSale(ctx context.Context, sale Sale) (Sale, error)
}

// Repository persists sales in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

// Delete removes a sale row. Administrative use only; stock is not restored.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSaleNotFound
	}
	return nil
}

func (t *txRepo) GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT id, name, cost_price, price, description, stock, created_at, updated_at
		 FROM products WHERE id = $1 FOR UPDATE`, id)

	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.CostPrice, &p.Price, &p.Description, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Product{}, catalog.ErrProductNotFound
		}
		return catalog.Product{}, err
	}
	return p, nil
}

func (t *txRepo) AdjustStock(ctx context.Context, id int64, delta int64) (catalog.Product, error) {
	return catalog.AdjustStockInTx(ctx, t.tx, id, delta)
}

func (t *txRepo) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	now := time.Now().UTC()
	err := t.tx.QueryRow(ctx,
		`INSERT INTO sales (product_id, quantity, selling_price, customer_details, mode_of_payment, sale_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $7) RETURNING id`,
		sale.ProductID, sale.Quantity, sale.SellingPrice, sale.CustomerDetails, sale.ModeOfPayment, sale.SaleDate, now,
	).Scan(&sale.ID)
	if err != nil {
		return Sale{}, err
	}
	sale.CreatedAt = now
	sale.UpdatedAt = now
	return sale, nil
}
