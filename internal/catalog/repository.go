package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const productColumns = "id, name, cost_price, price, description, stock, created_at, updated_at"

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, id int64, product Product) (Product, error)
	Delete(ctx context.Context, id int64) error
	AdjustStock(ctx context.Context, id int64, delta int64) (Product, error)
	ListLowStock(ctx context.Context, threshold int64) ([]Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// rowQuerier is satisfied by both pgxpool.Pool and pgx.Tx, so stock
// adjustments compose into larger transactions.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM products WHERE 1=1`
	args := []any{}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		clause := ` AND name ILIKE $` + strconv.Itoa(len(args))
		query += clause
		countQuery += clause
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY name ASC`
	if filters.Limit > 0 {
		args = append(args, filters.Limit)
		query += ` LIMIT $` + strconv.Itoa(len(args))
		offset := (filters.Page - 1) * filters.Limit
		if offset < 0 {
			offset = 0
		}
		args = append(args, offset)
		query += ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, cost_price, price, description, stock, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id`,
		product.Name, product.CostPrice, product.Price, product.Description, product.Stock, now,
	).Scan(&product.ID)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, id int64, product Product) (Product, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE products SET name = $1, cost_price = $2, price = $3, description = $4, stock = $5, updated_at = $6
		 WHERE id = $7 RETURNING `+productColumns,
		product.Name, product.CostPrice, product.Price, product.Description, product.Stock, time.Now().UTC(), id,
	)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrProductNotFound
		}
		return Product{}, err
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	// sales carry an ON DELETE CASCADE foreign key to products.
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *repository) AdjustStock(ctx context.Context, id int64, delta int64) (Product, error) {
	return adjustStock(ctx, r.pool, id, delta)
}

func (r *repository) ListLowStock(ctx context.Context, threshold int64) ([]Product, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+productColumns+` FROM products WHERE stock <= $1 ORDER BY stock ASC`, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// AdjustStockInTx applies a stock delta within an existing transaction, so a
// caller can make the decrement and its own writes atomic.
func AdjustStockInTx(ctx context.Context, tx pgx.Tx, id int64, delta int64) (Product, error) {
	return adjustStock(ctx, tx, id, delta)
}

// adjustStock applies stock += delta as a single conditional update. The
// WHERE guard rejects any adjustment that would leave stock negative, which
// keeps concurrent sales of the last unit from both succeeding.
func adjustStock(ctx context.Context, q rowQuerier, id int64, delta int64) (Product, error) {
	row := q.QueryRow(ctx,
		`UPDATE products SET stock = stock + $2, updated_at = $3
		 WHERE id = $1 AND stock + $2 >= 0 RETURNING `+productColumns,
		id, delta, time.Now().UTC(),
	)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Product{}, err
	}

	// The guard rejected: missing product and insufficient stock both
	// surface as zero rows, so disambiguate.
	var exists bool
	if err := q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists); err != nil {
		return Product{}, err
	}
	if !exists {
		return Product{}, ErrProductNotFound
	}
	return Product{}, ErrInsufficientStock
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.CostPrice, &p.Price, &p.Description, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
