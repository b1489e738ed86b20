package sales

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/shopledger/shopledger/internal/catalog"
)

type memoryRepo struct {
	mu       sync.Mutex
	products map[int64]catalog.Product
	sales    []Sale
	nextID   int64
}

type memoryTx struct {
	repo     *memoryRepo
	products map[int64]catalog.Product
	sales    []Sale
}

func newMemoryRepo(products ...catalog.Product) *memoryRepo {
	repo := &memoryRepo{products: make(map[int64]catalog.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}
	return repo
}

// WithTx stages writes and applies them only when fn succeeds, mirroring the
// all-or-nothing guarantee of the real repository.
func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	staged := make(map[int64]catalog.Product, len(r.products))
	for id, p := range r.products {
		staged[id] = p
	}
	tx := &memoryTx{repo: r, products: staged}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.products = tx.products
	r.sales = append(r.sales, tx.sales...)
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sales {
		if s.ID == id {
			r.sales = append(r.sales[:i], r.sales[i+1:]...)
			return nil
		}
	}
	return ErrSaleNotFound
}

func (r *memoryRepo) stock(id int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *memoryRepo) saleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sales)
}

func (tx *memoryTx) GetProductForUpdate(ctx context.Context, id int64) (catalog.Product, error) {
	p, ok := tx.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}

func (tx *memoryTx) AdjustStock(ctx context.Context, id int64, delta int64) (catalog.Product, error) {
	p, ok := tx.products[id]
	if !ok {
		return catalog.Product{}, catalog.ErrProductNotFound
	}
	if p.Stock+delta < 0 {
		return catalog.Product{}, catalog.ErrInsufficientStock
	}
	p.Stock += delta
	tx.products[id] = p
	return p, nil
}

func (tx *memoryTx) InsertSale(ctx context.Context, sale Sale) (Sale, error) {
	tx.repo.nextID++
	sale.ID = tx.repo.nextID
	tx.sales = append(tx.sales, sale)
	return sale, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testProduct() catalog.Product {
	return catalog.Product{
		ID:        1,
		Name:      "Sugar 1kg",
		CostPrice: dec("6.00"),
		Price:     dec("10.00"),
		Stock:     20,
	}
}

func TestRecordSaleDebitsStock(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, RecordSaleInput{
		ProductID:       1,
		Quantity:        3,
		SellingPrice:    dec("10.00"),
		CustomerDetails: "Walk-in",
		ModeOfPayment:   "cash",
	})
	require.NoError(t, err)
	require.Equal(t, int64(17), repo.stock(1))
	require.Equal(t, "Sugar 1kg", sale.ProductName)
	require.True(t, sale.TotalPrice.Equal(dec("30.00")), "total price %s", sale.TotalPrice)
	require.True(t, sale.TotalProfit.Equal(dec("12.00")), "total profit %s", sale.TotalProfit)
}

func TestRecordSaleInsufficientStock(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 1, Quantity: 25, SellingPrice: dec("10.00")})
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	require.Equal(t, int64(20), repo.stock(1))
	require.Zero(t, repo.saleCount())
}

func TestRecordSaleNothingPersistsOnFailure(t *testing.T) {
	product := testProduct()
	product.Stock = 5
	repo := newMemoryRepo(product)
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 1, Quantity: 10, SellingPrice: dec("10.00")})
	require.ErrorIs(t, err, catalog.ErrInsufficientStock)
	require.Equal(t, int64(5), repo.stock(1))
	require.Zero(t, repo.saleCount())
}

func TestRecordSaleInvalidQuantity(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	for _, qty := range []int64{0, -4} {
		_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 1, Quantity: qty, SellingPrice: dec("10.00")})
		require.ErrorIs(t, err, ErrInvalidQuantity)
	}
	require.Equal(t, int64(20), repo.stock(1))
	require.Zero(t, repo.saleCount())
}

func TestRecordSaleNegativeSellingPrice(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 1, Quantity: 1, SellingPrice: dec("-0.01")})
	require.ErrorIs(t, err, ErrInvalidSellingPrice)
	require.Equal(t, int64(20), repo.stock(1))
	require.Zero(t, repo.saleCount())
}

func TestRecordSaleUnknownProduct(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 99, Quantity: 1, SellingPrice: dec("10.00")})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRecordSaleMissingProductBeatsBadQuantity(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	_, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 99, Quantity: 0, SellingPrice: dec("10.00")})
	require.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestRecordSaleConcurrentLastUnit(t *testing.T) {
	product := testProduct()
	product.Stock = 1
	repo := newMemoryRepo(product)
	svc := NewService(repo, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.RecordSale(ctx, RecordSaleInput{ProductID: 1, Quantity: 1, SellingPrice: dec("10.00")})
		}(i)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			require.ErrorIs(t, err, catalog.ErrInsufficientStock)
			failed++
		}
	}
	require.Equal(t, 1, succeeded)
	require.Equal(t, 1, failed)
	require.Equal(t, int64(0), repo.stock(1))
	require.Equal(t, 1, repo.saleCount())
}

func TestDeleteSale(t *testing.T) {
	repo := newMemoryRepo(testProduct())
	svc := NewService(repo, nil)
	ctx := context.Background()

	sale, err := svc.RecordSale(ctx, RecordSaleInput{ProductID: 1, Quantity: 2, SellingPrice: dec("10.00")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, 1, sale.ID))
	require.Zero(t, repo.saleCount())
	// Deleting a sale never restores stock.
	require.Equal(t, int64(18), repo.stock(1))

	require.ErrorIs(t, svc.Delete(ctx, 1, sale.ID), ErrSaleNotFound)
}
