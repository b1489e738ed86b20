package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shopledger/shopledger/internal/shared"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Delete(ctx context.Context, id int64) error
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service records sales against the product catalog.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// RecordSaleInput describes a sale to record.
type RecordSaleInput struct {
	ProductID       int64
	Quantity        int64
	SellingPrice    decimal.Decimal
	CustomerDetails string
	ModeOfPayment   string
	ActorID         int64
}

// RecordSale debits the product's stock and persists the sale in one
// transaction. Preconditions are checked in order: product exists, quantity
// is positive, quantity fits the current stock. On any failure nothing
// persists.
func (s *Service) RecordSale(ctx context.Context, input RecordSaleInput) (Sale, error) {
	if input.SellingPrice.IsNegative() {
		return Sale{}, ErrInvalidSellingPrice
	}

	var recorded Sale
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		product, err := tx.GetProductForUpdate(ctx, input.ProductID)
		if err != nil {
			return err
		}
		if input.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if _, err := tx.AdjustStock(ctx, input.ProductID, -input.Quantity); err != nil {
			return err
		}

		sale := Sale{
			ProductID:       input.ProductID,
			ProductName:     product.Name,
			Quantity:        input.Quantity,
			SellingPrice:    input.SellingPrice,
			CustomerDetails: input.CustomerDetails,
			ModeOfPayment:   input.ModeOfPayment,
			SaleDate:        time.Now().UTC(),
		}
		inserted, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return fmt.Errorf("sales: insert sale: %w", err)
		}

		qty := decimal.NewFromInt(inserted.Quantity)
		inserted.ProductName = product.Name
		inserted.TotalPrice = inserted.SellingPrice.Mul(qty)
		inserted.TotalProfit = qty.Mul(inserted.SellingPrice.Sub(product.CostPrice))
		recorded = inserted
		return nil
	})
	if err != nil {
		return Sale{}, err
	}

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  input.ActorID,
			Action:   "sales:record",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", recorded.ID),
			Meta: map[string]any{
				"product_id": recorded.ProductID,
				"quantity":   recorded.Quantity,
				"total":      recorded.TotalPrice.String(),
			},
		})
	}
	return recorded, nil
}

// Delete removes a sale record outright. Administrative removal only; it does
// not compensate stock.
func (s *Service) Delete(ctx context.Context, actorID int64, id int64) error {
	if id <= 0 {
		return ErrSaleNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  actorID,
			Action:   "sales:delete",
			Entity:   "sale",
			EntityID: fmt.Sprintf("%d", id),
		})
	}
	return nil
}
