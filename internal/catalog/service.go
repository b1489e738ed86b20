package catalog

import (
	"context"
	"fmt"

	"github.com/shopledger/shopledger/internal/shared"
)

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations and owns the stock invariant.
type Service struct {
	repo  Repository
	audit AuditPort
}

// NewService builds Service.
func NewService(repo Repository, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrProductNotFound
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, actorID int64, product Product) (Product, error) {
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("catalog: create product: %w", err)
	}
	s.recordAudit(ctx, actorID, "catalog:create", created)
	return created, nil
}

func (s *Service) Update(ctx context.Context, actorID int64, id int64, product Product) (Product, error) {
	if id <= 0 {
		return Product{}, ErrProductNotFound
	}
	if err := s.validate(product); err != nil {
		return Product{}, err
	}
	updated, err := s.repo.Update(ctx, id, product)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, actorID, "catalog:update", updated)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, actorID int64, id int64) error {
	if id <= 0 {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "catalog:delete", Product{ID: id})
	return nil
}

// AdjustStock applies stock += delta, negative for issues and positive for
// restocks. Fails with ErrInsufficientStock when the result would be negative.
func (s *Service) AdjustStock(ctx context.Context, actorID int64, id int64, delta int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrProductNotFound
	}
	if delta == 0 {
		return s.repo.Get(ctx, id)
	}
	product, err := s.repo.AdjustStock(ctx, id, delta)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, actorID, "catalog:adjust_stock", product)
	return product, nil
}

func (s *Service) ListLowStock(ctx context.Context, threshold int64) ([]Product, error) {
	if threshold < 0 {
		threshold = 0
	}
	return s.repo.ListLowStock(ctx, threshold)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, product Product) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
		EntityID: fmt.Sprintf("%d", product.ID),
		Meta: map[string]any{
			"name":  product.Name,
			"stock": product.Stock,
		},
	})
}
