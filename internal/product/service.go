package product

import (
	"context"
	"time"

	"github.com/wichananm65/medicine-store-backend/internal/httpx"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) List(ctx context.Context, search string) ([]Product, error) {
	return s.repo.List(ctx, search)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByIDs resolves product references for carts and orders.
func (s *Service) ListByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	return s.repo.ListByIDs(ctx, ids)
}

func (s *Service) Create(ctx context.Context, in Input) (Product, error) {
	if err := httpx.Validation(in.Validate()); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, in.toProduct(s.now()))
}

// Update overwrites every writable field of an existing product.
func (s *Service) Update(ctx context.Context, id int64, in Input) (Product, error) {
	if err := httpx.Validation(in.Validate()); err != nil {
		return Product{}, err
	}
	return s.repo.Update(ctx, id, in.toProduct(s.now()))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}
