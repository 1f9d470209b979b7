package partner

import (
	"context"
	"strings"
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

func (s *Service) Submit(ctx context.Context, in Input) (Partner, error) {
	if err := httpx.Validation(in.Validate()); err != nil {
		return Partner{}, err
	}
	return s.repo.Create(ctx, Partner{
		Name:         strings.TrimSpace(in.Name),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		StoreDetails: in.StoreDetails,
		CreatedAt:    s.now(),
	})
}

func (s *Service) List(ctx context.Context) ([]Partner, error) {
	return s.repo.List(ctx)
}
