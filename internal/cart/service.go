package cart

import (
	"context"
	"errors"
	"time"

	"github.com/wichananm65/medicine-store-backend/internal/httpx"
	"github.com/wichananm65/medicine-store-backend/internal/product"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog is the part of the product service the cart needs.
type Catalog interface {
	Get(ctx context.Context, id int64) (product.Product, error)
	ListByIDs(ctx context.Context, ids []int64) ([]product.Product, error)
}

// Service orchestrates cart operations.
type Service struct {
	repo    Repository
	catalog Catalog
	now     func() time.Time
}

func NewService(repo Repository, catalog Catalog) *Service {
	return &Service{repo: repo, catalog: catalog, now: func() time.Time { return time.Now().UTC() }}
}

func validateLine(productID int64, qty int) error {
	errs := map[string]string{}
	if productID <= 0 {
		errs["productId"] = "productId is required"
	}
	if qty < 1 {
		errs["quantity"] = "quantity must be at least 1"
	}
	return httpx.Validation(errs)
}

func (s *Service) AddItem(ctx context.Context, userID string, productID int64, qty int) (Cart, error) {
	if err := validateLine(productID, qty); err != nil {
		return Cart{}, err
	}
	if _, err := s.catalog.Get(ctx, productID); err != nil {
		if errors.Is(err, product.ErrNotFound) {
			return Cart{}, ErrProductNotFound
		}
		return Cart{}, err
	}
	return s.repo.AddItem(ctx, userID, productID, qty, s.now())
}

// Get returns the cart with products resolved. A user without a cart gets an
// empty one.
func (s *Service) Get(ctx context.Context, userID string) (View, error) {
	c, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		return View{UserID: userID, Items: []ItemView{}}, nil
	}
	if err != nil {
		return View{}, err
	}

	products, err := s.catalog.ListByIDs(ctx, c.ProductIDs())
	if err != nil {
		return View{}, err
	}
	byID := make(map[int64]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	v := View{UserID: c.UserID, Items: make([]ItemView, 0, len(c.Items)), UpdatedAt: &c.UpdatedAt}
	for _, it := range c.Items {
		iv := ItemView{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := byID[it.ProductID]; ok {
			iv.Product = &p
		}
		v.Items = append(v.Items, iv)
	}
	return v, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64) (Cart, error) {
	return s.repo.RemoveItem(ctx, userID, productID, s.now())
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID int64, qty int) (Cart, error) {
	if err := validateLine(productID, qty); err != nil {
		return Cart{}, err
	}
	return s.repo.UpdateQuantity(ctx, userID, productID, qty, s.now())
}
