package order

import (
	"context"
	"strings"
	"time"

	"github.com/wichananm65/medicine-store-backend/internal/httpx"
	"github.com/wichananm65/medicine-store-backend/internal/product"
)

// Catalog resolves the products referenced by order lines.
type Catalog interface {
	ListByIDs(ctx context.Context, ids []int64) ([]product.Product, error)
}

// Service provides business logic for orders.
type Service struct {
	repo     Repository
	catalog  Catalog
	verifier *Verifier
	now      func() time.Time
}

func NewService(r Repository, catalog Catalog, verifier *Verifier) *Service {
	return &Service{
		repo:     r,
		catalog:  catalog,
		verifier: verifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Checkout converts the user's cart into a Pending order.
func (s *Service) Checkout(ctx context.Context, userID, address string) (Receipt, error) {
	var addr *string
	if a := strings.TrimSpace(address); a != "" {
		addr = &a
	}
	o, err := s.repo.Checkout(ctx, userID, addr, s.now())
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{OrderID: o.ID, TotalAmount: o.TotalAmount}, nil
}

// ConfirmPayment records a successful payment. There is no guard against a
// repeated or out-of-order callback; the latest one wins.
func (s *Service) ConfirmPayment(ctx context.Context, orderID int64, paymentID, signature string) (Order, error) {
	errs := map[string]string{}
	if orderID <= 0 {
		errs["orderId"] = "orderId is required"
	}
	if strings.TrimSpace(paymentID) == "" {
		errs["paymentId"] = "paymentId is required"
	}
	if err := httpx.Validation(errs); err != nil {
		return Order{}, err
	}

	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return Order{}, err
	}
	if err := s.verifier.Verify(orderID, paymentID, signature); err != nil {
		return Order{}, err
	}
	return s.repo.ConfirmPayment(ctx, orderID, paymentID, s.now())
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, orders)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Order, error) {
	orders, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, orders)
}

func (s *Service) Get(ctx context.Context, id int64) (Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return Order{}, err
	}
	resolved, err := s.resolve(ctx, []Order{o})
	if err != nil {
		return Order{}, err
	}
	return resolved[0], nil
}

// UpdateStatus sets both statuses, which must be given and valid.
func (s *Service) UpdateStatus(ctx context.Context, id int64, orderStatus, paymentStatus string) (Order, error) {
	errs := map[string]string{}
	st, ps := Status(orderStatus), PaymentStatus(paymentStatus)
	if orderStatus == "" {
		errs["orderStatus"] = "orderStatus is required"
	} else if !st.Valid() {
		errs["orderStatus"] = "orderStatus must be one of Pending, Completed, Shipped, Delivered, Cancelled"
	}
	if paymentStatus == "" {
		errs["paymentStatus"] = "paymentStatus is required"
	} else if !ps.Valid() {
		errs["paymentStatus"] = "paymentStatus must be one of Pending, Success, Failed"
	}
	if err := httpx.Validation(errs); err != nil {
		return Order{}, err
	}
	return s.repo.UpdateStatus(ctx, id, st, ps, s.now())
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// resolve attaches the current product to every line; lines whose product was
// deleted keep a nil Product.
func (s *Service) resolve(ctx context.Context, orders []Order) ([]Order, error) {
	var ids []int64
	for _, o := range orders {
		ids = append(ids, o.ProductIDs()...)
	}
	if len(ids) == 0 {
		return orders, nil
	}
	products, err := s.catalog.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range orders {
		for j := range orders[i].Items {
			orders[i].Items[j].Product = byID[orders[i].Items[j].ProductID]
		}
	}
	return orders, nil
}
