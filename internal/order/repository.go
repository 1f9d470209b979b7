package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/medicine-store-backend/internal/cart"
	"github.com/wichananm65/medicine-store-backend/internal/product"
)

type Repository interface {
	// Checkout turns the user's cart into a Pending order and empties the
	// cart as one atomic step.
	Checkout(ctx context.Context, userID string, address *string, now time.Time) (Order, error)
	// List returns every order, newest first.
	List(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	UpdateStatus(ctx context.Context, id int64, orderStatus Status, paymentStatus PaymentStatus, now time.Time) (Order, error)
	// ConfirmPayment marks the order paid and completed and records paymentID.
	ConfirmPayment(ctx context.Context, id int64, paymentID string, now time.Time) (Order, error)
	Delete(ctx context.Context, id int64) error
}

// InMemoryRepository keeps orders in a slice and checks out against the
// in-memory cart store.
type InMemoryRepository struct {
	mu       sync.RWMutex
	orders   []Order
	nextID   int64
	carts    *cart.InMemoryRepository
	products product.Repository
}

func NewInMemoryRepository(carts *cart.InMemoryRepository, products product.Repository) *InMemoryRepository {
	return &InMemoryRepository{
		orders:   make([]Order, 0),
		nextID:   1,
		carts:    carts,
		products: products,
	}
}

func (r *InMemoryRepository) Checkout(ctx context.Context, userID string, address *string, now time.Time) (Order, error) {
	var created Order
	err := r.carts.WithLockedCart(userID, now, func(c cart.Cart) error {
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}
		products, err := r.products.ListByIDs(ctx, c.ProductIDs())
		if err != nil {
			return err
		}
		prices := make(map[int64]decimal.Decimal, len(products))
		for _, p := range products {
			prices[p.ID] = p.Price
		}
		o, err := NewFromCart(c, prices, address, now)
		if err != nil {
			return err
		}

		r.mu.Lock()
		o.ID = r.nextID
		r.nextID++
		r.orders = append(r.orders, o)
		r.mu.Unlock()

		created = o.clone()
		return nil
	})
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

func (r *InMemoryRepository) List(_ context.Context) ([]Order, error) {
	return r.filter(func(Order) bool { return true }), nil
}

func (r *InMemoryRepository) ListByUser(_ context.Context, userID string) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.UserID == userID }), nil
}

func (r *InMemoryRepository) filter(keep func(Order) bool) []Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Order, 0, len(r.orders))
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *InMemoryRepository) Get(_ context.Context, id int64) (Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o.clone(), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) update(id int64, apply func(*Order)) (Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			apply(&r.orders[i])
			return r.orders[i].clone(), nil
		}
	}
	return Order{}, ErrNotFound
}

func (r *InMemoryRepository) UpdateStatus(_ context.Context, id int64, orderStatus Status, paymentStatus PaymentStatus, now time.Time) (Order, error) {
	return r.update(id, func(o *Order) {
		o.OrderStatus = orderStatus
		o.PaymentStatus = paymentStatus
		o.UpdatedAt = now
	})
}

func (r *InMemoryRepository) ConfirmPayment(_ context.Context, id int64, paymentID string, now time.Time) (Order, error) {
	return r.update(id, func(o *Order) {
		o.PaymentStatus = PaymentSuccess
		o.OrderStatus = StatusCompleted
		o.PaymentID = &paymentID
		o.UpdatedAt = now
	})
}

func (r *InMemoryRepository) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.orders {
		if r.orders[i].ID == id {
			r.orders = append(r.orders[:i], r.orders[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
