package cart

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("product not found in cart")
)

// Repository stores one cart per user.
type Repository interface {
	// AddItem creates the cart if needed, then increments the line for
	// productID or appends a new one.
	AddItem(ctx context.Context, userID string, productID int64, qty int, now time.Time) (Cart, error)
	Get(ctx context.Context, userID string) (Cart, error)
	// RemoveItem drops the line for productID; a missing line is not an error.
	RemoveItem(ctx context.Context, userID string, productID int64, now time.Time) (Cart, error)
	UpdateQuantity(ctx context.Context, userID string, productID int64, qty int, now time.Time) (Cart, error)
}

// InMemoryRepository is used for tests and the memory backend.
type InMemoryRepository struct {
	mu    sync.Mutex
	carts map[string]Cart
}

func NewInMemoryRepository(seed []Cart) *InMemoryRepository {
	r := &InMemoryRepository{carts: make(map[string]Cart, len(seed))}
	for _, c := range seed {
		r.carts[c.UserID] = c.clone()
	}
	return r
}

func (r *InMemoryRepository) AddItem(_ context.Context, userID string, productID int64, qty int, now time.Time) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		c = Cart{UserID: userID, Items: []Item{}}
	}
	if i := c.indexOf(productID); i >= 0 {
		c.Items[i].Quantity += qty
	} else {
		c.Items = append(c.Items, Item{ProductID: productID, Quantity: qty})
	}
	c.UpdatedAt = now
	r.carts[userID] = c
	return c.clone(), nil
}

func (r *InMemoryRepository) Get(_ context.Context, userID string) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	return c.clone(), nil
}

func (r *InMemoryRepository) RemoveItem(_ context.Context, userID string, productID int64, now time.Time) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	if i := c.indexOf(productID); i >= 0 {
		items := make([]Item, 0, len(c.Items)-1)
		items = append(items, c.Items[:i]...)
		c.Items = append(items, c.Items[i+1:]...)
	}
	c.UpdatedAt = now
	r.carts[userID] = c
	return c.clone(), nil
}

func (r *InMemoryRepository) UpdateQuantity(_ context.Context, userID string, productID int64, qty int, now time.Time) (Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return Cart{}, ErrCartNotFound
	}
	i := c.indexOf(productID)
	if i < 0 {
		return Cart{}, ErrItemNotFound
	}
	c = c.clone()
	c.Items[i].Quantity = qty
	c.UpdatedAt = now
	r.carts[userID] = c
	return c.clone(), nil
}

// WithLockedCart runs fn on a copy of the user's cart while holding the store
// lock, and empties the cart if fn succeeds. No other cart operation can
// interleave, which makes checkout atomic for the memory backend.
func (r *InMemoryRepository) WithLockedCart(userID string, now time.Time, fn func(Cart) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return ErrCartNotFound
	}
	if err := fn(c.clone()); err != nil {
		return err
	}
	c.Items = []Item{}
	c.UpdatedAt = now
	r.carts[userID] = c
	return nil
}
