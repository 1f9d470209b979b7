package cart

import (
	"time"

	"github.com/wichananm65/medicine-store-backend/internal/product"
)

// Item is one cart line. Adding a product already in the cart increments its
// quantity, so a product appears at most once.
type Item struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

type Cart struct {
	UserID    string    `json:"userId"`
	Items     []Item    `json:"items"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemView is a cart line with its product resolved. Product is nil when the
// product has been removed from the catalog since it was added.
type ItemView struct {
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *product.Product `json:"product"`
}

type View struct {
	UserID    string     `json:"userId"`
	Items     []ItemView `json:"items"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (c Cart) indexOf(productID int64) int {
	for i, it := range c.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)
	c.Items = items
	return c
}

// ProductIDs lists the distinct products referenced by the cart.
func (c Cart) ProductIDs() []int64 {
	ids := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}
