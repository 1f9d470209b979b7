package order

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/medicine-store-backend/internal/cart"
	"github.com/wichananm65/medicine-store-backend/internal/product"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentSuccess PaymentStatus = "Success"
	PaymentFailed  PaymentStatus = "Failed"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentSuccess, PaymentFailed:
		return true
	}
	return false
}

type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

var (
	ErrNotFound           = errors.New("order not found")
	ErrCartNotFound       = cart.ErrCartNotFound
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrProductUnavailable = errors.New("a product in the cart is no longer available")
	ErrInvalidSignature   = errors.New("invalid payment signature")
)

// LineItem freezes the unit price at checkout; later catalog price changes do
// not affect existing orders.
type LineItem struct {
	ProductID int64            `json:"productId"`
	Quantity  int              `json:"quantity"`
	Price     decimal.Decimal  `json:"price"`
	Product   *product.Product `json:"product,omitempty"`
}

type Order struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"userId"`
	Items           []LineItem      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PaymentStatus   PaymentStatus   `json:"paymentStatus"`
	OrderStatus     Status          `json:"orderStatus"`
	PaymentID       *string         `json:"paymentId,omitempty"`
	ShippingAddress *string         `json:"shippingAddress,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Receipt is what checkout hands back to the storefront.
type Receipt struct {
	OrderID     int64           `json:"orderId"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (o Order) ProductIDs() []int64 {
	ids := make([]int64, 0, len(o.Items))
	for _, it := range o.Items {
		ids = append(ids, it.ProductID)
	}
	return ids
}

func (o Order) clone() Order {
	items := make([]LineItem, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}

// NewFromCart prices every cart line at the current catalog price and totals
// the order. prices holds the unit price of every product that still exists.
func NewFromCart(c cart.Cart, prices map[int64]decimal.Decimal, address *string, now time.Time) (Order, error) {
	if len(c.Items) == 0 {
		return Order{}, ErrEmptyCart
	}

	o := Order{
		UserID:          c.UserID,
		Items:           make([]LineItem, 0, len(c.Items)),
		TotalAmount:     decimal.Zero,
		PaymentStatus:   PaymentPending,
		OrderStatus:     StatusPending,
		ShippingAddress: address,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	for _, it := range c.Items {
		price, ok := prices[it.ProductID]
		if !ok {
			return Order{}, ErrProductUnavailable
		}
		o.Items = append(o.Items, LineItem{ProductID: it.ProductID, Quantity: it.Quantity, Price: price})
		o.TotalAmount = o.TotalAmount.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return o, nil
}
