package product

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Prices are overwritten in place on update, so
// orders keep their own copy of the price paid.
type Product struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Type         string          `json:"type"`
	Category     string          `json:"category"`
	Manufacturer *string         `json:"manufacturer,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Discount     decimal.Decimal `json:"discount"`
	Image        *string         `json:"image,omitempty"`
	Brand        *string         `json:"brand,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// Input is the writable part of a product as sent by an administrator.
// Price is a pointer so that an absent price can be told apart from zero.
type Input struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	Type         string           `json:"type"`
	Category     string           `json:"category"`
	Manufacturer *string          `json:"manufacturer,omitempty"`
	Price        *decimal.Decimal `json:"price"`
	Discount     *decimal.Decimal `json:"discount,omitempty"`
	Image        *string          `json:"image,omitempty"`
	Brand        *string          `json:"brand,omitempty"`
}

// Prices and discounts are stored as NUMERIC(12,2) and NUMERIC(5,2).
const moneyPlaces = 2

var (
	maxDiscount = decimal.NewFromInt(100)
	maxPrice    = decimal.RequireFromString("9999999999.99")
)

// Validate returns every problem with the input keyed by field name.
func (in Input) Validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(in.Description) == "" {
		errs["description"] = "description is required"
	}
	if strings.TrimSpace(in.Type) == "" {
		errs["type"] = "type is required"
	}
	if strings.TrimSpace(in.Category) == "" {
		errs["category"] = "category is required"
	}
	if in.Price == nil {
		errs["price"] = "price is required"
	} else if price := in.Price.Round(moneyPlaces); price.IsNegative() {
		errs["price"] = "price must be >= 0"
	} else if price.GreaterThan(maxPrice) {
		errs["price"] = "price must be <= " + maxPrice.StringFixed(moneyPlaces)
	}
	if in.Discount != nil {
		if d := in.Discount.Round(moneyPlaces); d.IsNegative() || d.GreaterThan(maxDiscount) {
			errs["discount"] = "discount must be between 0 and 100"
		}
	}
	return errs
}

// toProduct applies defaults and rounds money to cents; call only after
// Validate reports nothing.
func (in Input) toProduct(now time.Time) Product {
	discount := decimal.Zero
	if in.Discount != nil {
		discount = in.Discount.Round(moneyPlaces)
	}
	return Product{
		Name:         strings.TrimSpace(in.Name),
		Description:  in.Description,
		Type:         strings.TrimSpace(in.Type),
		Category:     strings.TrimSpace(in.Category),
		Manufacturer: in.Manufacturer,
		Price:        in.Price.Round(moneyPlaces),
		Discount:     discount,
		Image:        in.Image,
		Brand:        in.Brand,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Matches reports whether search occurs, ignoring case, in the name,
// description, category or manufacturer.
func (p Product) Matches(search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	fields := []string{p.Name, p.Description, p.Category}
	if p.Manufacturer != nil {
		fields = append(fields, *p.Manufacturer)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}
