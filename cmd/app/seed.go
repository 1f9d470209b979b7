package main

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wichananm65/medicine-store-backend/internal/product"
)

func ptrString(s string) *string { return &s }

// sampleCatalog seeds the memory backend so the storefront has something to
// show.
func sampleCatalog(now time.Time) []product.Product {
	return []product.Product{
		{
			ID:           1,
			Name:         "Paracetamol 500mg",
			Description:  "Relief from mild to moderate pain and fever",
			Type:         "Tablet",
			Category:     "Pain Relief",
			Manufacturer: ptrString("GSK"),
			Price:        decimal.RequireFromString("35.00"),
			Discount:     decimal.NewFromInt(10),
			Image:        ptrString("/images/paracetamol.png"),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:           2,
			Name:         "Cetirizine 10mg",
			Description:  "Antihistamine for hay fever and allergies",
			Type:         "Tablet",
			Category:     "Allergy",
			Manufacturer: ptrString("Cipla"),
			Price:        decimal.RequireFromString("48.50"),
			Discount:     decimal.Zero,
			Image:        ptrString("/images/cetirizine.png"),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		{
			ID:          3,
			Name:        "Cough Syrup 100ml",
			Description: "Soothing syrup for dry cough",
			Type:        "Syrup",
			Category:    "Cold & Flu",
			Price:       decimal.RequireFromString("89.00"),
			Discount:    decimal.NewFromInt(5),
			Image:       ptrString("/images/cough-syrup.png"),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
		{
			ID:          4,
			Name:        "Vitamin C 1000mg",
			Description: "Daily immune support, effervescent",
			Type:        "Effervescent Tablet",
			Category:    "Vitamins",
			Brand:       ptrString("/brands/redoxon.png"),
			Price:       decimal.RequireFromString("120.00"),
			Discount:    decimal.Zero,
			Image:       ptrString("/images/vitamin-c.png"),
			CreatedAt:   now,
			UpdatedAt:   now,
		},
	}
}
