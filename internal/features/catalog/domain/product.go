package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a product identifier does not resolve.
var ErrProductNotFound = errors.New("product not found")

// Product is the subset of a catalog entry the order engine reads.
type Product struct {
	// ID is the catalog row identifier.
	ID int64 `json:"id"`
	// Name is the display name.
	Name string `json:"name"`
	// Price is the base unit price.
	Price decimal.Decimal `json:"price"`
	// SalePrice, when set, overrides Price. It is never above Price.
	SalePrice *decimal.Decimal `json:"sale_price,omitempty"`
	// Images lists image references; the first one is the primary image.
	Images []string `json:"images"`
	// InStock is informational only; orders do not touch inventory.
	InStock bool `json:"in_stock"`
}

// EffectivePrice is the sale price when present, otherwise the base price.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// PrimaryImage returns the first image reference, or "" when there is none.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// Snapshot is the price, name and image of a product captured at order time.
type Snapshot struct {
	ProductID int64
	Name      string
	Image     string
	UnitPrice decimal.Decimal
}

// Snapshot captures the product's current effective price, name and primary image.
func (p Product) Snapshot() Snapshot {
	return Snapshot{
		ProductID: p.ID,
		Name:      p.Name,
		Image:     p.PrimaryImage(),
		UnitPrice: p.EffectivePrice(),
	}
}
