package ports

import (
	"context"

	"lepatage-store/internal/features/catalog/domain"
)

// ProductReader resolves catalog products by identifier.
// This is a Secondary Port (Driven Port).
type ProductReader interface {
	// GetProduct returns the product, or domain.ErrProductNotFound.
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}
