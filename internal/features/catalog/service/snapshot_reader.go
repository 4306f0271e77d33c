package service

import (
	"context"

	"lepatage-store/internal/features/catalog/domain"
	"lepatage-store/internal/features/catalog/ports"
)

// SnapshotReader resolves products into the price snapshots frozen onto order items.
type SnapshotReader struct {
	products ports.ProductReader
}

// NewSnapshotReader creates a SnapshotReader over a product source.
func NewSnapshotReader(products ports.ProductReader) *SnapshotReader {
	return &SnapshotReader{products: products}
}

// ResolveProduct returns the current name, primary image and effective price of a product.
// It fails with domain.ErrProductNotFound when the id does not resolve.
func (r *SnapshotReader) ResolveProduct(ctx context.Context, productID int64) (domain.Snapshot, error) {
	product, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return product.Snapshot(), nil
}
