package adapters

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"lepatage-store/internal/core/logger"
	"lepatage-store/internal/features/catalog/domain"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SQLiteProductRepository reads products from the storefront "products" table.
type SQLiteProductRepository struct {
	db *sql.DB
}

// NewSQLiteProductRepository creates a repository over an open database.
func NewSQLiteProductRepository(db *sql.DB) *SQLiteProductRepository {
	return &SQLiteProductRepository{db: db}
}

// GetProduct loads a single product by id.
func (r *SQLiteProductRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const q = `
		SELECT id, name, price, sale_price, COALESCE(images, ''), COALESCE(in_stock, 1)
		FROM   products
		WHERE  id = ?`

	var (
		p         domain.Product
		price     float64
		salePrice sql.NullFloat64
		images    string
		inStock   int64
	)

	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &price, &salePrice, &images, &inStock)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", domain.ErrProductNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get product %d: %w", id, err)
	}

	// Catalog prices are stored as REAL; round to minor units on the way in.
	p.Price = decimal.NewFromFloat(price).Round(2)
	// A zero sale price is treated as "no sale", matching the storefront.
	if salePrice.Valid && salePrice.Float64 > 0 {
		sale := decimal.NewFromFloat(salePrice.Float64).Round(2)
		if sale.GreaterThan(p.Price) {
			logger.Get().Warn("Sale price above base price",
				zap.Int64("product_id", p.ID),
				zap.String("price", p.Price.String()),
				zap.String("sale_price", sale.String()),
			)
		}
		p.SalePrice = &sale
	}
	p.Images = decodeImages(p.ID, images)
	p.InStock = inStock != 0

	return &p, nil
}

// decodeImages parses the JSON array stored in the images column.
func decodeImages(productID int64, raw string) []string {
	if raw == "" {
		return nil
	}

	var images []string
	if err := json.Unmarshal([]byte(raw), &images); err != nil {
		logger.Get().Warn("Invalid product images column",
			zap.Int64("product_id", productID),
			zap.Error(err),
		)
		return nil
	}
	return images
}
