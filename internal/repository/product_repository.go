package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/utils"
)

// ProductRepository defines read access to product data for the
// machine-to-machine listings.
type ProductRepository interface {
	ListActive(ctx context.Context, shopID int64, limit int) ([]*models.Product, error)
}

// MySQLProductRepository is a MySQL implementation of ProductRepository.
type MySQLProductRepository struct {
	read *database.Pool
}

// NewProductRepository creates a new ProductRepository over the read replica.
func NewProductRepository(read *database.Pool) ProductRepository {
	return &MySQLProductRepository{read: read}
}

// ListActive retrieves the active products of a shop, name order.
func (r *MySQLProductRepository) ListActive(ctx context.Context, shopID int64, limit int) ([]*models.Product, error) {
	startTime := time.Now()

	query := `
        SELECT id, shop_id, category_id, product_name, product_price,
               product_is_active, created_at, updated_at
        FROM ` + constants.TableProducts + `
        WHERE shop_id = ? AND product_is_active = 1
        ORDER BY product_name
        LIMIT ?
    `

	rows, err := r.read.QueryContext(ctx, query, shopID, limit)

	utils.LogDBQuery(
		query,
		[]interface{}{shopID, limit},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := make([]*models.Product, 0, limit)
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID,
			&p.ShopID,
			&p.CategoryID,
			&p.Name,
			&p.Price,
			&p.IsActive,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan product row: %w", err)
		}
		products = append(products, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate product rows: %w", err)
	}

	return products, nil
}
