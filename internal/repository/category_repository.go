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

// CategoryRepository defines read access to category data.
type CategoryRepository interface {
	ListActive(ctx context.Context, shopID int64) ([]*models.Category, error)
}

// MySQLCategoryRepository is a MySQL implementation of CategoryRepository.
type MySQLCategoryRepository struct {
	read *database.Pool
}

// NewCategoryRepository creates a new CategoryRepository over the read replica.
func NewCategoryRepository(read *database.Pool) CategoryRepository {
	return &MySQLCategoryRepository{read: read}
}

// ListActive retrieves the active categories of one shop, name order.
func (r *MySQLCategoryRepository) ListActive(ctx context.Context, shopID int64) ([]*models.Category, error) {
	startTime := time.Now()

	query := `
        SELECT id, shop_id, category_name, category_is_active
        FROM ` + constants.TableCategories + `
        WHERE shop_id = ? AND category_is_active = 1
        ORDER BY category_name
    `

	rows, err := r.read.QueryContext(ctx, query, shopID)

	utils.LogDBQuery(query, []interface{}{shopID}, time.Since(startTime), err)

	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Name, &c.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan category row: %w", err)
		}
		categories = append(categories, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate category rows: %w", err)
	}

	return categories, nil
}
