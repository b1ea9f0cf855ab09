package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/utils"
)

// ShopRepository defines read access to shop data.
type ShopRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Shop, error)
}

// MySQLShopRepository is a MySQL implementation of ShopRepository.
type MySQLShopRepository struct {
	read *database.Pool
}

// NewShopRepository creates a new ShopRepository over the read replica.
func NewShopRepository(read *database.Pool) ShopRepository {
	return &MySQLShopRepository{read: read}
}

// GetByID retrieves an active shop by ID.
func (r *MySQLShopRepository) GetByID(ctx context.Context, id int64) (*models.Shop, error) {
	startTime := time.Now()

	query := `
        SELECT id, shop_mother_id, shop_name, shop_address, shop_tel,
               shop_is_active, created_at, updated_at
        FROM ` + constants.TableShops + `
        WHERE id = ? AND shop_is_active = 1
    `

	shop := &models.Shop{}
	err := r.read.QueryRowContext(ctx, query, id).Scan(
		&shop.ID,
		&shop.ShopMotherID,
		&shop.Name,
		&shop.Address,
		&shop.Tel,
		&shop.IsActive,
		&shop.CreatedAt,
		&shop.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Shop", id)
		}
		return nil, fmt.Errorf("failed to get shop by ID: %w", err)
	}

	return shop, nil
}
