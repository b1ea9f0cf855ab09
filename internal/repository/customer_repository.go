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

// CustomerRepository defines read access to customer data. The order service
// uses it to confirm a referenced customer belongs to the caller's shop.
type CustomerRepository interface {
	GetByID(ctx context.Context, shopID, id int64) (*models.Customer, error)
}

// MySQLCustomerRepository is a MySQL implementation of CustomerRepository.
type MySQLCustomerRepository struct {
	read *database.Pool
}

// NewCustomerRepository creates a new CustomerRepository over the read replica.
func NewCustomerRepository(read *database.Pool) CustomerRepository {
	return &MySQLCustomerRepository{read: read}
}

// GetByID retrieves a customer within the caller's shop.
func (r *MySQLCustomerRepository) GetByID(ctx context.Context, shopID, id int64) (*models.Customer, error) {
	startTime := time.Now()

	query := `
        SELECT id, shop_id, customer_fname, customer_lname, customer_tel,
               customer_email, created_at, updated_at
        FROM ` + constants.TableCustomers + `
        WHERE id = ? AND shop_id = ?
    `

	customer := &models.Customer{}
	err := r.read.QueryRowContext(ctx, query, id, shopID).Scan(
		&customer.ID,
		&customer.ShopID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Tel,
		&customer.Email,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{id, shopID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Customer", id)
		}
		return nil, fmt.Errorf("failed to get customer by ID: %w", err)
	}

	return customer, nil
}
