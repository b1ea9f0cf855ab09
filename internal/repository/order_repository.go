package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"github.com/apsx/clinic-api/internal/constants"
	"github.com/apsx/clinic-api/internal/database"
	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/utils"
)

// OrderRepository defines methods for interacting with order data. Every
// method is scoped by shop_id so a token for one shop can never reach
// another shop's orders.
type OrderRepository interface {
	Search(ctx context.Context, shopID int64, req *models.OrderSearchRequest) ([]*models.Order, int64, error)
	GetByID(ctx context.Context, shopID, id int64) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) error
	Update(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, shopID, id int64) error
}

// MySQLOrderRepository is a MySQL implementation of OrderRepository.
type MySQLOrderRepository struct {
	write *database.Pool
	read  *database.Pool
}

// NewOrderRepository creates a new OrderRepository over the main pool and
// its read replica.
func NewOrderRepository(write, read *database.Pool) OrderRepository {
	return &MySQLOrderRepository{
		write: write,
		read:  read,
	}
}

// buildSearchFilter turns the optional search fields into a WHERE clause
// fragment and its arguments. The shop filter is always first.
func buildSearchFilter(shopID int64, req *models.OrderSearchRequest) (string, []interface{}) {
	conditions := []string{"o.shop_id = ?"}
	args := []interface{}{shopID}

	if req.CustomerID != nil {
		conditions = append(conditions, "o.customer_id = ?")
		args = append(args, *req.CustomerID)
	}
	if req.Code != nil && *req.Code != "" {
		conditions = append(conditions, "o.order_code = ?")
		args = append(args, *req.Code)
	}
	if req.Status != nil && *req.Status != "" {
		conditions = append(conditions, "o.order_status = ?")
		args = append(args, *req.Status)
	}
	if req.DateFrom != nil && *req.DateFrom != "" {
		conditions = append(conditions, "o.order_date >= ?")
		args = append(args, *req.DateFrom)
	}
	if req.DateTo != nil && *req.DateTo != "" {
		conditions = append(conditions, "o.order_date <= ?")
		args = append(args, *req.DateTo)
	}

	return strings.Join(conditions, " AND "), args
}

// Search retrieves orders matching the filters, newest first, along with the
// total match count.
func (r *MySQLOrderRepository) Search(ctx context.Context, shopID int64, req *models.OrderSearchRequest) ([]*models.Order, int64, error) {
	where, args := buildSearchFilter(shopID, req)

	page := req.Page
	if page < 1 {
		page = constants.DefaultPage
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = constants.DefaultPageSize
	}
	if pageSize > constants.MaxPageSize {
		pageSize = constants.MaxPageSize
	}
	offset := (page - 1) * pageSize

	startTime := time.Now()

	countQuery := fmt.Sprintf(`
        SELECT COUNT(*)
        FROM `+constants.TableOrders+` o
        WHERE %s
    `, where)

	var total int64
	err := r.read.QueryRowContext(ctx, countQuery, args...).Scan(&total)

	utils.LogDBQuery(countQuery, args, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	startTime = time.Now()

	query := fmt.Sprintf(`
        SELECT o.id, o.shop_id, o.customer_id, o.order_code, o.order_date,
               o.order_total, o.order_discount, o.order_net, o.order_status,
               CONCAT(c.customer_fname, ' ', c.customer_lname),
               o.created_at, o.updated_at
        FROM `+constants.TableOrders+` o
        JOIN `+constants.TableCustomers+` c ON c.id = o.customer_id
        WHERE %s
        ORDER BY o.order_date DESC, o.id DESC
        LIMIT ? OFFSET ?
    `, where)

	queryArgs := append(append([]interface{}{}, args...), pageSize, offset)
	rows, err := r.read.QueryContext(ctx, query, queryArgs...)

	utils.LogDBQuery(query, queryArgs, time.Since(startTime), err)

	if err != nil {
		return nil, 0, fmt.Errorf("failed to search orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*models.Order, 0, pageSize)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate order rows: %w", err)
	}

	return orders, total, nil
}

// scanOrder reads one joined order row.
func scanOrder(rows *sql.Rows) (*models.Order, error) {
	var o models.Order
	if err := rows.Scan(
		&o.ID,
		&o.ShopID,
		&o.CustomerID,
		&o.Code,
		&o.Date,
		&o.Total,
		&o.Discount,
		&o.Net,
		&o.Status,
		&o.CustomerName,
		&o.CreatedAt,
		&o.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to scan order row: %w", err)
	}
	return &o, nil
}

// GetByID retrieves a single order within the caller's shop.
func (r *MySQLOrderRepository) GetByID(ctx context.Context, shopID, id int64) (*models.Order, error) {
	startTime := time.Now()

	query := `
        SELECT o.id, o.shop_id, o.customer_id, o.order_code, o.order_date,
               o.order_total, o.order_discount, o.order_net, o.order_status,
               CONCAT(c.customer_fname, ' ', c.customer_lname),
               o.created_at, o.updated_at
        FROM ` + constants.TableOrders + ` o
        JOIN ` + constants.TableCustomers + ` c ON c.id = o.customer_id
        WHERE o.id = ? AND o.shop_id = ?
    `

	o := &models.Order{}
	err := r.read.QueryRowContext(ctx, query, id, shopID).Scan(
		&o.ID,
		&o.ShopID,
		&o.CustomerID,
		&o.Code,
		&o.Date,
		&o.Total,
		&o.Discount,
		&o.Net,
		&o.Status,
		&o.CustomerName,
		&o.CreatedAt,
		&o.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{id, shopID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Order", id)
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	return o, nil
}

// Create inserts a new order. The net amount is computed by the service
// before insertion.
func (r *MySQLOrderRepository) Create(ctx context.Context, order *models.Order) error {
	startTime := time.Now()

	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now

	query := `
        INSERT INTO ` + constants.TableOrders + ` (shop_id, customer_id, order_code, order_date,
                            order_total, order_discount, order_net, order_status,
                            created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	result, err := r.write.ExecContext(
		ctx,
		query,
		order.ShopID,
		order.CustomerID,
		order.Code,
		order.Date,
		order.Total,
		order.Discount,
		order.Net,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{order.ShopID, order.CustomerID, order.Code, order.Date, order.Total, order.Discount, order.Net, order.Status},
		time.Since(startTime),
		err,
	)

	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) {
			switch mysqlErr.Number {
			case constants.MySQLErrDuplicateEntry:
				return utils.NewDuplicateError("Order", "order_code", order.Code)
			case constants.MySQLErrNoReferencedRow:
				return utils.NewBadRequestError("Referenced customer does not exist")
			}
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted order ID: %w", err)
	}
	order.ID = id

	log.Info().
		Int64("order_id", order.ID).
		Int64("shop_id", order.ShopID).
		Str("order_code", order.Code).
		Msg("Order created")

	return nil
}

// Update persists the mutable fields of an order within the caller's shop.
func (r *MySQLOrderRepository) Update(ctx context.Context, order *models.Order) error {
	startTime := time.Now()

	order.UpdatedAt = time.Now()

	query := `
        UPDATE ` + constants.TableOrders + `
        SET customer_id = ?, order_date = ?, order_total = ?, order_discount = ?,
            order_net = ?, order_status = ?, updated_at = ?
        WHERE id = ? AND shop_id = ?
    `

	result, err := r.write.ExecContext(
		ctx,
		query,
		order.CustomerID,
		order.Date,
		order.Total,
		order.Discount,
		order.Net,
		order.Status,
		order.UpdatedAt,
		order.ID,
		order.ShopID,
	)

	utils.LogDBQuery(
		query,
		[]interface{}{order.CustomerID, order.Date, order.Total, order.Discount, order.Net, order.Status, order.UpdatedAt, order.ID, order.ShopID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == constants.MySQLErrNoReferencedRow {
			return utils.NewBadRequestError("Referenced customer does not exist")
		}
		return fmt.Errorf("failed to update order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("Order", order.ID)
	}

	return nil
}

// Delete removes an order within the caller's shop.
func (r *MySQLOrderRepository) Delete(ctx context.Context, shopID, id int64) error {
	startTime := time.Now()

	query := `
        DELETE FROM ` + constants.TableOrders + `
        WHERE id = ? AND shop_id = ?
    `

	result, err := r.write.ExecContext(ctx, query, id, shopID)

	utils.LogDBQuery(
		query,
		[]interface{}{id, shopID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return utils.NewNotFoundError("Order", id)
	}

	log.Info().
		Int64("order_id", id).
		Int64("shop_id", shopID).
		Msg("Order deleted")

	return nil
}
