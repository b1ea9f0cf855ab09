package models

import "time"

// Order statuses.
const (
	OrderStatusDraft     = "draft"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order represents a sale or treatment booking inside one shop. All order
// queries are scoped by shop_id taken from the caller's token, never from
// the request body.
type Order struct {
	ID           int64     `json:"id" db:"id"`
	ShopID       int64     `json:"shop_id" db:"shop_id"`
	CustomerID   int64     `json:"customer_id" db:"customer_id"`
	Code         string    `json:"order_code" db:"order_code"`
	Date         time.Time `json:"order_date" db:"order_date"`
	Total        float64   `json:"order_total" db:"order_total"`
	Discount     float64   `json:"order_discount" db:"order_discount"`
	Net          float64   `json:"order_net" db:"order_net"`
	Status       string    `json:"order_status" db:"order_status"`
	CustomerName string    `json:"customer_name,omitempty" db:"customer_name"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// OrderSearchRequest is the payload of POST /order/search. Empty filters
// match everything in the caller's shop.
type OrderSearchRequest struct {
	CustomerID *int64  `json:"customer_id" validate:"omitempty,gt=0"`
	Code       *string `json:"order_code" validate:"omitempty,max=50"`
	Status     *string `json:"order_status" validate:"omitempty,oneof=draft confirmed paid cancelled"`
	DateFrom   *string `json:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo     *string `json:"date_to" validate:"omitempty,datetime=2006-01-02"`
	Page       int     `json:"page" validate:"omitempty,gte=1"`
	PageSize   int     `json:"page_size" validate:"omitempty,gte=1,lte=100"`
}

// OrderSearchResponse is the paginated result of an order search.
type OrderSearchResponse struct {
	Orders   []*Order `json:"orders"`
	Total    int64    `json:"total"`
	Page     int      `json:"page"`
	PageSize int      `json:"page_size"`
}

// CreateOrderRequest is the payload of POST /order.
type CreateOrderRequest struct {
	CustomerID int64   `json:"customer_id" validate:"required,gt=0"`
	Code       string  `json:"order_code" validate:"required,max=50"`
	Date       string  `json:"order_date" validate:"required,datetime=2006-01-02"`
	Total      float64 `json:"order_total" validate:"gte=0"`
	Discount   float64 `json:"order_discount" validate:"gte=0"`
	Status     string  `json:"order_status" validate:"omitempty,oneof=draft confirmed paid cancelled"`
}

// UpdateOrderRequest is the payload of PUT /order/{id}. Absent fields keep
// their stored value.
type UpdateOrderRequest struct {
	CustomerID *int64   `json:"customer_id" validate:"omitempty,gt=0"`
	Date       *string  `json:"order_date" validate:"omitempty,datetime=2006-01-02"`
	Total      *float64 `json:"order_total" validate:"omitempty,gte=0"`
	Discount   *float64 `json:"order_discount" validate:"omitempty,gte=0"`
	Status     *string  `json:"order_status" validate:"omitempty,oneof=draft confirmed paid cancelled"`
}
