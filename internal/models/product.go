package models

import "time"

// Product represents a sellable item or treatment service.
type Product struct {
	ID         int64     `json:"id" db:"id"`
	ShopID     int64     `json:"shop_id" db:"shop_id"`
	CategoryID int64     `json:"category_id" db:"category_id"`
	Name       string    `json:"product_name" db:"product_name"`
	Price      float64   `json:"product_price" db:"product_price"`
	IsActive   bool      `json:"product_is_active" db:"product_is_active"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
