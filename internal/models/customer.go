package models

import "time"

// Customer represents a patient or walk-in client of one shop.
type Customer struct {
	ID        int64     `json:"id" db:"id"`
	ShopID    int64     `json:"shop_id" db:"shop_id"`
	FirstName string    `json:"customer_fname" db:"customer_fname"`
	LastName  string    `json:"customer_lname" db:"customer_lname"`
	Tel       string    `json:"customer_tel" db:"customer_tel"`
	Email     string    `json:"customer_email" db:"customer_email"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
