package models

import "time"

// Shop represents a clinic branch. Branches belonging to the same legal
// entity share a mother shop through ShopMotherID.
type Shop struct {
	ID           int64     `json:"id" db:"id"`
	ShopMotherID int64     `json:"shop_mother_id" db:"shop_mother_id"`
	Name         string    `json:"shop_name" db:"shop_name"`
	Address      string    `json:"shop_address" db:"shop_address"`
	Tel          string    `json:"shop_tel" db:"shop_tel"`
	IsActive     bool      `json:"shop_is_active" db:"shop_is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// ShopRole describes what a user may do inside a shop and which discount
// applies to their bookings.
type ShopRole struct {
	ID             int64   `json:"id" db:"id"`
	Name           string  `json:"sr_name" db:"sr_name"`
	DiscountTypeID int64   `json:"sr_discount_type_id" db:"sr_discount_type_id"`
	Discount       float64 `json:"sr_discount" db:"sr_discount"`
}

// Invite states of a user_shops row. Only accepted rows grant access.
const (
	InviteStatePending  = 1
	InviteStateAccepted = 2
	InviteStateDeclined = 3
)

// DefaultShopRoles returns the base roles every installation starts with.
func DefaultShopRoles() []ShopRole {
	return []ShopRole{
		{Name: "owner", DiscountTypeID: 0, Discount: 0},
		{Name: "manager", DiscountTypeID: 0, Discount: 0},
		{Name: "staff", DiscountTypeID: 0, Discount: 0},
	}
}
