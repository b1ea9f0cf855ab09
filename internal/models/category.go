package models

// Category groups products for the storefront listings. Categories belong to
// a single shop and are never shared across shops.
type Category struct {
	ID       int64  `json:"id" db:"id"`
	ShopID   int64  `json:"shop_id" db:"shop_id"`
	Name     string `json:"category_name" db:"category_name"`
	IsActive bool   `json:"category_is_active" db:"category_is_active"`
}
