// Package models defines the data structures of the clinic domain and the
// request/response payloads of the HTTP API.
package models

import "time"

// UserTypeStaff marks tokens issued to staff accounts. Other account kinds
// authenticate through separate channels and never reach this API.
const UserTypeStaff = 1

// User represents a staff account. The password digest never leaves the
// repository layer; handlers work with SanitizedUser.
type User struct {
	ID              int64     `json:"id" db:"id"`
	Email           string    `json:"user_email" db:"user_email"`
	Password        string    `json:"-" db:"user_password"`
	FirstName       string    `json:"user_fname" db:"user_fname"`
	LastName        string    `json:"user_lname" db:"user_lname"`
	Tel             string    `json:"user_tel" db:"user_tel"`
	IsActive        bool      `json:"user_is_active" db:"user_is_active"`
	OTPURL          *string   `json:"-" db:"user_otp_url"`
	PasswordVersion int64     `json:"-" db:"password_version"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SanitizedUser is the public projection of a User. It carries no secrets.
type SanitizedUser struct {
	ID        int64     `json:"id"`
	Email     string    `json:"user_email"`
	FirstName string    `json:"user_fname"`
	LastName  string    `json:"user_lname"`
	Tel       string    `json:"user_tel"`
	IsActive  bool      `json:"user_is_active"`
	HasOTP    bool      `json:"has_otp"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Sanitize converts a User to its public projection.
func (u *User) Sanitize() *SanitizedUser {
	return &SanitizedUser{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Tel:       u.Tel,
		IsActive:  u.IsActive,
		HasOTP:    u.OTPURL != nil && *u.OTPURL != "",
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Membership describes a user's accepted place in one shop, joined from
// user_shops, shops and shop_roles.
type Membership struct {
	ShopID         int64   `json:"shop_id" db:"shop_id"`
	ShopMotherID   int64   `json:"shop_mother_id" db:"shop_mother_id"`
	ShopName       string  `json:"shop_name" db:"shop_name"`
	RoleID         int64   `json:"role_id" db:"role_id"`
	ShopRoleID     int64   `json:"shop_role_id" db:"shop_role_id"`
	ShopRoleName   string  `json:"shop_role_name" db:"sr_name"`
	DiscountTypeID int64   `json:"sr_discount_type_id" db:"sr_discount_type_id"`
	Discount       float64 `json:"sr_discount" db:"sr_discount"`
}

// LoginRequest is the payload of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	OTPCode  string `json:"otp_code" validate:"omitempty,len=6,numeric"`
}

// LoginResponse is the success payload of POST /auth/login.
type LoginResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	ExpiresAt    time.Time      `json:"expires_at"`
	User         *SanitizedUser `json:"user"`
	Shops        []*Membership  `json:"shops"`
}

// RefreshResponse is the success payload of POST /auth/refresh. Each refresh
// rotates the refresh token alongside the fresh access token.
type RefreshResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// ChangePasswordRequest is the payload of POST /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6"`
}

// DisableOTPRequest is the payload of DELETE /auth/otp. The current password
// is re-verified before the second factor comes off the account.
type DisableOTPRequest struct {
	Password string `json:"password" validate:"required"`
}

// EnrollOTPResponse is the success payload of POST /auth/otp. The URL is
// shown to the user once, for loading into an authenticator app.
type EnrollOTPResponse struct {
	OTPURL string `json:"otp_url"`
}

// UpdateUserRequest is the payload of PUT /user. All fields are optional;
// absent fields keep their stored value.
type UpdateUserRequest struct {
	FirstName *string `json:"user_fname" validate:"omitempty,min=1,max=100"`
	LastName  *string `json:"user_lname" validate:"omitempty,min=1,max=100"`
	Tel       *string `json:"user_tel" validate:"omitempty,max=20"`
}
