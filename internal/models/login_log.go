package models

import "time"

// LoginLog is one row of the authentication audit trail. The trail lives in
// the logging database, written through the log pool and read through its
// replica.
type LoginLog struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	Email      string    `json:"user_email" db:"user_email"`
	Event      string    `json:"event" db:"event"`
	Success    bool      `json:"success" db:"success"`
	Reason     string    `json:"reason,omitempty" db:"reason"`
	RemoteAddr string    `json:"remote_addr" db:"remote_addr"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
