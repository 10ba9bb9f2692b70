package model

import "time"

// ShoppingCart represents pre-checkout state for a user or a guest session.
// Exactly one of UserID and SessionID is normally set.
type ShoppingCart struct {
	ID        int64      `json:"id"`
	UserID    *int64     `json:"user_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// CartItem represents one course in a shopping cart with a price snapshot
type CartItem struct {
	ID        int64     `json:"id"`
	CartID    int64     `json:"cart_id"`
	CourseID  int64     `json:"course_id"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	CouponID  *int64    `json:"coupon_id,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}
