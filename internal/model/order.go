package model

import "time"

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
)

// Order represents a purchase. Guest orders carry a GuestEmail instead of a
// UserID.
type Order struct {
	ID          int64       `json:"id"`
	OrderNumber string      `json:"order_number"`
	UserID      *int64      `json:"user_id,omitempty"`
	GuestEmail  *string     `json:"guest_email,omitempty"`
	Status      OrderStatus `json:"status"`
	Subtotal    float64     `json:"subtotal"`
	Discount    float64     `json:"discount"`
	Total       float64     `json:"total"`
	Currency    string      `json:"currency"`
	CouponCode  *string     `json:"coupon_code,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// IsGuest returns true if the order was placed without an account
func (o *Order) IsGuest() bool {
	return o.UserID == nil
}

// OrderItem represents one course line on an order
type OrderItem struct {
	ID        int64   `json:"id"`
	OrderID   int64   `json:"order_id"`
	CourseID  int64   `json:"course_id"`
	ItemName  string  `json:"item_name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}
