package model

import "time"

// DiscountType represents how a coupon's discount value is applied
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage" // value is a percent of the subtotal
	DiscountFixed      DiscountType = "fixed"      // value is an absolute amount
)

// Coupon represents an instructor-owned discount code
type Coupon struct {
	ID                int64        `json:"id"`
	Code              string       `json:"code"`
	Description       *string      `json:"description,omitempty"`
	DiscountType      DiscountType `json:"discount_type"`
	DiscountValue     float64      `json:"discount_value"`
	MinPurchaseAmount float64      `json:"min_purchase_amount"`
	MaxDiscountAmount *float64     `json:"max_discount_amount,omitempty"`
	CourseID          *int64       `json:"course_id,omitempty"` // nil = applies to all courses
	InstructorID      int64        `json:"instructor_id"`
	UsageLimit        *int         `json:"usage_limit,omitempty"` // nil = unlimited
	UsageCount        int          `json:"usage_count"`
	UsagePerUserLimit int          `json:"usage_per_user_limit"`
	IsActive          bool         `json:"is_active"`
	ValidFrom         time.Time    `json:"valid_from"`
	ValidUntil        *time.Time   `json:"valid_until,omitempty"`
}

// Exhausted returns true if the coupon's usage limit has been reached
func (c *Coupon) Exhausted() bool {
	return c.UsageLimit != nil && c.UsageCount >= *c.UsageLimit
}
