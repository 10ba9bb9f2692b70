// Package model defines domain entities for the Academy API.
//
// The model package contains the struct definitions the rest of the
// application shares: accounts, the course catalog, commerce records, and
// learner progress. The authoritative storage shape for these entities lives
// in internal/schema; the structs here mirror those declarations.
//
// # Domain Entities
//
//   - User: account with authentication credentials and roles
//   - Course: catalog entry owned by an instructor, addressed by slug
//   - Coupon: instructor-owned discount code
//   - ShoppingCart / CartItem: pre-checkout state for users and guests
//   - Order / OrderItem: completed and pending purchases
//   - Enrollment: a user's membership in a course
//   - Certificate: completion record, optionally rendered to PDF
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Course struct {
//	    ID    int64  `json:"id"`
//	    Title string `json:"title"`
//	    Slug  string `json:"slug"`
//	}
package model
