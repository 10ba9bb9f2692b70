// Package helpers provides common test utilities for the Academy API.
//
// # JWT Helpers
//
// Generate tokens with in-memory keys:
//
//	h := helpers.NewJWTHelper(t)
//	token := h.GenerateToken(t, user)
//	headers := h.TokenHeaders(t, user)
//
// # HTTP Requests
//
// Build requests fluently:
//
//	req := helpers.NewRequest(t, "POST", "/api/courses").
//	    WithBody(payload).
//	    WithAuth(h, user).
//	    Build()
//
// # Database Assertions
//
//	helpers.AssertRowExists(t, tdb.DB, "users", user.ID)
//	helpers.AssertRowCount(t, tdb.DB, "orders", 1)
package helpers
