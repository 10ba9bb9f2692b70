// Package jwt provides JSON Web Token utilities for the Academy API.
//
// The jwt package handles token generation, validation, and claims
// extraction for authentication. Tokens are RS256-signed.
//
// # Token Generation
//
//	service, err := jwt.NewService(jwt.Config{
//	    PrivateKeyPath: "./keys/private.pem",
//	    Issuer:         "academy",
//	    ExpirationMins: 15,
//	})
//
//	token, err := service.Sign(jwt.Claims{UserID: user.ID, Email: user.Email})
//
// # Token Validation
//
//	claims, err := service.Validate(tokenString)
//	if err != nil {
//	    // Invalid or expired token
//	}
//	userID := claims.UserID
//
// # Test Keys
//
// Tests use in-memory keys instead of key files:
//
//	svc := jwt.NewTestService(privateKey, "academy-test", 15*time.Minute)
package jwt
