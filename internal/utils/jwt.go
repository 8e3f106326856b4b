package utils

import (
	"time" // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
	"github.com/google/uuid"       // Session id generation
)

// SessionTTL is how long a session token stays valid
const SessionTTL = 24 * time.Hour

// JWT Claims
type Claims struct {
	UserID               int `json:"user_id"` // Custom claim for user ID
	jwt.RegisteredClaims     // Standard JWT claims, ID carries the session id
}

// GenerateSessionToken creates a signed session token for a user ID.
// The returned session id (jti) keys the server-side session record so
// logout can revoke the token before it expires.
func GenerateSessionToken(userID int, secret string) (token string, sessionID string, err error) {
	sessionID = uuid.NewString() // Server-side session key
	// Set token claims
	claims := Claims{
		UserID: userID, // Custom claim for user ID
		// Standard claims
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,                                     // Session id (jti)
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(SessionTTL)), // Token expires with the session
			IssuedAt:  jwt.NewNumericDate(time.Now()),                // Issued at current time
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	token, err = t.SignedString([]byte(secret))            // Sign the token with the secret
	return token, sessionID, err
}

// ParseSessionToken parses and validates a session token string
func ParseSessionToken(tokenStr, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	})
	// Check for parsing errors
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	// Validate token and extract claims
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil // Return claims if valid
	}
	// Return error if token is invalid
	return nil, jwt.ErrSignatureInvalid
}
