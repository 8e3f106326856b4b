package api

import (
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"anonmsg/internal/service" // Account operations
	"anonmsg/internal/session" // Session store

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for signup
type SignupRequest struct {
	Username string `json:"username"` // Desired account name
	Password string `json:"password"` // Plain password, hashed by the service
	Ref      string `json:"ref"`      // Optional referral code
}

// Request struct for login
type LoginRequest struct {
	Username string `json:"username"` // Account name
	Password string `json:"password"` // Plain password
}

// SignupHandler creates an account and establishes a session for it
func SignupHandler(svc *service.AccountService, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		// Referral code may also arrive as a query parameter
		ref := req.Ref
		if ref == "" {
			ref = c.Query("ref")
		}
		user, err := svc.Signup(req.Username, req.Password, ref) // Create the account
		if err != nil {
			respondErr(c, err) // Map to status and return
			return
		}
		token, err := sessions.Create(c.Request.Context(), user.ID) // Establish a session
		if err != nil {
			respondErr(c, err)
			return
		}
		// Return the new account's public identifiers and the session token
		c.JSON(http.StatusCreated, gin.H{
			"message":       "account created",
			"userId":        user.ID,
			"recipientLink": service.RecipientLink(user.RecipientID),
			"referralCode":  user.ReferralCode,
			"token":         token,
		})
	}
}

// LoginHandler authenticates a user and establishes a session
func LoginHandler(svc *service.AccountService, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		user, err := svc.Login(req.Username, req.Password) // Verify credentials
		if err != nil {
			respondErr(c, err) // Uniform message for unknown user and wrong password
			return
		}
		token, err := sessions.Create(c.Request.Context(), user.ID) // Establish a session
		if err != nil {
			respondErr(c, err)
			return
		}
		// Return the account's public identifiers and the session token
		c.JSON(http.StatusOK, gin.H{
			"recipientLink": service.RecipientLink(user.RecipientID),
			"referralCode":  user.ReferralCode,
			"token":         token,
		})
	}
}

// LogoutHandler revokes the caller's session if one is presented
func LogoutHandler(sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Revoke only when a bearer token is actually present
		if strings.HasPrefix(authHeader, "Bearer ") {
			token := strings.TrimPrefix(authHeader, "Bearer ")
			_ = sessions.Destroy(c.Request.Context(), token) // Revoking an unknown token is a no-op
		}
		c.JSON(http.StatusOK, gin.H{"ok": true}) // Logout always succeeds
	}
}
