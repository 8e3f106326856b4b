package api

import (
	"net/http" // HTTP status codes
	"strconv"  // Query parameter parsing

	"anonmsg/internal/service" // Account operations
	"anonmsg/internal/session" // Session store

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for theme updates
type UpdateThemeRequest struct {
	Theme string `json:"theme"` // dark or light
}

// Request struct for link toggling
type ToggleLinkRequest struct {
	Active *bool `json:"active"` // nil means activate, matching the historical default
}

// Request struct for password changes
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"` // Must match the stored hash
	NewPassword     string `json:"newPassword"`     // Replacement password
}

// Request struct for account deletion
type DeleteAccountRequest struct {
	Password string `json:"password"` // Re-verified before the cascade delete
}

// MessagesHandler returns the authenticated user's inbox
func MessagesHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")                           // Set by the session middleware
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0")) // Optional page size
		c.JSON(http.StatusOK, svc.ListMessages(userID, limit)) // Most recent first
	}
}

// InfoHandler returns the authenticated user's profile with reward totals
func InfoHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")            // Set by the session middleware
		profile, err := svc.AccountInfo(userID) // Profile plus derived rewards
		if err != nil {
			respondErr(c, err) // Session resolved but the account is gone
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// UpdateThemeHandler sets the account theme
func UpdateThemeHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID") // Set by the session middleware
		var req UpdateThemeRequest   // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := svc.UpdateTheme(userID, req.Theme); err != nil {
			respondErr(c, err) // Only dark and light are valid
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "theme updated"})
	}
}

// ToggleLinkHandler marks the recipient link active or inactive
func ToggleLinkHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID") // Set by the session middleware
		var req ToggleLinkRequest    // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		active := true // Absent flag means activate
		if req.Active != nil {
			active = *req.Active
		}
		if err := svc.ToggleLink(userID, active); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "link status updated"})
	}
}

// RegenerateLinkHandler issues a fresh recipient link
func RegenerateLinkHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")            // Set by the session middleware
		link, err := svc.RegenerateLink(userID) // Old link stops resolving immediately
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"recipientLink": service.RecipientLink(link)})
	}
}

// ChangePasswordHandler rehashes the password after verifying the current one
func ChangePasswordHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID")  // Set by the session middleware
		var req ChangePasswordRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := svc.ChangePassword(userID, req.CurrentPassword, req.NewPassword); err != nil {
			respondErr(c, err) // Wrong current password or too-short replacement
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "password changed successfully"})
	}
}

// DeleteAccountHandler verifies the password, removes the account and
// revokes the caller's session
func DeleteAccountHandler(svc *service.AccountService, sessions session.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetInt("userID") // Set by the session middleware
		var req DeleteAccountRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		if err := svc.DeleteAccount(userID, req.Password); err != nil {
			respondErr(c, err) // Password re-verification failed
			return
		}
		// The account is gone; drop the session that authorized the delete
		if token := c.GetString("sessionToken"); token != "" {
			_ = sessions.Destroy(c.Request.Context(), token)
		}
		c.JSON(http.StatusOK, gin.H{"message": "account deleted"})
	}
}
