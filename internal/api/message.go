package api

import (
	"net/http" // HTTP status codes

	"anonmsg/internal/service" // Account operations

	"github.com/gin-gonic/gin" // Gin web framework
)

// Request struct for anonymous sends
type SendMessageRequest struct {
	Content string `json:"content"` // Message text, validated by the service
}

// SendMessageHandler posts an anonymous message to a recipient link
func SendMessageHandler(svc *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendMessageRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		recipientID := c.Param("recipientId")                // Recipient link id from the path
		id, err := svc.SendMessage(recipientID, req.Content) // Validate and persist
		if err != nil {
			respondErr(c, err) // Invalid content or unknown recipient
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id}) // Return the new message id
	}
}
