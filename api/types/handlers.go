package types

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler utility functions to reduce duplication across handlers

// UUIDParam extracts the uuid URL parameter
// Returns the value and sends an error response if it is missing
func UUIDParam(c *gin.Context) (string, bool) {
	uuid := c.Param("uuid")
	if uuid == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Missing media uuid",
		})
		return "", false
	}
	return uuid, true
}

// BindJSONOrError attempts to bind the JSON request body to the target struct
// Returns true on success and sends an error response on failure
func BindJSONOrError(c *gin.Context, target interface{}) bool {
	if err := c.ShouldBindJSON(target); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Status:  StatusError,
			Message: "Invalid request body",
			Error:   err.Error(),
		})
		return false
	}
	return true
}

// SendError sends a standardized error response
func SendError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Status:  StatusError,
		Message: message,
	})
}
