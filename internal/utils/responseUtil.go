package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	invalidJSONMessage      = "Invalid JSON in request body"
	validationFailedMessage = "Validation failed"
	rateLimitedMessage      = "Rate limit exceeded. Please try again in a minute."
	unavailableMessage      = "Service temporarily unavailable. Please try again later."
)

func ProcessGenericInternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func ProcessInvalidJSON(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": invalidJSONMessage})
}

// ProcessValidationFailed answers 400 with one "field: message" entry per failure.
func ProcessValidationFailed(c *gin.Context, details []string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": validationFailedMessage, "details": details})
}

func ProcessRateLimited(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": rateLimitedMessage})
}

// ProcessServiceUnconfigured answers 500 when the provider has no credential.
func ProcessServiceUnconfigured(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": unavailableMessage})
}

func ProcessUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "please provide a valid access token in your Authorization header"})
}

func ProcessNotFound(c *gin.Context, what string) {
	c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
}

// ProcessStatus answers status with message as the error text.
func ProcessStatus(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
