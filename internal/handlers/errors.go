package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"weektodo/backend/internal/ai"
	"weektodo/backend/internal/services"

	"github.com/gin-gonic/gin"
)

// bindBody decodes an optional JSON body. A missing or empty body decodes as {}.
func bindBody(c *gin.Context, dest interface{}) error {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil
	}
	if err := c.ShouldBindJSON(dest); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, services.ErrListNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "List not found"})
	case errors.Is(err, services.ErrInvalidPatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process request"})
	}
}

func handleChatError(c *gin.Context, err error) {
	var transportErr *ai.TransportError

	switch {
	case errors.Is(err, services.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
	case errors.Is(err, services.ErrMissingAPIKey):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI API key not configured"})
	case errors.Is(err, ai.ErrUpstreamUnavailable):
		log.Printf("Chat provider unavailable: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service unavailable"})
	case errors.As(err, &transportErr):
		log.Printf("Chat provider unreachable: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "AI service error: " + transportErr.Error()})
	default:
		log.Printf("Chat failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unexpected error: " + err.Error()})
	}
}
