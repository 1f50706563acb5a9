package api

import (
	"errors"
	"net/http"

	"figueroa/trainer-backend/internal/repository"
	"figueroa/trainer-backend/internal/service"

	"github.com/gin-gonic/gin"
)

// All responses share the `{success, message?, ...}` envelope so clients can
// branch on a single boolean before reading resource payloads.

// Helper to return JSON error response and abort request.
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"success": false, "message": message})
}

// ok renders a success envelope merged with the given payload fields.
func ok(c *gin.Context, code int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

// pagination is the standard list metadata block. Inputs are clamped so a
// degenerate limit cannot divide by zero.
func pagination(total int64, page, limit int) gin.H {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return gin.H{"total": total, "page": page, "limit": limit, "pages": pages}
}

// listParams reads ?page= and ?limit=, clamped to the same bounds the
// services paginate with so the reported metadata matches the actual query.
func listParams(c *gin.Context, defaultLimit int) (page, limit int) {
	page = intQuery(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = intQuery(c, "limit", defaultLimit)
	if limit < 1 || limit > 200 {
		limit = defaultLimit
	}
	return page, limit
}

// abortServiceError translates the shared service/repository error taxonomy.
// Handlers call it after checking their endpoint-specific sentinels.
func abortServiceError(c *gin.Context, err error) {
	var validation service.ValidationError
	var fieldErr *repository.FieldError
	switch {
	case errors.As(err, &validation):
		abortWithError(c, http.StatusBadRequest, validation.Error())
	case errors.As(err, &fieldErr):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"success": false,
			"message": "A user with that " + fieldErr.Field + " already exists",
			"field":   fieldErr.Field,
		})
	case errors.Is(err, repository.ErrForeignKey):
		abortWithError(c, http.StatusBadRequest, "Referenced resource does not exist")
	case errors.Is(err, repository.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "Resource not found")
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
