// Package handlers wires the gin routes to the service layer and maps service
// errors onto HTTP status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"ref-check/internal/services"

	"github.com/gin-gonic/gin"
)

// respondError translates service sentinel errors into HTTP responses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrAuth):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
	}
}

// parseID parses a numeric path parameter. A non-numeric value reports 400 and
// returns false.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// bindPatchBody decodes a PATCH body into a field map, keeping numbers as
// json.Number so integer checks stay exact, and distinguishing absent fields
// from explicit nulls.
func bindPatchBody(c *gin.Context) (map[string]interface{}, bool) {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.UseNumber()
	var updates map[string]interface{}
	if err := decoder.Decode(&updates); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return nil, false
	}
	return updates, true
}

// HealthCheck handles GET /health
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
