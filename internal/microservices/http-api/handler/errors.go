package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cookbook/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const requestTimeout = 5 * time.Second

// writeTimeout covers handlers that also store or delete image files.
const writeTimeout = 30 * time.Second

// respondError maps service errors onto status codes and bodies.
func respondError(c *gin.Context, err error) {
	var (
		validation *service.ValidationError
		conflict   *service.ConflictError
		reference  *service.ReferenceError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"errors": validation.Fields})
	case errors.As(err, &conflict):
		body := gin.H{
			"error":  "conflict",
			"detail": conflict.Detail(),
			"entity": conflict.Entity,
			"id":     conflict.ID,
			"name":   conflict.Name,
		}
		if conflict.Field != "" {
			body["field"] = conflict.Field
		}
		c.JSON(http.StatusConflict, body)
	case errors.As(err, &reference):
		if reference.InUse {
			c.JSON(http.StatusConflict, gin.H{"error": reference.Error(), "entity": reference.Entity, "id": reference.ID})
			return
		}
		field := reference.Field
		if field == "" {
			field = reference.Entity
		}
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{field: []string{reference.Error()}}})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timeout"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + param})
		return 0, false
	}
	return id, true
}

// optionalBool reads a true/false query parameter. Missing means nil.
func optionalBool(c *gin.Context, key string) (*bool, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{key: []string{"Must be true or false."}}})
		return nil, false
	}
	return &v, true
}
