// Package handlers provides HTTP request handlers for the v1 API.
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/infrastructure/storage/postgres"
)

// BaseHandler provides common functionality for all handlers.
type BaseHandler struct{}

// BindJSON binds the request body; on failure it records a validation
// error and returns false.
func (h *BaseHandler) BindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid request body").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// BindQuery binds query parameters; on failure it records a validation
// error and returns false.
func (h *BaseHandler) BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		h.Error(c, apperror.NewValidation("invalid query parameters").WithDetail("error", err.Error()))
		return false
	}
	return true
}

// ParseID parses the named path parameter as an entity ID.
func (h *BaseHandler) ParseID(c *gin.Context, param string) (id.ID, bool) {
	parsed, err := id.Parse(c.Param(param))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("param", param))
		return id.ID{}, false
	}
	return parsed, true
}

// ParseIntQuery parses an integer query parameter with default value.
func (h *BaseHandler) ParseIntQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// ParseBoolQuery parses an optional boolean query parameter.
func (h *BaseHandler) ParseBoolQuery(c *gin.Context, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

// ParseIDQuery parses an optional entity ID query parameter. The second
// return value is false when the value was present but malformed.
func (h *BaseHandler) ParseIDQuery(c *gin.Context, key string) (*id.ID, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("param", key))
		return nil, false
	}
	return &parsed, true
}

// parseRawID parses an ID string from a repeated query parameter.
func (h *BaseHandler) parseRawID(c *gin.Context, raw string) (id.ID, bool) {
	parsed, err := id.Parse(raw)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id").WithDetail("value", raw))
		return id.ID{}, false
	}
	return parsed, true
}

// ParseTimeQuery parses an optional RFC 3339 timestamp query parameter.
func (h *BaseHandler) ParseTimeQuery(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Accept bare dates too.
		t, err = time.Parse("2006-01-02", raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid timestamp").WithDetail("param", key))
			return nil, false
		}
	}
	return &t, true
}

// Error records an error for the error-handling middleware and aborts.
func (h *BaseHandler) Error(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// CompleteIdempotency stores the response for idempotent replay when the
// request carried an idempotency key.
func (h *BaseHandler) CompleteIdempotency(c *gin.Context, status int, response any) {
	key, ok := c.Get("idempotency_key")
	if !ok {
		return
	}
	store, ok := c.Get("idempotency_store")
	if !ok {
		return
	}
	s, ok := store.(*postgres.IdempotencyStore)
	if !ok {
		return
	}
	_ = s.CompleteKey(c.Request.Context(), key.(string), status, "application/json", response)
}

// OK writes a 200 response.
func (h *BaseHandler) OK(c *gin.Context, response any) {
	c.JSON(http.StatusOK, response)
}

// Created writes a 201 response and completes idempotency tracking.
func (h *BaseHandler) Created(c *gin.Context, response any) {
	h.CompleteIdempotency(c, http.StatusCreated, response)
	c.JSON(http.StatusCreated, response)
}

// NoContent writes a 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
