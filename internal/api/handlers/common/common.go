// Package common holds response helpers shared by all HTTP handlers.
package common

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/creator-platform/creator_service/internal/domain/entities"
	domainerrors "github.com/creator-platform/creator_service/pkg/errors"
)

// CreatorIDKey is the context key populated by the upstream auth layer
const CreatorIDKey = "creator_id"

// GetCreatorID extracts and validates the creator id from the request context
func GetCreatorID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(CreatorIDKey)
	if !exists {
		return uuid.Nil, fmt.Errorf("creator id not found in context")
	}

	switch v := val.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("invalid creator id type in context")
	}
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, entities.ErrorResponse{Code: code, Message: message})
}

// RespondBadRequest sends a 400 error
func RespondBadRequest(c *gin.Context, message string) {
	RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", message)
}

// RespondUnauthorized sends a 401 error
func RespondUnauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// RespondNotFound sends a 404 error
func RespondNotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, "NOT_FOUND", message)
}

// RespondInternalError sends a 500 error
func RespondInternalError(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message)
}

// RespondSuccess sends a 200 response with data
func RespondSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated sends a 201 response with data
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// RespondNoContent sends a 204 response
func RespondNoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// RespondServiceError maps a domain error onto the HTTP surface. Validation and gateway
// failures are user-facing 4xx; everything else is an opaque 500.
func RespondServiceError(c *gin.Context, err error) {
	switch {
	case domainerrors.IsValidation(err):
		RespondBadRequest(c, err.Error())
	case domainerrors.IsNotFound(err):
		RespondNotFound(c, err.Error())
	case domainerrors.IsGateway(err):
		gw, _ := domainerrors.AsGateway(err)
		code := "GATEWAY_ERROR"
		if gw.Code != "" {
			code = gw.Code
		}
		RespondError(c, http.StatusBadRequest, code, gw.Message)
	default:
		RespondInternalError(c, "An unexpected error occurred")
	}
}

// ParseUUIDParam parses a path parameter as a UUID
func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondBadRequest(c, fmt.Sprintf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}
