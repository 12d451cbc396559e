package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/nazar-zhcet26/Tenant-management/middlewares"
	"github.com/nazar-zhcet26/Tenant-management/models"
	"github.com/nazar-zhcet26/Tenant-management/services"
)

// respondError maps service errors to the JSON error shape used across the API.
func respondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Error submitting report. Please try again."})
	case errors.Is(err, context.Canceled):
		// The client is gone; nothing useful can be written.
		c.Status(499)
	default:
		log.WithError(err).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Something went wrong"})
	}
}

// tenantID aborts with 401 when the auth middleware did not run.
func tenantID(c *gin.Context) (string, bool) {
	id, ok := middlewares.TenantID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return "", false
	}
	return id, true
}
