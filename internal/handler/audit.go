package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kettlegourmet/hrm/internal/models"
)

type AuditLister interface {
	List(ctx context.Context, action string, limit, offset int) ([]models.AuditEntry, error)
}

type AuditHandler struct {
	service AuditLister
}

func NewAuditHandler(service AuditLister) *AuditHandler {
	return &AuditHandler{service: service}
}

// Handles GET /api/leave/audit
func (h *AuditHandler) List(c *gin.Context) {
	// Parse pagination
	limit := 100
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 1000 {
			limit = l
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	entries, err := h.service.List(c.Request.Context(), c.Query("action"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"limit":   limit,
		"offset":  offset,
	})
}
