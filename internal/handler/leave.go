package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kettlegourmet/hrm/internal/models"
	"github.com/kettlegourmet/hrm/internal/service"
)

// LeaveManager is satisfied by *service.LeaveService
type LeaveManager interface {
	ListTiers(ctx context.Context) ([]models.LeaveQuota, error)
	CreateTier(ctx context.Context, actor service.Actor, req models.TierRequest) (*models.LeaveQuota, error)
	EditTier(ctx context.Context, actor service.Actor, req models.TierRequest) (*models.LeaveQuota, error)
	DeleteTier(ctx context.Context, actor service.Actor, id uint) error
	TierSize(ctx context.Context, tier string) (int64, error)
	DeleteAndReplaceTier(ctx context.Context, actor service.Actor, req models.ReplaceTierRequest) (int, error)
	ListEmployeeQuotas(ctx context.Context) ([]models.EmployeeLeaveQuota, error)
	EditEmployeeQuota(ctx context.Context, actor service.Actor, req models.EmployeeQuotaRequest) (*models.EmployeeLeaveQuota, error)
}

type LeaveHandler struct {
	service LeaveManager
}

func NewLeaveHandler(service LeaveManager) *LeaveHandler {
	return &LeaveHandler{service: service}
}

// Handles GET /api/leave/quota
func (h *LeaveHandler) ListTiers(c *gin.Context) {
	tiers, err := h.service.ListTiers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tiers)
}

// Handles POST /api/leave/quota
func (h *LeaveHandler) CreateTier(c *gin.Context) {
	var req models.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier, err := h.service.CreateTier(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tier)
}

// Handles PUT /api/leave/quota
func (h *LeaveHandler) EditTier(c *gin.Context) {
	var req models.TierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tier, err := h.service.EditTier(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tier)
}

// Handles DELETE /api/leave/quota/:id
func (h *LeaveHandler) DeleteTier(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid tier ID"})
		return
	}

	if err := h.service.DeleteTier(c.Request.Context(), actorFrom(c), uint(id)); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Leave tier deleted successfully"})
}

// Handles GET /api/leave/quota/size/:tier
func (h *LeaveHandler) TierSize(c *gin.Context) {
	tier := c.Param("tier")

	count, err := h.service.TierSize(c.Request.Context(), tier)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.TierSizeResponse{Tier: tier, Count: count})
}

// Handles POST /api/leave/quota/replace
func (h *LeaveHandler) ReplaceTier(c *gin.Context) {
	var req models.ReplaceTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	moved, err := h.service.DeleteAndReplaceTier(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Leave tier replaced successfully",
		"moved":   moved,
	})
}

// Handles GET /api/leave/employee-quota
func (h *LeaveHandler) ListEmployeeQuotas(c *gin.Context) {
	records, err := h.service.ListEmployeeQuotas(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// Handles PUT /api/leave/employee-quota
func (h *LeaveHandler) EditEmployeeQuota(c *gin.Context) {
	var req models.EmployeeQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.service.EditEmployeeQuota(c.Request.Context(), actorFrom(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}
