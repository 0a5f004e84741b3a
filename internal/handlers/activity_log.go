package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type ActivityLogHandler struct {
	activityService *services.ActivityLogService
}

func NewActivityLogHandler(activityService *services.ActivityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{activityService: activityService}
}

// List returns paginated activity logs
// GET /api/activity-logs?page=&page_size=&level=&module=&start_date=&end_date=
func (h *ActivityLogHandler) List(c *gin.Context) {
	var req services.ActivityLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	resp, err := h.activityService.List(&req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, resp)
}

// GetRetention returns the current retention window in days
// GET /api/activity-logs/retention
func (h *ActivityLogHandler) GetRetention(c *gin.Context) {
	response.Success(c, gin.H{"retention_days": h.activityService.RetentionDays()})
}

// SetRetention adjusts the retention window
// PUT /api/activity-logs/retention
func (h *ActivityLogHandler) SetRetention(c *gin.Context) {
	var req struct {
		RetentionDays int `json:"retention_days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.activityService.SetRetentionDays(req.RetentionDays); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"retention_days": req.RetentionDays})
}

// Cleanup prunes logs past the retention window
// POST /api/activity-logs/cleanup
func (h *ActivityLogHandler) Cleanup(c *gin.Context) {
	deleted, err := h.activityService.Cleanup()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"deleted": deleted})
}
