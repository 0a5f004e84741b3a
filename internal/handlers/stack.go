package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type StackHandler struct {
	stackService   *services.StackService
	insightService *services.InsightService
}

func NewStackHandler(stackService *services.StackService, insightService *services.InsightService) *StackHandler {
	return &StackHandler{stackService: stackService, insightService: insightService}
}

type createStackRequest struct {
	Topic string `json:"topic" binding:"required"`
}

// Create creates a stack in a project
// POST /api/stacks/project/:projectId
func (h *StackHandler) Create(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req createStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stack, err := h.stackService.Create(projectID, middleware.GetUserID(c), req.Topic)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, stack)
}

// ListForProject returns a project's stacks
// GET /api/stacks/project/:projectId
func (h *StackHandler) ListForProject(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	stacks, err := h.stackService.ListForProject(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, stacks)
}

// GetByID returns a stack with its insights
// GET /api/stacks/:id
func (h *StackHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	detail, err := h.stackService.GetWithInsights(id, middleware.GetUserID(c), h.insightService)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}
