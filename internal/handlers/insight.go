package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type InsightHandler struct {
	insightService *services.InsightService
}

func NewInsightHandler(insightService *services.InsightService) *InsightHandler {
	return &InsightHandler{insightService: insightService}
}

type insightBodyRequest struct {
	Content string `json:"content" binding:"required"`
}

// Create adds an insight to a stack
// POST /api/insights/stack/:stackId
func (h *InsightHandler) Create(c *gin.Context) {
	stackID, ok := paramID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	var req insightBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	insight, err := h.insightService.Create(stackID, middleware.GetUserID(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, insight)
}

// ListForStack returns a stack's insights with optional tag/search filters
// GET /api/insights/stack/:stackId?tagIds=1,2&search=
func (h *InsightHandler) ListForStack(c *gin.Context) {
	stackID, ok := paramID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	opts := services.InsightListOptions{
		TagIDs: queryIDList(c, "tagIds"),
		Search: c.Query("search"),
	}
	insights, err := h.insightService.ListForStack(stackID, middleware.GetUserID(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, insights)
}

// GetByID returns one insight with tags and document link
// GET /api/insights/:id
func (h *InsightHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}

	view, err := h.insightService.Get(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Update edits an insight's content
// PUT /api/insights/:id
func (h *InsightHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}

	var req insightBodyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	insight, err := h.insightService.Update(id, middleware.GetUserID(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, insight)
}

// Delete removes an insight
// DELETE /api/insights/:id
func (h *InsightHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}

	if err := h.insightService.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "insight deleted")
}

// LinkDocument links a document to an insight, replacing any prior link
// POST /api/insights/:id/documents/:documentId
func (h *InsightHandler) LinkDocument(c *gin.Context) {
	insightID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}
	documentID, ok := paramID(c, "documentId")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	if err := h.insightService.LinkDocument(insightID, documentID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "document linked")
}

// UnlinkDocument removes the insight's document link
// DELETE /api/insights/:id/documents/:documentId
func (h *InsightHandler) UnlinkDocument(c *gin.Context) {
	insightID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}

	if err := h.insightService.UnlinkDocument(insightID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "document unlinked")
}

// GetDocument returns the insight's linked document, if any
// GET /api/insights/:id/documents
func (h *InsightHandler) GetDocument(c *gin.Context) {
	insightID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}

	view, err := h.insightService.Get(insightID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view.Document)
}
