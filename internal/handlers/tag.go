package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type TagHandler struct {
	tagService     *services.TagService
	insightService *services.InsightService
}

func NewTagHandler(tagService *services.TagService, insightService *services.InsightService) *TagHandler {
	return &TagHandler{tagService: tagService, insightService: insightService}
}

// Create creates a tag in a project
// POST /api/tags/project/:projectId
func (h *TagHandler) Create(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.CreateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tag, err := h.tagService.Create(projectID, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, tag)
}

// ListForProject returns a project's tags
// GET /api/tags/project/:projectId
func (h *TagHandler) ListForProject(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	tags, err := h.tagService.ListForProject(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tags)
}

// Update renames or recolors a tag
// PUT /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	var req services.UpdateTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	tag, err := h.tagService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, tag)
}

// Delete removes a tag and its attachments
// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.tagService.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag deleted")
}

// AttachToInsight tags an insight
// POST /api/tags/insight/:insightId/tag/:tagId
func (h *TagHandler) AttachToInsight(c *gin.Context) {
	insightID, ok := paramID(c, "insightId")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}
	tagID, ok := paramID(c, "tagId")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.insightService.AttachTag(insightID, tagID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag attached")
}

// DetachFromInsight removes a tag from an insight
// DELETE /api/tags/insight/:insightId/tag/:tagId
func (h *TagHandler) DetachFromInsight(c *gin.Context) {
	insightID, ok := paramID(c, "insightId")
	if !ok {
		response.BadRequest(c, "invalid insight id")
		return
	}
	tagID, ok := paramID(c, "tagId")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.insightService.DetachTag(insightID, tagID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag detached")
}
