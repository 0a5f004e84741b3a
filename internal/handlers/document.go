package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/config"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type DocumentHandler struct {
	documentService *services.DocumentService
	uploads         config.UploadConfig
}

func NewDocumentHandler(documentService *services.DocumentService, uploads config.UploadConfig) *DocumentHandler {
	return &DocumentHandler{documentService: documentService, uploads: uploads}
}

// Upload stores a document homed in a stack
// POST /api/documents/stack/:stackId (multipart, field "file")
func (h *DocumentHandler) Upload(c *gin.Context) {
	stackID, ok := paramID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	file, err := middleware.SaveUpload(c, "file", h.uploads.Dir, middleware.DocumentRule(h.uploads.MaxDocumentMB))
	if err != nil {
		if middleware.IsUploadError(err) {
			response.BadRequest(c, err.Error())
		} else {
			response.ServerError(c, "failed to store upload")
		}
		return
	}

	doc, err := h.documentService.CreateForStack(stackID, middleware.GetUserID(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// UploadToProject stores a document homed in a project without a stack
// POST /api/documents/project/:projectId (multipart, field "file")
func (h *DocumentHandler) UploadToProject(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	file, err := middleware.SaveUpload(c, "file", h.uploads.Dir, middleware.DocumentRule(h.uploads.MaxDocumentMB))
	if err != nil {
		if middleware.IsUploadError(err) {
			response.BadRequest(c, err.Error())
		} else {
			response.ServerError(c, "failed to store upload")
		}
		return
	}

	doc, err := h.documentService.Create(projectID, nil, middleware.GetUserID(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, doc)
}

// ListForStack returns documents visible in a stack
// GET /api/documents/stack/:stackId
func (h *DocumentHandler) ListForStack(c *gin.Context) {
	stackID, ok := paramID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	docs, err := h.documentService.ListForStack(stackID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, docs)
}

// ListForProject returns documents visible in a project (home + referenced)
// GET /api/documents/project/:projectId
func (h *DocumentHandler) ListForProject(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	docs, err := h.documentService.ListForProject(projectID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, docs)
}

// GetByID returns one document with its tags
// GET /api/documents/:id
func (h *DocumentHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	view, err := h.documentService.Get(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Download streams the document file
// GET /api/documents/:id/file
func (h *DocumentHandler) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	path, doc, err := h.documentService.FilePath(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.FileAttachment(path, doc.Name)
}

// Update edits document metadata
// PUT /api/documents/:id
func (h *DocumentHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	var req services.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	doc, err := h.documentService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, doc)
}

// Delete removes a document
// DELETE /api/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	if err := h.documentService.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "document deleted")
}

type referenceRequest struct {
	ProjectID uint  `json:"project_id" binding:"required"`
	StackID   *uint `json:"stack_id"`
}

// AddReference references the document into another project
// POST /api/documents/:id/references
func (h *DocumentHandler) AddReference(c *gin.Context) {
	documentID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	ref, err := h.documentService.AddReference(documentID, req.ProjectID, req.StackID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ref)
}

// RemoveReference drops one of the document's references
// DELETE /api/documents/:id/references
func (h *DocumentHandler) RemoveReference(c *gin.Context) {
	documentID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	var req referenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.documentService.RemoveReference(documentID, req.ProjectID, req.StackID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "reference removed")
}

// ListReferences returns the document's references
// GET /api/documents/:id/references
func (h *DocumentHandler) ListReferences(c *gin.Context) {
	documentID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}

	refs, err := h.documentService.ListReferences(documentID, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, refs)
}

// AttachTag tags a document
// POST /api/documents/:id/tags/:tagId
func (h *DocumentHandler) AttachTag(c *gin.Context) {
	documentID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}
	tagID, ok := paramID(c, "tagId")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.documentService.AttachTag(documentID, tagID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag attached")
}

// DetachTag removes a tag from a document
// DELETE /api/documents/:id/tags/:tagId
func (h *DocumentHandler) DetachTag(c *gin.Context) {
	documentID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid document id")
		return
	}
	tagID, ok := paramID(c, "tagId")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.documentService.DetachTag(documentID, tagID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag detached")
}
