package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/config"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type ImageHandler struct {
	imageService *services.ImageService
	uploads      config.UploadConfig
}

func NewImageHandler(imageService *services.ImageService, uploads config.UploadConfig) *ImageHandler {
	return &ImageHandler{imageService: imageService, uploads: uploads}
}

// Upload stores an image in a stack
// POST /api/images/stack/:stackId (multipart, field "file")
func (h *ImageHandler) Upload(c *gin.Context) {
	stackID, ok := paramID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	file, err := middleware.SaveUpload(c, "file", h.uploads.Dir, middleware.ImageRule(h.uploads.MaxImageMB))
	if err != nil {
		if middleware.IsUploadError(err) {
			response.BadRequest(c, err.Error())
		} else {
			response.ServerError(c, "failed to store upload")
		}
		return
	}

	image, err := h.imageService.CreateForStack(stackID, middleware.GetUserID(c), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, image)
}

// ListForStack returns a stack's images
// GET /api/images/stack/:stackId?tagIds=
func (h *ImageHandler) ListForStack(c *gin.Context) {
	stackID, ok := paramID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	opts := services.ImageListOptions{TagIDs: queryIDList(c, "tagIds")}
	images, err := h.imageService.ListForStack(stackID, middleware.GetUserID(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, images)
}

// ListForProject returns a project's images, optionally scoped to a stack
// GET /api/images/project/:projectId?stackId=&tagIds=
func (h *ImageHandler) ListForProject(c *gin.Context) {
	projectID, ok := paramID(c, "projectId")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}
	stackID, ok := queryID(c, "stackId")
	if !ok {
		response.BadRequest(c, "invalid stack id")
		return
	}

	opts := services.ImageListOptions{TagIDs: queryIDList(c, "tagIds")}
	if stackID != nil {
		opts.StackID = *stackID
	}
	images, err := h.imageService.ListForProject(projectID, middleware.GetUserID(c), opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, images)
}

// GetByID returns one image with its tags
// GET /api/images/:id
func (h *ImageHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid image id")
		return
	}

	view, err := h.imageService.Get(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, view)
}

// Download streams the image file, or its thumbnail with ?thumbnail=1
// GET /api/images/:id/file
func (h *ImageHandler) Download(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid image id")
		return
	}

	thumb := c.Query("thumbnail") == "1" || c.Query("thumbnail") == "true"
	path, err := h.imageService.FilePath(id, middleware.GetUserID(c), thumb)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.File(path)
}

// Delete removes an image
// DELETE /api/images/:id
func (h *ImageHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid image id")
		return
	}

	if err := h.imageService.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "image deleted")
}

// AttachTag tags an image
// POST /api/images/:id/tags/:tagId
func (h *ImageHandler) AttachTag(c *gin.Context) {
	imageID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid image id")
		return
	}
	tagID, ok := paramID(c, "tagId")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.imageService.AttachTag(imageID, tagID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag attached")
}

// DetachTag removes a tag from an image
// DELETE /api/images/:id/tags/:tagId
func (h *ImageHandler) DetachTag(c *gin.Context) {
	imageID, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid image id")
		return
	}
	tagID, ok := paramID(c, "tagId")
	if !ok {
		response.BadRequest(c, "invalid tag id")
		return
	}

	if err := h.imageService.DetachTag(imageID, tagID, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "tag detached")
}
