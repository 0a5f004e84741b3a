package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/services"
	"github.com/stackroom/backend/pkg/response"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// List returns the caller's projects
// GET /api/projects
func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.projectService.ListForUser(middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, projects)
}

// Create creates a new project
// POST /api/projects
func (h *ProjectHandler) Create(c *gin.Context) {
	var req services.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Create(&req, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, project)
}

// GetByID returns a project with its collaborators
// GET /api/projects/:id
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	detail, err := h.projectService.GetByID(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail)
}

// Update updates a project
// PUT /api/projects/:id
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req services.UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	project, err := h.projectService.Update(id, middleware.GetUserID(c), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, project)
}

// Delete deletes a project
// DELETE /api/projects/:id
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	if err := h.projectService.Delete(id, middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "project deleted successfully")
}

// ListCollaborators returns the project's collaborator list
// GET /api/projects/:id/collaborators
func (h *ProjectHandler) ListCollaborators(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	collaborators, err := h.projectService.GetCollaborators(id, middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, collaborators)
}

type addCollaboratorRequest struct {
	Email string `json:"email" binding:"required,email"`
	Role  string `json:"role"`
}

// AddCollaborator invites a user by email
// POST /api/projects/:id/collaborators
func (h *ProjectHandler) AddCollaborator(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}

	var req addCollaboratorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.projectService.AddCollaborator(id, middleware.GetUserID(c), req.Email, req.Role)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, view)
}

// RemoveCollaborator removes a collaborator
// DELETE /api/projects/:id/collaborators/:userId
func (h *ProjectHandler) RemoveCollaborator(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		response.BadRequest(c, "invalid project id")
		return
	}
	userID, ok := paramID(c, "userId")
	if !ok {
		response.BadRequest(c, "invalid user id")
		return
	}

	if err := h.projectService.RemoveCollaborator(id, middleware.GetUserID(c), userID); err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessMessage(c, nil, "collaborator removed")
}
