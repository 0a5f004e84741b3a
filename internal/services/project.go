package services

import (
	"errors"
	"strings"
	"time"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/logger"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// ProjectService manages projects and their collaborator sets. Access
// failures deliberately read as "not found or access denied" so callers
// cannot probe for project existence.
type ProjectService struct {
	db     *gorm.DB
	access *AccessService
	mailer *MailService
}

func NewProjectService(db *gorm.DB, access *AccessService, mailer *MailService) *ProjectService {
	return &ProjectService{db: db, access: access, mailer: mailer}
}

var errProjectAccess = response.NewNotFound("project not found or access denied")

type CreateProjectRequest struct {
	Name     string     `json:"name" binding:"required"`
	Client   string     `json:"client"`
	Deadline *time.Time `json:"deadline"`
}

type UpdateProjectRequest struct {
	Name     string     `json:"name"`
	Client   *string    `json:"client"`
	Deadline *time.Time `json:"deadline"`
}

// ProjectDetail is a project plus its collaborator list.
type ProjectDetail struct {
	models.Project
	Collaborators []CollaboratorView `json:"collaborators"`
}

// CollaboratorView is one collaborator row joined with user identity.
type CollaboratorView struct {
	UserID    uint      `json:"user_id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Role      string    `json:"role"`
	InvitedBy *uint     `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Create creates a project owned by userID.
func (s *ProjectService) Create(req *CreateProjectRequest, userID uint) (*models.Project, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("project name is required")
	}

	project := models.Project{
		Name:     name,
		Client:   strings.TrimSpace(req.Client),
		Deadline: req.Deadline,
		OwnerID:  userID,
	}
	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// ListForUser returns every project the user owns or collaborates on.
func (s *ProjectService) ListForUser(userID uint) ([]models.Project, error) {
	var projects []models.Project
	err := s.db.
		Distinct("projects.*").
		Joins("LEFT JOIN project_collaborators ON project_collaborators.project_id = projects.id").
		Where("projects.owner_id = ? OR project_collaborators.user_id = ?", userID, userID).
		Order("projects.created_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}
	return projects, nil
}

// GetByID returns a project with its collaborators. Invisible projects are
// indistinguishable from absent ones.
func (s *ProjectService) GetByID(projectID, userID uint) (*ProjectDetail, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectAccess
		}
		return nil, err
	}

	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	collaborators, err := s.collaborators(projectID)
	if err != nil {
		return nil, err
	}

	return &ProjectDetail{Project: project, Collaborators: collaborators}, nil
}

// Update changes name/client/deadline. Owner only.
func (s *ProjectService) Update(projectID, userID uint, req *UpdateProjectRequest) (*models.Project, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectAccess
		}
		return nil, err
	}

	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if project.OwnerID != userID {
		return nil, response.NewForbidden("only the project owner can update project details")
	}

	updates := make(map[string]interface{})
	if name := strings.TrimSpace(req.Name); name != "" {
		updates["name"] = name
	}
	if req.Client != nil {
		updates["client"] = strings.TrimSpace(*req.Client)
	}
	if req.Deadline != nil {
		updates["deadline"] = req.Deadline
	}

	if len(updates) > 0 {
		if err := s.db.Model(&project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &project, nil
}

// Delete removes a project and, via cascading constraints, everything in
// it. Owner only.
func (s *ProjectService) Delete(projectID, userID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errProjectAccess
		}
		return err
	}

	if !s.access.HasAccess(projectID, userID) {
		return errProjectAccess
	}
	if project.OwnerID != userID {
		return response.NewForbidden("only the project owner can delete the project")
	}

	return s.db.Delete(&models.Project{}, projectID).Error
}

// AddCollaborator invites a user by email. Owner only; the owner cannot
// invite themself and duplicates conflict.
func (s *ProjectService) AddCollaborator(projectID, userID uint, email, role string) (*CollaboratorView, error) {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errProjectAccess
		}
		return nil, err
	}

	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if project.OwnerID != userID {
		return nil, response.NewForbidden("only the project owner can add collaborators")
	}

	var invitee models.User
	if err := s.db.Where("email = ?", strings.TrimSpace(email)).First(&invitee).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("user with this email not found")
		}
		return nil, err
	}

	if invitee.ID == userID {
		return nil, response.NewBadRequest("you cannot add yourself as a collaborator")
	}

	if s.access.IsCollaborator(projectID, invitee.ID) {
		return nil, response.NewConflict("user is already a collaborator on this project")
	}

	if role != "viewer" {
		role = "collaborator"
	}

	inviter := userID
	row := models.ProjectCollaborator{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      role,
		InvitedBy: &inviter,
	}
	if err := s.db.Create(&row).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, response.NewConflict("user is already a collaborator on this project")
		}
		return nil, err
	}

	if s.mailer != nil {
		go func() {
			if err := s.mailer.SendInvite(invitee.Email, invitee.DisplayName(), project.Name); err != nil {
				logger.Warn().Err(err).Str("email", invitee.Email).Msg("invite mail failed")
			}
		}()
	}

	return &CollaboratorView{
		UserID:    invitee.ID,
		Email:     invitee.Email,
		Username:  invitee.Username,
		FirstName: invitee.FirstName,
		LastName:  invitee.LastName,
		Role:      row.Role,
		InvitedBy: row.InvitedBy,
		CreatedAt: row.CreatedAt,
	}, nil
}

// RemoveCollaborator removes a collaborator row. The owner may remove
// anyone but themself; a collaborator may only remove themself.
func (s *ProjectService) RemoveCollaborator(projectID, userID, collaboratorID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errProjectAccess
		}
		return err
	}

	if !s.access.HasAccess(projectID, userID) {
		return errProjectAccess
	}

	isOwner := project.OwnerID == userID
	isSelf := userID == collaboratorID

	if !isOwner && !isSelf {
		return response.NewForbidden("you can only remove yourself or be the project owner")
	}
	if isOwner && isSelf {
		return response.NewBadRequest("the project owner cannot remove themself")
	}

	result := s.db.
		Where("project_id = ? AND user_id = ?", projectID, collaboratorID).
		Delete(&models.ProjectCollaborator{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return response.NewNotFound("user is not a collaborator on this project")
	}
	return nil
}

// GetCollaborators returns the collaborator list for a visible project.
func (s *ProjectService) GetCollaborators(projectID, userID uint) ([]CollaboratorView, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	return s.collaborators(projectID)
}

func (s *ProjectService) collaborators(projectID uint) ([]CollaboratorView, error) {
	var views []CollaboratorView
	err := s.db.Model(&models.ProjectCollaborator{}).
		Select(`users.id as user_id, users.email, users.username, users.first_name, users.last_name,
			project_collaborators.role, project_collaborators.invited_by, project_collaborators.created_at`).
		Joins("JOIN users ON users.id = project_collaborators.user_id").
		Where("project_collaborators.project_id = ?", projectID).
		Order("project_collaborators.created_at ASC").
		Scan(&views).Error
	if err != nil {
		return nil, err
	}
	return views, nil
}
