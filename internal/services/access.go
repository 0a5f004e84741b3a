package services

import (
	"errors"

	"github.com/stackroom/backend/internal/models"
	"gorm.io/gorm"
)

// AccessService answers the two authorization questions everything else
// composes: is the user the project's owner, and can the user see the
// project at all. There is no permission matrix beyond these.
type AccessService struct {
	db *gorm.DB
}

func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// IsOwner reports whether userID owns projectID. Nonexistent projects are
// simply not owned.
func (s *AccessService) IsOwner(projectID, userID uint) bool {
	var project models.Project
	if err := s.db.Select("owner_id").First(&project, projectID).Error; err != nil {
		return false
	}
	return project.OwnerID == userID
}

// IsCollaborator reports whether a collaborator row exists for the pair.
func (s *AccessService) IsCollaborator(projectID, userID uint) bool {
	var count int64
	s.db.Model(&models.ProjectCollaborator{}).
		Where("project_id = ? AND user_id = ?", projectID, userID).
		Count(&count)
	return count > 0
}

// HasAccess reports whether userID may read or write projectID: true iff
// owner or collaborator.
func (s *AccessService) HasAccess(projectID, userID uint) bool {
	return s.IsOwner(projectID, userID) || s.IsCollaborator(projectID, userID)
}

// isDuplicateErr reports whether err is a uniqueness-constraint violation.
// The unique indexes are the backstop for all check-then-act races; gorm's
// TranslateError maps driver-specific violations onto ErrDuplicatedKey.
func isDuplicateErr(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
