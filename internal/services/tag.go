package services

import (
	"errors"
	"strings"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// TagService manages project-scoped tags.
type TagService struct {
	db     *gorm.DB
	access *AccessService
}

func NewTagService(db *gorm.DB, access *AccessService) *TagService {
	return &TagService{db: db, access: access}
}

// CreateTagRequest carries the fields for a new tag. Colors fall back to
// the model defaults when omitted.
type CreateTagRequest struct {
	Name   string `json:"name" binding:"required"`
	Color1 string `json:"color1"`
	Color2 string `json:"color2"`
}

// UpdateTagRequest carries partial tag updates.
type UpdateTagRequest struct {
	Name   *string `json:"name"`
	Color1 *string `json:"color1"`
	Color2 *string `json:"color2"`
}

// Create creates a tag in the project. Names are unique per project.
func (s *TagService) Create(projectID, userID uint, req *CreateTagRequest) (*models.Tag, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, response.NewBadRequest("tag name is required")
	}

	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	var count int64
	s.db.Model(&models.Tag{}).
		Where("project_id = ? AND name = ?", projectID, name).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict("a tag with this name already exists")
	}

	tag := models.Tag{
		ProjectID: projectID,
		Name:      name,
		CreatedBy: userID,
	}
	if req.Color1 != "" {
		tag.Color1 = req.Color1
	}
	if req.Color2 != "" {
		tag.Color2 = req.Color2
	}

	if err := s.db.Create(&tag).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, response.NewConflict("a tag with this name already exists")
		}
		return nil, err
	}
	return &tag, nil
}

// ListForProject returns the project's tags ordered by name.
func (s *TagService) ListForProject(projectID, userID uint) ([]models.Tag, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	var tags []models.Tag
	if err := s.db.Where("project_id = ?", projectID).Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

// Update renames or recolors a tag.
func (s *TagService) Update(tagID, userID uint, req *UpdateTagRequest) (*models.Tag, error) {
	tag, err := s.getVisible(tagID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewBadRequest("tag name is required")
		}
		if name != tag.Name {
			var count int64
			s.db.Model(&models.Tag{}).
				Where("project_id = ? AND name = ? AND id != ?", tag.ProjectID, name, tag.ID).
				Count(&count)
			if count > 0 {
				return nil, response.NewConflict("a tag with this name already exists")
			}
			tag.Name = name
		}
	}
	if req.Color1 != nil {
		tag.Color1 = *req.Color1
	}
	if req.Color2 != nil {
		tag.Color2 = *req.Color2
	}

	if err := s.db.Save(tag).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, response.NewConflict("a tag with this name already exists")
		}
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag and all of its attachments. Only the project
// owner may delete tags.
func (s *TagService) Delete(tagID, userID uint) error {
	tag, err := s.getVisible(tagID, userID)
	if err != nil {
		return err
	}
	if !s.access.IsOwner(tag.ProjectID, userID) {
		return response.NewForbidden("only the project owner can delete tags")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.InsightTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.ImageTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("tag_id = ?", tag.ID).Delete(&models.DocumentTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Tag{}, tag.ID).Error
	})
}

func (s *TagService) getVisible(tagID, userID uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("tag not found or access denied")
		}
		return nil, err
	}
	if !s.access.HasAccess(tag.ProjectID, userID) {
		return nil, response.NewNotFound("tag not found or access denied")
	}
	return &tag, nil
}
