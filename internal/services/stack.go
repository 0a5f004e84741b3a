package services

import (
	"errors"
	"strings"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// StackService manages research stacks. Topics are unique per project,
// case-sensitively; the unique index covers the concurrent case.
type StackService struct {
	db     *gorm.DB
	access *AccessService
}

func NewStackService(db *gorm.DB, access *AccessService) *StackService {
	return &StackService{db: db, access: access}
}

// StackDetail is a stack plus its insights, oldest first.
type StackDetail struct {
	models.Stack
	Insights []InsightView `json:"insights"`
}

// Create creates a stack in the project.
func (s *StackService) Create(projectID, userID uint, topic string) (*models.Stack, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, response.NewBadRequest("stack topic is required")
	}

	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	var count int64
	s.db.Model(&models.Stack{}).
		Where("project_id = ? AND topic = ?", projectID, topic).
		Count(&count)
	if count > 0 {
		return nil, response.NewConflict("a stack with this topic already exists")
	}

	stack := models.Stack{
		ProjectID: projectID,
		Topic:     topic,
		CreatedBy: userID,
	}
	if err := s.db.Create(&stack).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, response.NewConflict("a stack with this topic already exists")
		}
		return nil, err
	}

	return &stack, nil
}

// ListForProject returns the project's stacks, newest first.
func (s *StackService) ListForProject(projectID, userID uint) ([]models.Stack, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	var stacks []models.Stack
	if err := s.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&stacks).Error; err != nil {
		return nil, err
	}
	return stacks, nil
}

// GetWithInsights returns a stack and everything in it.
func (s *StackService) GetWithInsights(stackID, userID uint, insights *InsightService) (*StackDetail, error) {
	stack, err := s.getVisible(stackID, userID)
	if err != nil {
		return nil, err
	}

	items, err := insights.listForStack(stackID, InsightListOptions{})
	if err != nil {
		return nil, err
	}

	return &StackDetail{Stack: *stack, Insights: items}, nil
}

// getVisible loads a stack and enforces project visibility.
func (s *StackService) getVisible(stackID, userID uint) (*models.Stack, error) {
	var stack models.Stack
	if err := s.db.First(&stack, stackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("stack not found or access denied")
		}
		return nil, err
	}
	if !s.access.HasAccess(stack.ProjectID, userID) {
		return nil, response.NewNotFound("stack not found or access denied")
	}
	return &stack, nil
}

// inProject loads a stack and checks it belongs to the stated project.
// Used by chat and document referencing where the project is named by the
// caller rather than derived from the stack.
func (s *StackService) inProject(stackID, projectID uint) (*models.Stack, error) {
	var stack models.Stack
	if err := s.db.First(&stack, stackID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("stack not found in this project")
		}
		return nil, err
	}
	if stack.ProjectID != projectID {
		return nil, response.NewNotFound("stack not found in this project")
	}
	return &stack, nil
}
