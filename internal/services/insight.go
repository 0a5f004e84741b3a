package services

import (
	"errors"
	"strings"

	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// InsightService manages insights inside research stacks, including their
// tags and the single document link an insight may carry.
type InsightService struct {
	db     *gorm.DB
	access *AccessService
	stacks *StackService
}

func NewInsightService(db *gorm.DB, access *AccessService, stacks *StackService) *InsightService {
	return &InsightService{db: db, access: access, stacks: stacks}
}

// InsightView is an insight with its tags and linked document, if any.
type InsightView struct {
	models.Insight
	Tags     []models.Tag     `json:"tags"`
	Document *models.Document `json:"document,omitempty"`
}

// InsightListOptions filters a stack's insight listing. TagIDs requires
// every named tag to be attached; Search matches content case-insensitively.
type InsightListOptions struct {
	TagIDs []uint
	Search string
}

// Create adds an insight to a stack.
func (s *InsightService) Create(stackID, userID uint, content string) (*models.Insight, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, response.NewBadRequest("insight content is required")
	}

	if _, err := s.stacks.getVisible(stackID, userID); err != nil {
		return nil, err
	}

	insight := models.Insight{
		StackID:   stackID,
		Content:   content,
		CreatedBy: userID,
	}
	if err := s.db.Create(&insight).Error; err != nil {
		return nil, err
	}
	return &insight, nil
}

// ListForStack returns the stack's insights with tags and document links.
func (s *InsightService) ListForStack(stackID, userID uint, opts InsightListOptions) ([]InsightView, error) {
	if _, err := s.stacks.getVisible(stackID, userID); err != nil {
		return nil, err
	}
	return s.listForStack(stackID, opts)
}

func (s *InsightService) listForStack(stackID uint, opts InsightListOptions) ([]InsightView, error) {
	var insights []models.Insight
	query := s.db.Where("stack_id = ?", stackID)
	if len(opts.TagIDs) > 0 {
		query = query.
			Joins("JOIN insight_tags ON insight_tags.insight_id = insights.id").
			Where("insight_tags.tag_id IN ?", opts.TagIDs).
			Group("insights.id").
			Having("COUNT(DISTINCT insight_tags.tag_id) = ?", len(opts.TagIDs))
	}
	if opts.Search != "" {
		query = query.Where("LOWER(content) LIKE ?", "%"+strings.ToLower(opts.Search)+"%")
	}
	if err := query.Order("created_at ASC").Find(&insights).Error; err != nil {
		return nil, err
	}

	views := make([]InsightView, 0, len(insights))
	for _, in := range insights {
		view, err := s.decorate(in)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// Get returns a single insight with its tags and document link.
func (s *InsightService) Get(insightID, userID uint) (*InsightView, error) {
	insight, err := s.getVisible(insightID, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(*insight)
}

// Update changes an insight's content. Only the creator may edit.
func (s *InsightService) Update(insightID, userID uint, content string) (*models.Insight, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, response.NewBadRequest("insight content is required")
	}

	insight, err := s.getVisible(insightID, userID)
	if err != nil {
		return nil, err
	}
	if !s.canModify(insight, userID) {
		return nil, response.NewForbidden("only the insight creator or the project owner can edit it")
	}

	insight.Content = content
	if err := s.db.Save(insight).Error; err != nil {
		return nil, err
	}
	return insight, nil
}

// Delete removes an insight along with its tag and document associations.
func (s *InsightService) Delete(insightID, userID uint) error {
	insight, err := s.getVisible(insightID, userID)
	if err != nil {
		return err
	}
	if !s.canModify(insight, userID) {
		return response.NewForbidden("only the insight creator or the project owner can delete it")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("insight_id = ?", insightID).Delete(&models.InsightTag{}).Error; err != nil {
			return err
		}
		if err := tx.Where("insight_id = ?", insightID).Delete(&models.InsightDocument{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Insight{}, insightID).Error
	})
}

// AttachTag tags an insight. The tag must belong to the same project.
func (s *InsightService) AttachTag(insightID, tagID, userID uint) error {
	insight, err := s.getVisible(insightID, userID)
	if err != nil {
		return err
	}

	var stack models.Stack
	if err := s.db.First(&stack, insight.StackID).Error; err != nil {
		return err
	}

	var tag models.Tag
	if err := s.db.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("tag not found")
		}
		return err
	}
	if tag.ProjectID != stack.ProjectID {
		return response.NewBadRequest("tag belongs to a different project")
	}

	var count int64
	s.db.Model(&models.InsightTag{}).
		Where("insight_id = ? AND tag_id = ?", insightID, tagID).
		Count(&count)
	if count > 0 {
		return response.NewConflict("tag is already attached to this insight")
	}

	if err := s.db.Create(&models.InsightTag{InsightID: insightID, TagID: tagID}).Error; err != nil {
		if isDuplicateErr(err) {
			return response.NewConflict("tag is already attached to this insight")
		}
		return err
	}
	return nil
}

// DetachTag removes a tag from an insight. Detaching a tag that is not
// attached is a no-op.
func (s *InsightService) DetachTag(insightID, tagID, userID uint) error {
	if _, err := s.getVisible(insightID, userID); err != nil {
		return err
	}
	return s.db.Where("insight_id = ? AND tag_id = ?", insightID, tagID).
		Delete(&models.InsightTag{}).Error
}

// LinkDocument links a document to an insight, replacing any existing
// link. An insight carries at most one document.
func (s *InsightService) LinkDocument(insightID, documentID, userID uint) error {
	insight, err := s.getVisible(insightID, userID)
	if err != nil {
		return err
	}

	var stack models.Stack
	if err := s.db.First(&stack, insight.StackID).Error; err != nil {
		return err
	}

	var doc models.Document
	if err := s.db.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("document not found")
		}
		return err
	}
	if !s.documentVisibleInProject(doc.ID, doc.ProjectID, stack.ProjectID) {
		return response.NewNotFound("document not found")
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("insight_id = ?", insightID).Delete(&models.InsightDocument{}).Error; err != nil {
			return err
		}
		return tx.Create(&models.InsightDocument{InsightID: insightID, DocumentID: documentID}).Error
	})
}

// UnlinkDocument removes the insight's document link, if present.
func (s *InsightService) UnlinkDocument(insightID, userID uint) error {
	if _, err := s.getVisible(insightID, userID); err != nil {
		return err
	}
	return s.db.Where("insight_id = ?", insightID).Delete(&models.InsightDocument{}).Error
}

// documentVisibleInProject reports whether a document is usable from the
// given project: either it lives there or it is referenced into it.
func (s *InsightService) documentVisibleInProject(docID uint, homeProject *uint, projectID uint) bool {
	if homeProject != nil && *homeProject == projectID {
		return true
	}
	var count int64
	s.db.Model(&models.DocumentReference{}).
		Where("document_id = ? AND project_id = ?", docID, projectID).
		Count(&count)
	return count > 0
}

// canModify allows the insight's creator and the project owner.
func (s *InsightService) canModify(insight *models.Insight, userID uint) bool {
	if insight.CreatedBy == userID {
		return true
	}
	var stack models.Stack
	if err := s.db.First(&stack, insight.StackID).Error; err != nil {
		return false
	}
	return s.access.IsOwner(stack.ProjectID, userID)
}

func (s *InsightService) getVisible(insightID, userID uint) (*models.Insight, error) {
	var insight models.Insight
	if err := s.db.First(&insight, insightID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("insight not found or access denied")
		}
		return nil, err
	}
	if _, err := s.stacks.getVisible(insight.StackID, userID); err != nil {
		return nil, response.NewNotFound("insight not found or access denied")
	}
	return &insight, nil
}

func (s *InsightService) decorate(in models.Insight) (*InsightView, error) {
	view := InsightView{Insight: in, Tags: []models.Tag{}}

	if err := s.db.Model(&models.Tag{}).
		Joins("JOIN insight_tags ON insight_tags.tag_id = tags.id").
		Where("insight_tags.insight_id = ?", in.ID).
		Order("tags.name ASC").
		Find(&view.Tags).Error; err != nil {
		return nil, err
	}

	var link models.InsightDocument
	err := s.db.Where("insight_id = ?", in.ID).First(&link).Error
	if err == nil {
		var doc models.Document
		if err := s.db.First(&doc, link.DocumentID).Error; err == nil {
			view.Document = &doc
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &view, nil
}
