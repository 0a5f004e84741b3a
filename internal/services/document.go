package services

import (
	"errors"
	"strings"

	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// DocumentService manages documents and the references that make a
// document visible in projects beyond its home.
type DocumentService struct {
	db     *gorm.DB
	access *AccessService
	stacks *StackService
}

func NewDocumentService(db *gorm.DB, access *AccessService, stacks *StackService) *DocumentService {
	return &DocumentService{db: db, access: access, stacks: stacks}
}

// DocumentView is a document with its tags and a flag telling whether it
// is referenced into the listed project rather than homed there.
type DocumentView struct {
	models.Document
	Tags       []models.Tag `json:"tags"`
	Referenced bool         `json:"referenced"`
}

// Create records an uploaded document homed in the project, optionally
// inside a stack.
func (s *DocumentService) Create(projectID uint, stackID *uint, userID uint, file *middleware.UploadedFile) (*models.Document, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if stackID != nil {
		if _, err := s.stacks.inProject(*stackID, projectID); err != nil {
			return nil, err
		}
	}

	doc := models.Document{
		ProjectID: &projectID,
		StackID:   stackID,
		Name:      file.Name,
		FilePath:  file.FilePath,
		MimeType:  file.MimeType,
		FileSize:  file.FileSize,
		CreatedBy: userID,
	}
	if err := s.db.Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

// CreateForStack records an upload homed in a stack, deriving the project.
func (s *DocumentService) CreateForStack(stackID, userID uint, file *middleware.UploadedFile) (*models.Document, error) {
	stack, err := s.stacks.getVisible(stackID, userID)
	if err != nil {
		return nil, err
	}
	return s.Create(stack.ProjectID, &stackID, userID, file)
}

// ListForProject returns every document visible in the project: those
// homed there plus those referenced into it, deduplicated.
func (s *DocumentService) ListForProject(projectID, userID uint) ([]DocumentView, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	var homed []models.Document
	if err := s.db.Where("project_id = ?", projectID).Order("created_at DESC").Find(&homed).Error; err != nil {
		return nil, err
	}

	var referenced []models.Document
	if err := s.db.Model(&models.Document{}).
		Joins("JOIN document_references ON document_references.document_id = documents.id").
		Where("document_references.project_id = ?", projectID).
		Order("documents.created_at DESC").
		Find(&referenced).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(homed))
	views := make([]DocumentView, 0, len(homed)+len(referenced))
	for _, doc := range homed {
		seen[doc.ID] = true
		view, err := s.decorate(doc, false)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	for _, doc := range referenced {
		if seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true
		view, err := s.decorate(doc, true)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// ListForStack returns documents homed in or referenced into the stack.
func (s *DocumentService) ListForStack(stackID, userID uint) ([]DocumentView, error) {
	stack, err := s.stacks.getVisible(stackID, userID)
	if err != nil {
		return nil, err
	}

	var homed []models.Document
	if err := s.db.Where("stack_id = ?", stackID).Order("created_at DESC").Find(&homed).Error; err != nil {
		return nil, err
	}

	var referenced []models.Document
	if err := s.db.Model(&models.Document{}).
		Joins("JOIN document_references ON document_references.document_id = documents.id").
		Where("document_references.project_id = ? AND document_references.stack_id = ?", stack.ProjectID, stackID).
		Order("documents.created_at DESC").
		Find(&referenced).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(homed))
	views := make([]DocumentView, 0, len(homed)+len(referenced))
	for _, doc := range homed {
		seen[doc.ID] = true
		view, err := s.decorate(doc, false)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	for _, doc := range referenced {
		if seen[doc.ID] {
			continue
		}
		seen[doc.ID] = true
		view, err := s.decorate(doc, true)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// UpdateDocumentRequest carries partial metadata updates.
type UpdateDocumentRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Update changes a document's name or description.
func (s *DocumentService) Update(documentID, userID uint, req *UpdateDocumentRequest) (*models.Document, error) {
	doc, err := s.getVisible(documentID, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, response.NewBadRequest("document name cannot be empty")
		}
		doc.Name = name
	}
	if req.Description != nil {
		doc.Description = strings.TrimSpace(*req.Description)
	}

	if err := s.db.Save(doc).Error; err != nil {
		return nil, err
	}
	return doc, nil
}

// Get returns one document with its tags.
func (s *DocumentService) Get(documentID, userID uint) (*DocumentView, error) {
	doc, err := s.getVisible(documentID, userID)
	if err != nil {
		return nil, err
	}
	return s.decorate(*doc, false)
}

// FilePath resolves the on-disk path for downloading.
func (s *DocumentService) FilePath(documentID, userID uint) (string, *models.Document, error) {
	doc, err := s.getVisible(documentID, userID)
	if err != nil {
		return "", nil, err
	}
	return doc.FilePath, doc, nil
}

// AddReference references a document into another project, optionally
// pinned to one of that project's stacks. The same (document, project,
// stack) triple cannot be added twice.
func (s *DocumentService) AddReference(documentID, projectID uint, stackID *uint, userID uint) (*models.DocumentReference, error) {
	if _, err := s.getVisible(documentID, userID); err != nil {
		return nil, err
	}
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if stackID != nil {
		if _, err := s.stacks.inProject(*stackID, projectID); err != nil {
			return nil, err
		}
	}

	query := s.db.Model(&models.DocumentReference{}).
		Where("document_id = ? AND project_id = ?", documentID, projectID)
	if stackID == nil {
		query = query.Where("stack_id IS NULL")
	} else {
		query = query.Where("stack_id = ?", *stackID)
	}
	var count int64
	query.Count(&count)
	if count > 0 {
		return nil, response.NewConflict("document is already referenced here")
	}

	ref := models.DocumentReference{
		DocumentID: documentID,
		ProjectID:  projectID,
		StackID:    stackID,
		AddedBy:    userID,
	}
	if err := s.db.Create(&ref).Error; err != nil {
		if isDuplicateErr(err) {
			return nil, response.NewConflict("document is already referenced here")
		}
		return nil, err
	}
	return &ref, nil
}

// RemoveReference drops a reference. Removing one that does not exist is
// a no-op.
func (s *DocumentService) RemoveReference(documentID, projectID uint, stackID *uint, userID uint) error {
	if _, err := s.getVisible(documentID, userID); err != nil {
		return err
	}
	if !s.access.HasAccess(projectID, userID) {
		return errProjectAccess
	}

	query := s.db.Where("document_id = ? AND project_id = ?", documentID, projectID)
	if stackID == nil {
		query = query.Where("stack_id IS NULL")
	} else {
		query = query.Where("stack_id = ?", *stackID)
	}
	return query.Delete(&models.DocumentReference{}).Error
}

// ListReferences returns every reference carried by a document.
func (s *DocumentService) ListReferences(documentID, userID uint) ([]models.DocumentReference, error) {
	if _, err := s.getVisible(documentID, userID); err != nil {
		return nil, err
	}
	refs := []models.DocumentReference{}
	err := s.db.Where("document_id = ?", documentID).Order("created_at ASC").Find(&refs).Error
	return refs, err
}

// Delete removes the document, its references, insight links, tag
// attachments and its file.
func (s *DocumentService) Delete(documentID, userID uint) error {
	doc, err := s.getVisible(documentID, userID)
	if err != nil {
		return err
	}
	ownerOverride := doc.ProjectID != nil && s.access.IsOwner(*doc.ProjectID, userID)
	if doc.CreatedBy != userID && !ownerOverride {
		return response.NewForbidden("only the uploader or the project owner can delete documents")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentReference{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.InsightDocument{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.DocumentTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, doc.ID).Error
	})
	if err != nil {
		return err
	}

	removeFile(doc.FilePath)
	return nil
}

// AttachTag tags a document. The tag must come from a project the
// document is visible in.
func (s *DocumentService) AttachTag(documentID, tagID, userID uint) error {
	doc, err := s.getVisible(documentID, userID)
	if err != nil {
		return err
	}

	var tag models.Tag
	if err := s.db.First(&tag, tagID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NewNotFound("tag not found")
		}
		return err
	}
	if !s.visibleInProject(doc, tag.ProjectID) {
		return response.NewBadRequest("tag belongs to a project this document is not in")
	}

	var count int64
	s.db.Model(&models.DocumentTag{}).
		Where("document_id = ? AND tag_id = ?", documentID, tagID).
		Count(&count)
	if count > 0 {
		return response.NewConflict("tag is already attached to this document")
	}

	if err := s.db.Create(&models.DocumentTag{DocumentID: documentID, TagID: tagID}).Error; err != nil {
		if isDuplicateErr(err) {
			return response.NewConflict("tag is already attached to this document")
		}
		return err
	}
	return nil
}

// DetachTag removes a tag from a document. A missing attachment is a
// no-op.
func (s *DocumentService) DetachTag(documentID, tagID, userID uint) error {
	if _, err := s.getVisible(documentID, userID); err != nil {
		return err
	}
	return s.db.Where("document_id = ? AND tag_id = ?", documentID, tagID).
		Delete(&models.DocumentTag{}).Error
}

// getVisible loads a document the user can see: its home project or any
// project it is referenced into must be accessible.
func (s *DocumentService) getVisible(documentID, userID uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("document not found or access denied")
		}
		return nil, err
	}

	if doc.ProjectID != nil && s.access.HasAccess(*doc.ProjectID, userID) {
		return &doc, nil
	}

	var refs []models.DocumentReference
	if err := s.db.Where("document_id = ?", doc.ID).Find(&refs).Error; err != nil {
		return nil, err
	}
	for _, ref := range refs {
		if s.access.HasAccess(ref.ProjectID, userID) {
			return &doc, nil
		}
	}
	return nil, response.NewNotFound("document not found or access denied")
}

// visibleInProject reports whether the document is homed in or
// referenced into the project.
func (s *DocumentService) visibleInProject(doc *models.Document, projectID uint) bool {
	if doc.ProjectID != nil && *doc.ProjectID == projectID {
		return true
	}
	var count int64
	s.db.Model(&models.DocumentReference{}).
		Where("document_id = ? AND project_id = ?", doc.ID, projectID).
		Count(&count)
	return count > 0
}

func (s *DocumentService) decorate(doc models.Document, referenced bool) (*DocumentView, error) {
	view := DocumentView{Document: doc, Tags: []models.Tag{}, Referenced: referenced}
	err := s.db.Model(&models.Tag{}).
		Joins("JOIN document_tags ON document_tags.tag_id = tags.id").
		Where("document_tags.document_id = ?", doc.ID).
		Order("tags.name ASC").
		Find(&view.Tags).Error
	if err != nil {
		return nil, err
	}
	return &view, nil
}
