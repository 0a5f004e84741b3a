package services

import (
	"errors"
	"os"

	"github.com/stackroom/backend/internal/middleware"
	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/logger"
	"github.com/stackroom/backend/pkg/response"
	"gorm.io/gorm"
)

// ImageService manages uploaded images. Every image lives in a stack;
// thumbnails are rendered out of band through the task queue.
type ImageService struct {
	db     *gorm.DB
	access *AccessService
	stacks *StackService
	queue  TaskQueue
}

func NewImageService(db *gorm.DB, access *AccessService, stacks *StackService, queue TaskQueue) *ImageService {
	return &ImageService{db: db, access: access, stacks: stacks, queue: queue}
}

// ImageView is an image with its tags.
type ImageView struct {
	models.Image
	Tags []models.Tag `json:"tags"`
}

// ImageListOptions filters a project's image listing. TagIDs requires
// every named tag to be attached.
type ImageListOptions struct {
	StackID uint
	TagIDs  []uint
}

// Create records an uploaded image and queues its thumbnail.
func (s *ImageService) Create(projectID, stackID, userID uint, file *middleware.UploadedFile) (*models.Image, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}
	if _, err := s.stacks.inProject(stackID, projectID); err != nil {
		return nil, err
	}

	image := models.Image{
		ProjectID: projectID,
		StackID:   stackID,
		Name:      file.Name,
		FilePath:  file.FilePath,
		MimeType:  file.MimeType,
		FileSize:  file.FileSize,
		CreatedBy: userID,
	}
	if err := s.db.Create(&image).Error; err != nil {
		return nil, err
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(&ThumbnailTask{ImageID: image.ID, FilePath: image.FilePath}); err != nil {
			logger.Warnf("[Image] Failed to enqueue thumbnail for image %d: %v", image.ID, err)
		}
	}

	return &image, nil
}

// CreateForStack records an upload against a stack, deriving the project.
func (s *ImageService) CreateForStack(stackID, userID uint, file *middleware.UploadedFile) (*models.Image, error) {
	stack, err := s.stacks.getVisible(stackID, userID)
	if err != nil {
		return nil, err
	}
	return s.Create(stack.ProjectID, stackID, userID, file)
}

// ListForProject returns the project's images, newest first.
func (s *ImageService) ListForProject(projectID, userID uint, opts ImageListOptions) ([]ImageView, error) {
	if !s.access.HasAccess(projectID, userID) {
		return nil, errProjectAccess
	}

	query := s.db.Where("project_id = ?", projectID)
	if opts.StackID != 0 {
		query = query.Where("stack_id = ?", opts.StackID)
	}
	if len(opts.TagIDs) > 0 {
		query = query.
			Joins("JOIN image_tags ON image_tags.image_id = images.id").
			Where("image_tags.tag_id IN ?", opts.TagIDs).
			Group("images.id").
			Having("COUNT(DISTINCT image_tags.tag_id) = ?", len(opts.TagIDs))
	}

	var images []models.Image
	if err := query.Order("created_at DESC").Find(&images).Error; err != nil {
		return nil, err
	}

	views := make([]ImageView, 0, len(images))
	for _, img := range images {
		tags, err := s.tagsFor(img.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, ImageView{Image: img, Tags: tags})
	}
	return views, nil
}

// ListForStack returns the stack's images, newest first.
func (s *ImageService) ListForStack(stackID, userID uint, opts ImageListOptions) ([]ImageView, error) {
	stack, err := s.stacks.getVisible(stackID, userID)
	if err != nil {
		return nil, err
	}
	opts.StackID = stackID
	return s.ListForProject(stack.ProjectID, userID, opts)
}

// Get returns one image with its tags.
func (s *ImageService) Get(imageID, userID uint) (*ImageView, error) {
	image, err := s.getVisible(imageID, userID)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsFor(image.ID)
	if err != nil {
		return nil, err
	}
	return &ImageView{Image: *image, Tags: tags}, nil
}

// FilePath resolves the on-disk path for downloading, preferring the
// thumbnail when asked and it exists.
func (s *ImageService) FilePath(imageID, userID uint, thumbnail bool) (string, error) {
	image, err := s.getVisible(imageID, userID)
	if err != nil {
		return "", err
	}
	if thumbnail && image.ThumbnailPath != "" {
		return image.ThumbnailPath, nil
	}
	return image.FilePath, nil
}

// Delete removes the image record, its tag attachments and its files.
// Allowed for the uploader and the project owner.
func (s *ImageService) Delete(imageID, userID uint) error {
	image, err := s.getVisible(imageID, userID)
	if err != nil {
		return err
	}
	if image.CreatedBy != userID && !s.access.IsOwner(image.ProjectID, userID) {
		return response.NewForbidden("only the uploader or the project owner can delete images")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("image_id = ?", image.ID).Delete(&models.ImageTag{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Image{}, image.ID).Error
	})
	if err != nil {
		return err
	}

	// File cleanup is best effort; the row is already gone.
	removeFile(image.FilePath)
	removeFile(image.ThumbnailPath)
	return nil
}

// AttachTag tags an image. The tag must belong to the image's project.
func (s *ImageService) AttachTag(imageID, tagID, userID uint) error {
	image, err := s.getVisible(imageID, userID)
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
	if tag.ProjectID != image.ProjectID {
		return response.NewBadRequest("tag belongs to a different project")
	}

	var count int64
	s.db.Model(&models.ImageTag{}).
		Where("image_id = ? AND tag_id = ?", imageID, tagID).
		Count(&count)
	if count > 0 {
		return response.NewConflict("tag is already attached to this image")
	}

	if err := s.db.Create(&models.ImageTag{ImageID: imageID, TagID: tagID}).Error; err != nil {
		if isDuplicateErr(err) {
			return response.NewConflict("tag is already attached to this image")
		}
		return err
	}
	return nil
}

// DetachTag removes a tag from an image. A missing attachment is a no-op.
func (s *ImageService) DetachTag(imageID, tagID, userID uint) error {
	if _, err := s.getVisible(imageID, userID); err != nil {
		return err
	}
	return s.db.Where("image_id = ? AND tag_id = ?", imageID, tagID).
		Delete(&models.ImageTag{}).Error
}

func (s *ImageService) getVisible(imageID, userID uint) (*models.Image, error) {
	var image models.Image
	if err := s.db.First(&image, imageID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.NewNotFound("image not found or access denied")
		}
		return nil, err
	}
	if !s.access.HasAccess(image.ProjectID, userID) {
		return nil, response.NewNotFound("image not found or access denied")
	}
	return &image, nil
}

func (s *ImageService) tagsFor(imageID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	err := s.db.Model(&models.Tag{}).
		Joins("JOIN image_tags ON image_tags.tag_id = tags.id").
		Where("image_tags.image_id = ?", imageID).
		Order("tags.name ASC").
		Find(&tags).Error
	return tags, err
}

func removeFile(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("[Image] Failed to remove file %s: %v", path, err)
	}
}
