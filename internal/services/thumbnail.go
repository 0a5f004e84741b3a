package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/stackroom/backend/internal/models"
	"github.com/stackroom/backend/pkg/logger"
	"gorm.io/gorm"
)

// ThumbnailService renders downscaled previews for uploaded images and
// records the result on the image row. It runs as the task queue's
// processor.
type ThumbnailService struct {
	db    *gorm.DB
	width int
}

func NewThumbnailService(db *gorm.DB, width int) *ThumbnailService {
	if width <= 0 {
		width = 320
	}
	return &ThumbnailService{db: db, width: width}
}

// Process renders the thumbnail for a single task. Failures are returned
// so the async queue can retry; the original image stays usable either way.
func (s *ThumbnailService) Process(ctx context.Context, task *ThumbnailTask) error {
	src, err := imaging.Open(task.FilePath, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("open image %s: %w", task.FilePath, err)
	}

	// Height 0 preserves aspect ratio.
	thumb := imaging.Resize(src, s.width, 0, imaging.Lanczos)

	thumbPath := thumbnailPath(task.FilePath)
	if err := imaging.Save(thumb, thumbPath); err != nil {
		return fmt.Errorf("save thumbnail %s: %w", thumbPath, err)
	}

	if err := s.db.WithContext(ctx).Model(&models.Image{}).
		Where("id = ?", task.ImageID).
		Update("thumbnail_path", thumbPath).Error; err != nil {
		return err
	}

	logger.Infof("[Thumbnail] Generated %s for image %d", thumbPath, task.ImageID)
	return nil
}

// thumbnailPath derives the sidecar path: photo.png -> photo_thumb.png.
// JPEG output is forced for formats imaging cannot encode.
func thumbnailPath(original string) string {
	ext := filepath.Ext(original)
	base := strings.TrimSuffix(original, ext)
	switch strings.ToLower(ext) {
	case ".jpg", ".jpeg", ".png", ".gif", ".tif", ".tiff", ".bmp":
		return base + "_thumb" + ext
	default:
		return base + "_thumb.jpg"
	}
}
