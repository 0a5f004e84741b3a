package models

import (
	"time"
)

// Image is an uploaded picture attached to a stack. ThumbnailPath is filled
// in asynchronously once the resize task has run.
type Image struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	ProjectID     uint      `gorm:"index;not null" json:"project_id"`
	Project       *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	StackID       uint      `gorm:"index;not null" json:"stack_id"`
	Stack         *Stack    `gorm:"foreignKey:StackID;constraint:OnDelete:CASCADE" json:"-"`
	Name          string    `gorm:"size:255;not null" json:"name"`
	FilePath      string    `gorm:"size:500;not null" json:"file_path"`
	ThumbnailPath string    `gorm:"size:500" json:"thumbnail_path,omitempty"`
	MimeType      string    `gorm:"size:100" json:"mime_type"`
	FileSize      int64     `json:"file_size"`
	CreatedBy     uint      `gorm:"not null" json:"created_by"`
	Creator       *User     `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ImageTag joins tags onto images, unique per pair.
type ImageTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ImageID   uint      `gorm:"uniqueIndex:idx_image_tag;not null" json:"image_id"`
	Image     *Image    `gorm:"foreignKey:ImageID;constraint:OnDelete:CASCADE" json:"-"`
	TagID     uint      `gorm:"uniqueIndex:idx_image_tag;not null" json:"tag_id"`
	Tag       *Tag      `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (Image) TableName() string    { return "images" }
func (ImageTag) TableName() string { return "image_tags" }
