package models

import (
	"time"
)

// Tag is a project-scoped label with a mandatory primary color and an
// optional secondary one. Names are unique per project.
type Tag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_tag_name;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Name      string    `gorm:"uniqueIndex:idx_project_tag_name;size:100;not null" json:"name"`
	Color1    string    `gorm:"size:20;default:#007AFF" json:"color1"`
	Color2    string    `gorm:"size:20" json:"color2,omitempty"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Tag) TableName() string { return "tags" }
