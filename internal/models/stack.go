package models

import (
	"time"
)

// Stack is a research stack: a named topic inside a project that insights,
// images and documents hang off. Topics are unique per project.
type Stack struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_topic;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	Topic     string    `gorm:"uniqueIndex:idx_project_topic;size:200;not null" json:"topic"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Stack) TableName() string { return "stacks" }
