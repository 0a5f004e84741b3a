package models

import (
	"time"
)

// Insight is a free-text research note inside a stack.
type Insight struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	StackID   uint      `gorm:"index;not null" json:"stack_id"`
	Stack     *Stack    `gorm:"foreignKey:StackID;constraint:OnDelete:CASCADE" json:"stack,omitempty"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedBy uint      `gorm:"not null" json:"created_by"`
	Creator   *User     `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InsightTag joins tags onto insights, unique per pair.
type InsightTag struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	InsightID uint      `gorm:"uniqueIndex:idx_insight_tag;not null" json:"insight_id"`
	Insight   *Insight  `gorm:"foreignKey:InsightID;constraint:OnDelete:CASCADE" json:"-"`
	TagID     uint      `gorm:"uniqueIndex:idx_insight_tag;not null" json:"tag_id"`
	Tag       *Tag      `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// InsightDocument links an insight to a document. The schema allows many
// rows per insight; the service layer enforces the single-link invariant.
type InsightDocument struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	InsightID  uint      `gorm:"uniqueIndex:idx_insight_document;not null" json:"insight_id"`
	Insight    *Insight  `gorm:"foreignKey:InsightID;constraint:OnDelete:CASCADE" json:"-"`
	DocumentID uint      `gorm:"uniqueIndex:idx_insight_document;not null" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Insight) TableName() string         { return "insights" }
func (InsightTag) TableName() string      { return "insight_tags" }
func (InsightDocument) TableName() string { return "insight_documents" }
