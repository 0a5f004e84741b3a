package models

import (
	"time"
)

// Document is an uploaded file with a single home project/stack. It can be
// referenced into other projects via DocumentReference without moving.
type Document struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   *uint     `gorm:"index" json:"project_id,omitempty"`
	Project     *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	StackID     *uint     `gorm:"index" json:"stack_id,omitempty"`
	Stack       *Stack    `gorm:"foreignKey:StackID;constraint:OnDelete:CASCADE" json:"-"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	FilePath    string    `gorm:"size:500;not null" json:"file_path"`
	MimeType    string    `gorm:"size:100" json:"mime_type"`
	FileSize    int64     `json:"file_size"`
	CreatedBy   uint      `gorm:"not null" json:"created_by"`
	Creator     *User     `gorm:"foreignKey:CreatedBy;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DocumentReference cross-references a document into another project (and
// optionally one of its stacks). Unique per (document, project, stack)
// triple, nulls included.
type DocumentReference struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"uniqueIndex:idx_document_reference;not null" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	ProjectID  uint      `gorm:"uniqueIndex:idx_document_reference;not null" json:"project_id"`
	Project    *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	StackID    *uint     `gorm:"uniqueIndex:idx_document_reference" json:"stack_id,omitempty"`
	Stack      *Stack    `gorm:"foreignKey:StackID;constraint:OnDelete:CASCADE" json:"-"`
	AddedBy    uint      `json:"added_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// DocumentTag joins tags onto documents, unique per pair.
type DocumentTag struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"uniqueIndex:idx_document_tag;not null" json:"document_id"`
	Document   *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
	TagID      uint      `gorm:"uniqueIndex:idx_document_tag;not null" json:"tag_id"`
	Tag        *Tag      `gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Document) TableName() string          { return "documents" }
func (DocumentReference) TableName() string { return "document_references" }
func (DocumentTag) TableName() string       { return "document_tags" }
