package models

import (
	"time"
)

// User represents a registered account. Passwords are stored as bcrypt
// hashes and never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	FirstName    string    `gorm:"size:100" json:"first_name"`
	LastName     string    `gorm:"size:100" json:"last_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Project is the root aggregate: every stack, insight, image, document, tag
// and chat message belongs to exactly one project and cascades with it.
type Project struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	Name      string     `gorm:"size:200;not null" json:"name"`
	Client    string     `gorm:"size:200" json:"client,omitempty"`
	Deadline  *time.Time `json:"deadline,omitempty"`
	OwnerID   uint       `gorm:"index;not null" json:"owner_id"`
	Owner     *User      `gorm:"foreignKey:OwnerID;constraint:OnDelete:CASCADE" json:"owner,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ProjectCollaborator joins users to projects they can work in. The owner is
// implicitly a full collaborator and never appears as a row here.
type ProjectCollaborator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_project_collaborator;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_project_collaborator;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Role      string    `gorm:"size:50;default:collaborator" json:"role"` // collaborator, viewer
	InvitedBy *uint     `json:"invited_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName overrides
func (User) TableName() string                { return "users" }
func (Project) TableName() string             { return "projects" }
func (ProjectCollaborator) TableName() string { return "project_collaborators" }

// DisplayName returns the user's full name, falling back to the username.
func (u *User) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
