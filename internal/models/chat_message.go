package models

import (
	"time"
)

// Chat message type discriminator values.
const (
	MessageTypeUser    = "user"
	MessageTypeSystem  = "system"
	MessageTypeCommand = "command"
)

// ChatMessage is one entry in a project's chat log, optionally scoped to a
// stack. A nil UserID means the message was generated by the system.
type ChatMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	StackID     *uint     `gorm:"index" json:"stack_id,omitempty"`
	Stack       *Stack    `gorm:"foreignKey:StackID;constraint:OnDelete:CASCADE" json:"-"`
	UserID      *uint     `json:"user_id,omitempty"`
	User        *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	MessageType string    `gorm:"size:20;default:user" json:"message_type"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ChatMessage) TableName() string { return "chat_messages" }
