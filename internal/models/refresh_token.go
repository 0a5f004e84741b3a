package models

import (
	"time"
)

// RefreshToken stores the SHA-256 hash of an issued refresh token. The raw
// token is only ever returned to the client once.
type RefreshToken struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"index;not null" json:"user_id"`
	User        *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenHash   string     `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ExpiresAt   time.Time  `gorm:"index" json:"expires_at"`
	RevokedAt   *time.Time `json:"revoked_at,omitempty"`
	CreatedByIP string     `gorm:"size:50" json:"-"`
	UserAgent   string     `gorm:"size:500" json:"-"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (RefreshToken) TableName() string { return "refresh_tokens" }

// Active reports whether the token is still usable.
func (t *RefreshToken) Active() bool {
	return t.RevokedAt == nil && time.Now().Before(t.ExpiresAt)
}
