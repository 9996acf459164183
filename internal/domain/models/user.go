package models

import (
	"time"
)

// User represents an editor authenticated through the OAuth provider
type User struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	Username string `json:"username" gorm:"uniqueIndex;not null;size:255"`
	// Token is the opaque session token, regenerated on every login
	Token          string    `json:"-" gorm:"uniqueIndex;not null;type:text"`
	ExpirationDate time.Time `json:"expiration_date" gorm:"column:expiration_date;not null"`
	AvatarURL      string    `json:"avatar_url" gorm:"size:512"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// SessionExpired reports whether the session token is past its expiration.
// Expired tokens are treated as absent, never deleted eagerly.
func (u *User) SessionExpired(now time.Time) bool {
	return !u.ExpirationDate.After(now)
}
