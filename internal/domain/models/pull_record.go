package models

import "time"

// PullRecord tracks pull requests opened through this system. GitHub
// attributes app-created pull requests to the app's bot user, so the human
// author is recorded here and consulted when a close is requested.
type PullRecord struct {
	ID         int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Number     int       `json:"number" gorm:"uniqueIndex;not null"`
	HeadBranch string    `json:"head_branch" gorm:"index;not null;size:255"`
	Author     string    `json:"author" gorm:"not null;size:255"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for the PullRecord model
func (PullRecord) TableName() string {
	return "pull_records"
}
