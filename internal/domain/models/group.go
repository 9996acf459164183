package models

import "time"

// AdminGroupName is the distinguished group seeded at migration time.
// It cannot be deleted and its permission set cannot be reduced.
const AdminGroupName = "Admin"

// Group represents a named permission-carrying collection of users
type Group struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:255"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for the Group model
func (Group) TableName() string {
	return "groups"
}

// IsAdmin reports whether this is the distinguished Admin group
func (g *Group) IsAdmin() bool {
	return g.Name == AdminGroupName
}

// GroupMembership is the many-to-many join between users and groups.
// Rows cascade-delete with either side.
type GroupMembership struct {
	UserID  int64 `json:"user_id" gorm:"primaryKey"`
	GroupID int64 `json:"group_id" gorm:"primaryKey"`

	User  User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Group Group `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the GroupMembership model
func (GroupMembership) TableName() string {
	return "group_membership"
}

// GroupPermission is the many-to-many join between groups and permissions.
// Permission is stored as its string form; readers must parse it back
// through ParsePermission and fail closed on unknown values.
type GroupPermission struct {
	GroupID    int64  `json:"group_id" gorm:"primaryKey"`
	Permission string `json:"permission" gorm:"primaryKey;size:64"`

	Group Group `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for the GroupPermission model
func (GroupPermission) TableName() string {
	return "group_permissions"
}
