package dto

// CreateGroupRequest carries the name of a new group
type CreateGroupRequest struct {
	Name string `json:"name" binding:"required,min=1,max=255"`
}

// ReplacePermissionsRequest carries the full new permission set of a group
type ReplacePermissionsRequest struct {
	Permissions []string `json:"permissions" binding:"required"`
}

// GroupInfo represents a group with its permission set
type GroupInfo struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

// MembershipRequest identifies the user of a membership change
type MembershipRequest struct {
	UserID int64 `json:"user_id" binding:"required"`
}
