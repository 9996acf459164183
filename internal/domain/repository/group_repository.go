package repository

import (
	"context"

	"github.com/bravo68web/scribe/internal/domain/models"
)

// GroupRepository defines the interface for group and permission data access
type GroupRepository interface {
	// Create creates a new group in the database
	Create(ctx context.Context, group *models.Group) error

	// FindByID retrieves a group by its ID
	FindByID(ctx context.Context, id int64) (*models.Group, error)

	// FindByName retrieves a group by its name
	FindByName(ctx context.Context, name string) (*models.Group, error)

	// List retrieves all groups
	List(ctx context.Context) ([]*models.Group, error)

	// Delete removes a group; memberships and permissions cascade
	Delete(ctx context.Context, id int64) error

	// Members retrieves every user in the group
	Members(ctx context.Context, groupID int64) ([]*models.User, error)

	// GroupsOf retrieves every group a user belongs to
	GroupsOf(ctx context.Context, userID int64) ([]*models.Group, error)

	// AddMember adds a user to a group; adding an existing member is a no-op
	AddMember(ctx context.Context, groupID, userID int64) error

	// RemoveMember removes a user from a group
	RemoveMember(ctx context.Context, groupID, userID int64) error

	// RemoveAllMemberships removes a user from every group
	RemoveAllMemberships(ctx context.Context, userID int64) error

	// Permissions retrieves the raw stored permission strings of a group
	Permissions(ctx context.Context, groupID int64) ([]string, error)

	// PermissionsOf retrieves the raw stored permission strings granted to a
	// user through any group membership, de-duplicated
	PermissionsOf(ctx context.Context, userID int64) ([]string, error)

	// ReplacePermissions replaces the permission set of a group
	ReplacePermissions(ctx context.Context, groupID int64, perms []models.Permission) error
}

// PullRecordRepository tracks the authorship of pull requests opened here
type PullRecordRepository interface {
	// Upsert records a pull request number with its head branch and author,
	// updating the row if the number is already known
	Upsert(ctx context.Context, record *models.PullRecord) error

	// FindByNumber retrieves the record for a pull request number
	FindByNumber(ctx context.Context, number int) (*models.PullRecord, error)

	// DeleteByNumber removes the record for a closed pull request
	DeleteByNumber(ctx context.Context, number int) error
}
