package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

// GroupRepoImpl implements the GroupRepository interface using GORM
type GroupRepoImpl struct {
	db *gorm.DB
}

// NewGroupRepository creates a new GroupRepoImpl instance
func NewGroupRepository(db *gorm.DB) repository.GroupRepository {
	return &GroupRepoImpl{db: db}
}

// Create creates a new group in the database
func (r *GroupRepoImpl) Create(ctx context.Context, group *models.Group) error {
	if err := r.db.WithContext(ctx).Create(group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperror.Conflict("group already exists", err)
		}
		return apperror.DatabaseError("create group", err)
	}
	return nil
}

// FindByID retrieves a group by its ID
func (r *GroupRepoImpl) FindByID(ctx context.Context, id int64) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("group", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find group by id", err)
	}
	return &group, nil
}

// FindByName retrieves a group by its name
func (r *GroupRepoImpl) FindByName(ctx context.Context, name string) (*models.Group, error) {
	var group models.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("group", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find group by name", err)
	}
	return &group, nil
}

// List retrieves all groups
func (r *GroupRepoImpl) List(ctx context.Context) ([]*models.Group, error) {
	var groups []*models.Group
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&groups).Error; err != nil {
		return nil, apperror.DatabaseError("list groups", err)
	}
	return groups, nil
}

// Delete removes a group and its memberships and permissions.
// SQLite does not always enforce cascades through GORM, so the join
// rows are removed explicitly inside one transaction.
func (r *GroupRepoImpl) Delete(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupMembership{}).Error; err != nil {
			return err
		}
		if err := tx.Where("group_id = ?", id).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Group{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperror.NotFound("group", apperror.ErrNotFound)
		}
		return apperror.DatabaseError("delete group", err)
	}
	return nil
}

// Members retrieves every user in the group
func (r *GroupRepoImpl) Members(ctx context.Context, groupID int64) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Joins("JOIN group_membership ON group_membership.user_id = users.id").
		Where("group_membership.group_id = ?", groupID).
		Order("users.username ASC").
		Find(&users).Error
	if err != nil {
		return nil, apperror.DatabaseError("list group members", err)
	}
	return users, nil
}

// GroupsOf retrieves every group a user belongs to
func (r *GroupRepoImpl) GroupsOf(ctx context.Context, userID int64) ([]*models.Group, error) {
	var groups []*models.Group
	err := r.db.WithContext(ctx).
		Joins("JOIN group_membership ON group_membership.group_id = groups.id").
		Where("group_membership.user_id = ?", userID).
		Order("groups.name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, apperror.DatabaseError("list groups of user", err)
	}
	return groups, nil
}

// AddMember adds a user to a group; adding an existing member is a no-op
func (r *GroupRepoImpl) AddMember(ctx context.Context, groupID, userID int64) error {
	row := models.GroupMembership{GroupID: groupID, UserID: userID}
	if err := r.db.WithContext(ctx).Where(&row).FirstOrCreate(&row).Error; err != nil {
		return apperror.DatabaseError("add group member", err)
	}
	return nil
}

// RemoveMember removes a user from a group
func (r *GroupRepoImpl) RemoveMember(ctx context.Context, groupID, userID int64) error {
	result := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&models.GroupMembership{})
	if result.Error != nil {
		return apperror.DatabaseError("remove group member", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperror.NotFound("group membership", apperror.ErrNotFound)
	}
	return nil
}

// RemoveAllMemberships removes a user from every group
func (r *GroupRepoImpl) RemoveAllMemberships(ctx context.Context, userID int64) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.GroupMembership{}).Error
	if err != nil {
		return apperror.DatabaseError("remove memberships", err)
	}
	return nil
}

// Permissions retrieves the raw stored permission strings of a group
func (r *GroupRepoImpl) Permissions(ctx context.Context, groupID int64) ([]string, error) {
	var perms []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupPermission{}).
		Where("group_id = ?", groupID).
		Order("permission ASC").
		Pluck("permission", &perms).Error
	if err != nil {
		return nil, apperror.DatabaseError("list group permissions", err)
	}
	return perms, nil
}

// PermissionsOf retrieves the raw stored permission strings granted to a
// user through any group membership
func (r *GroupRepoImpl) PermissionsOf(ctx context.Context, userID int64) ([]string, error) {
	var perms []string
	err := r.db.WithContext(ctx).
		Model(&models.GroupPermission{}).
		Distinct("group_permissions.permission").
		Joins("JOIN group_membership ON group_membership.group_id = group_permissions.group_id").
		Where("group_membership.user_id = ?", userID).
		Pluck("group_permissions.permission", &perms).Error
	if err != nil {
		return nil, apperror.DatabaseError("list user permissions", err)
	}
	return perms, nil
}

// ReplacePermissions replaces the permission set of a group
func (r *GroupRepoImpl) ReplacePermissions(ctx context.Context, groupID int64, perms []models.Permission) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", groupID).Delete(&models.GroupPermission{}).Error; err != nil {
			return err
		}
		for _, perm := range perms {
			row := models.GroupPermission{GroupID: groupID, Permission: perm.String()}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return apperror.DatabaseError("replace group permissions", err)
	}
	return nil
}
