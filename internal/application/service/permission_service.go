package service

import (
	"context"
	"sort"

	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// PermissionService answers authorization questions. A user's effective
// permissions are the union over their groups; Admin membership passes
// every check. Stored values that do not parse as a known permission
// grant nothing.
type PermissionService struct {
	groupRepo repository.GroupRepository
	log       *logger.Logger
}

// NewPermissionService creates a new PermissionService instance
func NewPermissionService(groupRepo repository.GroupRepository) *PermissionService {
	return &PermissionService{
		groupRepo: groupRepo,
		log:       logger.Get().WithFields(logger.Component("permissions")),
	}
}

// IsAdmin reports whether the user belongs to the Admin group
func (s *PermissionService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	groups, err := s.groupRepo.GroupsOf(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, group := range groups {
		if group.IsAdmin() {
			return true, nil
		}
	}
	return false, nil
}

// Require returns nil when the user holds the permission, a forbidden
// error otherwise
func (s *PermissionService) Require(ctx context.Context, userID int64, perm models.Permission) error {
	admin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if admin {
		return nil
	}

	stored, err := s.groupRepo.PermissionsOf(ctx, userID)
	if err != nil {
		return err
	}
	for _, raw := range stored {
		parsed, err := models.ParsePermission(raw)
		if err != nil {
			s.log.Warn("Ignoring unknown stored permission",
				logger.String("permission", raw),
				logger.UserID(userID),
			)
			continue
		}
		if parsed == perm {
			return nil
		}
	}

	return apperror.Forbidden("missing permission "+perm.String(), apperror.ErrForbidden)
}

// EffectivePermissions returns the parsed, de-duplicated permission set
// of a user, sorted by name. Admins hold every permission.
func (s *PermissionService) EffectivePermissions(ctx context.Context, userID int64) ([]models.Permission, error) {
	admin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return nil, err
	}
	if admin {
		return models.AllPermissions(), nil
	}

	stored, err := s.groupRepo.PermissionsOf(ctx, userID)
	if err != nil {
		return nil, err
	}

	set := make(map[models.Permission]bool, len(stored))
	for _, raw := range stored {
		parsed, err := models.ParsePermission(raw)
		if err != nil {
			continue
		}
		set[parsed] = true
	}

	perms := make([]models.Permission, 0, len(set))
	for perm := range set {
		perms = append(perms, perm)
	}
	sort.Slice(perms, func(i, j int) bool { return perms[i] < perms[j] })
	return perms, nil
}
