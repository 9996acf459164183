package service

import (
	"context"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// GroupService handles group administration. The seeded Admin group can
// neither be deleted nor have its permissions changed.
type GroupService struct {
	groupRepo repository.GroupRepository
	log       *logger.Logger
}

// NewGroupService creates a new GroupService instance
func NewGroupService(groupRepo repository.GroupRepository) *GroupService {
	return &GroupService{
		groupRepo: groupRepo,
		log:       logger.Get().WithFields(logger.Component("groups")),
	}
}

// List returns every group with its permission set
func (s *GroupService) List(ctx context.Context) ([]dto.GroupInfo, error) {
	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.GroupInfo, 0, len(groups))
	for _, group := range groups {
		perms, err := s.groupRepo.Permissions(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, dto.GroupInfo{
			ID:          group.ID,
			Name:        group.Name,
			Permissions: perms,
		})
	}
	return out, nil
}

// Create creates a new group with no permissions
func (s *GroupService) Create(ctx context.Context, req *dto.CreateGroupRequest) (*dto.GroupInfo, error) {
	group := &models.Group{Name: req.Name}
	if err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, err
	}

	s.log.Info("Created group", logger.String("group", group.Name))
	return &dto.GroupInfo{
		ID:          group.ID,
		Name:        group.Name,
		Permissions: []string{},
	}, nil
}

// Delete removes a group. The Admin group is refused.
func (s *GroupService) Delete(ctx context.Context, groupID int64) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsAdmin() {
		return apperror.Forbidden("the Admin group cannot be deleted", apperror.ErrAdminGroupImmutable)
	}

	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return err
	}
	s.log.Info("Deleted group", logger.String("group", group.Name))
	return nil
}

// ReplacePermissions replaces the permission set of a group. Unknown
// permission names are rejected, and the Admin group is refused.
func (s *GroupService) ReplacePermissions(ctx context.Context, groupID int64, req *dto.ReplacePermissionsRequest) error {
	group, err := s.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group.IsAdmin() {
		return apperror.Forbidden("the Admin group's permissions cannot be changed", apperror.ErrAdminGroupImmutable)
	}

	perms := make([]models.Permission, 0, len(req.Permissions))
	for _, raw := range req.Permissions {
		parsed, err := models.ParsePermission(raw)
		if err != nil {
			return apperror.ValidationError("permissions", "unknown permission "+raw)
		}
		perms = append(perms, parsed)
	}

	if err := s.groupRepo.ReplacePermissions(ctx, groupID, perms); err != nil {
		return err
	}
	s.log.Info("Replaced group permissions",
		logger.String("group", group.Name),
		logger.Int("count", len(perms)),
	)
	return nil
}
