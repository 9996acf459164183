package service

import (
	"context"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	"github.com/bravo68web/scribe/pkg/logger"
)

// UserService handles user administration
type UserService struct {
	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	permissions *PermissionService
	log         *logger.Logger
}

// NewUserService creates a new UserService instance
func NewUserService(
	userRepo repository.UserRepository,
	groupRepo repository.GroupRepository,
	permissions *PermissionService,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		permissions: permissions,
		log:         logger.Get().WithFields(logger.Component("users")),
	}
}

// List returns every user
func (s *UserService) List(ctx context.Context) ([]dto.UserInfo, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.UserInfo, 0, len(users))
	for _, user := range users {
		out = append(out, dto.UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		})
	}
	return out, nil
}

// Detail returns one user with groups and effective permissions
func (s *UserService) Detail(ctx context.Context, userID int64) (*dto.UserDetail, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.GroupsOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	perms, err := s.permissions.EffectivePermissions(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	detail := &dto.UserDetail{
		UserInfo: dto.UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		},
		Groups:      make([]string, 0, len(groups)),
		Permissions: make([]string, 0, len(perms)),
	}
	for _, group := range groups {
		detail.Groups = append(detail.Groups, group.Name)
	}
	for _, perm := range perms {
		detail.Permissions = append(detail.Permissions, perm.String())
	}
	return detail, nil
}

// Delete removes a user and all their group memberships
func (s *UserService) Delete(ctx context.Context, userID int64) error {
	if err := s.groupRepo.RemoveAllMemberships(ctx, userID); err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info("Deleted user", logger.UserID(userID))
	return nil
}

// AddToGroup adds a user to a group
func (s *UserService) AddToGroup(ctx context.Context, groupID, userID int64) error {
	if _, err := s.groupRepo.FindByID(ctx, groupID); err != nil {
		return err
	}
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return err
	}
	return s.groupRepo.AddMember(ctx, groupID, userID)
}

// RemoveFromGroup removes a user from a group
func (s *UserService) RemoveFromGroup(ctx context.Context, groupID, userID int64) error {
	return s.groupRepo.RemoveMember(ctx, groupID, userID)
}

// Me converts the session user into a UserDetail
func (s *UserService) Me(ctx context.Context, user *models.User) (*dto.UserDetail, error) {
	return s.Detail(ctx, user.ID)
}
