package service

import (
	"context"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/infrastructure/git"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// RepoService exposes branch and content operations on the tracked
// repository, enforcing the protected-branch rule on top of the git layer
type RepoService struct {
	manager     *git.Manager
	permissions *PermissionService
	log         *logger.Logger
}

// NewRepoService creates a new RepoService instance
func NewRepoService(manager *git.Manager, permissions *PermissionService) *RepoService {
	return &RepoService{
		manager:     manager,
		permissions: permissions,
		log:         logger.Get().WithFields(logger.Component("repo")),
	}
}

// requireBranchAccess enforces ManageBranches for protected branches
func (s *RepoService) requireBranchAccess(ctx context.Context, user *models.User, branch string) error {
	if !s.manager.IsProtected(branch) {
		return nil
	}
	if err := s.permissions.Require(ctx, user.ID, models.PermissionManageBranches); err != nil {
		return apperror.Forbidden("branch "+branch+" is protected", apperror.ErrProtectedBranch)
	}
	return nil
}

// requireCurrentBranchWrite guards content writes: ManageContent always,
// plus ManageBranches when the working tree is on a protected branch
func (s *RepoService) requireCurrentBranchWrite(ctx context.Context, user *models.User) error {
	if err := s.permissions.Require(ctx, user.ID, models.PermissionManageContent); err != nil {
		return err
	}
	branch, err := s.manager.CurrentBranch()
	if err != nil {
		return err
	}
	return s.requireBranchAccess(ctx, user, branch)
}

// Branches lists local and remote branches
func (s *RepoService) Branches() ([]git.Branch, error) {
	return s.manager.ListBranches()
}

// CurrentBranch reports the branch the working tree is on
func (s *RepoService) CurrentBranch() (string, error) {
	return s.manager.CurrentBranch()
}

// LastCommit reports the tip commit of the current branch
func (s *RepoService) LastCommit() (*git.Commit, error) {
	return s.manager.LastCommit()
}

// Checkout switches the working tree to a branch, creating it from the
// base branch when it exists nowhere yet
func (s *RepoService) Checkout(ctx context.Context, user *models.User, branch string) error {
	if err := s.requireBranchAccess(ctx, user, branch); err != nil {
		return err
	}
	return s.manager.Checkout(ctx, branch)
}

// Pull fast-forwards a branch from the remote
func (s *RepoService) Pull(ctx context.Context, branch string) error {
	return s.manager.Pull(ctx, branch)
}

// Reclone rebuilds the local clone from the remote
func (s *RepoService) Reclone(ctx context.Context) error {
	return s.manager.Reclone(ctx)
}

// ReadDoc returns a document from the current branch
func (s *RepoService) ReadDoc(path string) ([]byte, error) {
	return s.manager.ReadDoc(path)
}

// ReadAsset returns an asset from the current branch
func (s *RepoService) ReadAsset(path string) ([]byte, error) {
	return s.manager.ReadAsset(path)
}

// DocTree returns the document tree of the current branch
func (s *RepoService) DocTree() (*git.INode, error) {
	return s.manager.DocTree()
}

// AssetTree returns the asset tree of the current branch
func (s *RepoService) AssetTree() (*git.INode, error) {
	return s.manager.AssetTree()
}

// WriteDoc saves a document, committing and pushing on the current branch
func (s *RepoService) WriteDoc(ctx context.Context, user *models.User, path string, req *dto.SaveDocRequest) (string, error) {
	if err := s.requireCurrentBranchWrite(ctx, user); err != nil {
		return "", err
	}
	return s.manager.WriteDoc(ctx, path, []byte(req.Content), git.CommitOptions{
		Message: req.Message,
		Author:  user.Username,
	})
}

// DeleteDoc removes a document, committing and pushing on the current branch
func (s *RepoService) DeleteDoc(ctx context.Context, user *models.User, path, message string) (string, error) {
	if err := s.requireCurrentBranchWrite(ctx, user); err != nil {
		return "", err
	}
	return s.manager.DeleteDoc(ctx, path, git.CommitOptions{
		Message: message,
		Author:  user.Username,
	})
}

// WriteAsset saves an asset, committing and pushing on the current branch
func (s *RepoService) WriteAsset(ctx context.Context, user *models.User, path string, contents []byte, message string) (string, error) {
	if err := s.requireCurrentBranchWrite(ctx, user); err != nil {
		return "", err
	}
	return s.manager.WriteAsset(ctx, path, contents, git.CommitOptions{
		Message: message,
		Author:  user.Username,
	})
}

// DeleteAsset removes an asset, committing and pushing on the current branch
func (s *RepoService) DeleteAsset(ctx context.Context, user *models.User, path, message string) (string, error) {
	if err := s.requireCurrentBranchWrite(ctx, user); err != nil {
		return "", err
	}
	return s.manager.DeleteAsset(ctx, path, git.CommitOptions{
		Message: message,
		Author:  user.Username,
	})
}
