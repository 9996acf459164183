package git

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

// CommitOptions carries the metadata of a content commit
type CommitOptions struct {
	// Message is the commit message; empty gets a generated default
	Message string
	// Author is the username of the editor making the change
	Author string
}

// validateRelPath rejects empty, absolute and traversing paths. The
// returned path is slash-separated and cleaned.
func validateRelPath(p string) (string, error) {
	p = path.Clean(strings.ReplaceAll(p, "\\", "/"))
	if p == "" || p == "." || path.IsAbs(p) {
		return "", apperror.ValidationError("path", "invalid path")
	}
	if p == ".." || strings.HasPrefix(p, "../") {
		return "", apperror.ValidationError("path", "path escapes the repository")
	}
	return p, nil
}

// docPath resolves a document path relative to the docs subdirectory
func (m *Manager) docPath(p string) (string, error) {
	rel, err := validateRelPath(p)
	if err != nil {
		return "", err
	}
	return path.Join(m.docsPath, rel), nil
}

// assetPathOf resolves an asset path relative to the assets subdirectory
func (m *Manager) assetPathOf(p string) (string, error) {
	rel, err := validateRelPath(p)
	if err != nil {
		return "", err
	}
	return path.Join(m.assetPath, rel), nil
}

// ReadDoc returns the contents of a document on the current branch
func (m *Manager) ReadDoc(p string) ([]byte, error) {
	repoRel, err := m.docPath(p)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readFileLocked(repoRel)
}

// ReadAsset returns the contents of an asset on the current branch
func (m *Manager) ReadAsset(p string) ([]byte, error) {
	repoRel, err := m.assetPathOf(p)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.readFileLocked(repoRel)
}

func (m *Manager) readFileLocked(repoRel string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(m.repoPath, filepath.FromSlash(repoRel)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.NotFound("file", apperror.ErrNotFound)
		}
		return nil, apperror.GitError("read file", err)
	}
	return data, nil
}

// WriteDoc writes a document on the current branch, committing and
// pushing in the same operation
func (m *Manager) WriteDoc(ctx context.Context, p string, contents []byte, opts CommitOptions) (string, error) {
	repoRel, err := m.docPath(p)
	if err != nil {
		return "", err
	}
	return m.writeAndPush(ctx, repoRel, contents, opts)
}

// WriteAsset writes an asset on the current branch, committing and
// pushing in the same operation
func (m *Manager) WriteAsset(ctx context.Context, p string, contents []byte, opts CommitOptions) (string, error) {
	repoRel, err := m.assetPathOf(p)
	if err != nil {
		return "", err
	}
	return m.writeAndPush(ctx, repoRel, contents, opts)
}

// DeleteDoc removes a document on the current branch, committing and
// pushing in the same operation
func (m *Manager) DeleteDoc(ctx context.Context, p string, opts CommitOptions) (string, error) {
	repoRel, err := m.docPath(p)
	if err != nil {
		return "", err
	}
	return m.deleteAndPush(ctx, repoRel, opts)
}

// DeleteAsset removes an asset on the current branch, committing and
// pushing in the same operation
func (m *Manager) DeleteAsset(ctx context.Context, p string, opts CommitOptions) (string, error) {
	repoRel, err := m.assetPathOf(p)
	if err != nil {
		return "", err
	}
	return m.deleteAndPush(ctx, repoRel, opts)
}

func (m *Manager) writeAndPush(ctx context.Context, repoRel string, contents []byte, opts CommitOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs := filepath.Join(m.repoPath, filepath.FromSlash(repoRel))
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", apperror.GitError("create directory", err)
	}
	if err := os.WriteFile(abs, contents, 0o644); err != nil {
		return "", apperror.GitError("write file", err)
	}

	if opts.Message == "" {
		opts.Message = fmt.Sprintf("Update %s", repoRel)
	}
	return m.commitAndPushLocked(ctx, repoRel, opts)
}

func (m *Manager) deleteAndPush(ctx context.Context, repoRel string, opts CommitOptions) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	abs := filepath.Join(m.repoPath, filepath.FromSlash(repoRel))
	if _, err := os.Stat(abs); err != nil {
		if os.IsNotExist(err) {
			return "", apperror.NotFound("file", apperror.ErrNotFound)
		}
		return "", apperror.GitError("stat file", err)
	}
	if err := os.Remove(abs); err != nil {
		return "", apperror.GitError("remove file", err)
	}

	if opts.Message == "" {
		opts.Message = fmt.Sprintf("Delete %s", repoRel)
	}
	return m.commitAndPushLocked(ctx, repoRel, opts)
}

// commitAndPushLocked stages the path, commits it and pushes the current
// branch. Success is reported only after the push lands; a push the
// remote rejects as non-fast-forward surfaces as a conflict.
func (m *Manager) commitAndPushLocked(ctx context.Context, repoRel string, opts CommitOptions) (string, error) {
	wt, err := m.repo.Worktree()
	if err != nil {
		return "", apperror.GitError("open worktree", err)
	}

	if _, err := wt.Add(repoRel); err != nil {
		return "", apperror.GitError("stage file", err)
	}

	// Saving contents identical to the committed state leaves nothing to
	// commit; report the current head instead of failing on an empty commit
	status, err := wt.Status()
	if err != nil {
		return "", apperror.GitError("worktree status", err)
	}
	if status.IsClean() {
		head, err := m.repo.Head()
		if err != nil {
			return "", apperror.GitError("resolve head", err)
		}
		return head.Hash().String(), nil
	}

	hash, err := wt.Commit(opts.Message, &git.CommitOptions{
		Author: signature(opts.Author),
	})
	if err != nil {
		return "", apperror.GitError("commit", err)
	}

	branch, err := m.currentBranchLocked()
	if err != nil {
		return "", err
	}

	if err := m.pushLocked(ctx, branch); err != nil {
		return "", err
	}

	m.log.Info("Committed and pushed",
		logger.Branch(branch),
		logger.Commit(hash.String()),
		logger.String("path", repoRel),
	)
	return hash.String(), nil
}

// pushLocked pushes one branch to the remote, creating it there when it
// does not exist yet
func (m *Manager) pushLocked(ctx context.Context, branch string) error {
	auth, err := m.auth(ctx)
	if err != nil {
		return err
	}

	refspec := gitconfig.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch))
	err = m.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []gitconfig.RefSpec{refspec},
		Auth:       auth,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		if strings.Contains(err.Error(), "non-fast-forward") {
			return apperror.Conflict(
				fmt.Sprintf("push of %s rejected, branch has diverged from the remote", branch),
				apperror.ErrNonFastForward,
			)
		}
		return apperror.GitError("push", err)
	}

	// Keep the remote-tracking ref in step with what was just pushed
	localRef, err := m.repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err == nil {
		remoteRef := plumbing.NewHashReference(plumbing.NewRemoteReferenceName(remoteName, branch), localRef.Hash())
		_ = m.repo.Storer.SetReference(remoteRef)
	}
	return nil
}
