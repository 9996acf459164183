package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"github.com/bravo68web/scribe/internal/config"
	apperror "github.com/bravo68web/scribe/pkg/errors"
	"github.com/bravo68web/scribe/pkg/logger"
)

const remoteName = "origin"

// TokenProvider supplies installation access tokens for authenticated
// fetches and pushes
type TokenProvider interface {
	InstallationToken(ctx context.Context) (string, error)
}

// Branch describes one branch of the tracked repository
type Branch struct {
	Name        string `json:"name"`
	IsProtected bool   `json:"is_protected"`
	IsCurrent   bool   `json:"is_current"`
}

// Commit describes the tip commit of the working tree
type Commit struct {
	Hash    string    `json:"hash"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	When    time.Time `json:"when"`
}

// Manager owns the single local clone of the documentation repository.
// Every operation, including its network phase, runs under one mutex so
// the working tree is never observed mid-operation.
type Manager struct {
	mu sync.Mutex

	repo *git.Repository

	repoURL       string
	repoPath      string
	docsPath      string
	assetPath     string
	defaultBranch string
	protected     map[string]bool

	tokens TokenProvider
	log    *logger.Logger
}

// NewManager creates a Manager and opens the local clone, cloning from the
// remote when the path does not hold a repository yet. Failure here is a
// startup failure.
func NewManager(ctx context.Context, files *config.FilesConfig, gh *config.GitHubConfig, tokens TokenProvider) (*Manager, error) {
	protected := make(map[string]bool, len(gh.ProtectedBranches))
	for _, name := range gh.ProtectedBranches {
		protected[name] = true
	}

	m := &Manager{
		repoURL:       files.RepoURL,
		repoPath:      files.RepoPath,
		docsPath:      files.DocsPath,
		assetPath:     files.AssetPath,
		defaultBranch: gh.DefaultBranch,
		protected:     protected,
		tokens:        tokens,
		log:           logger.Get().WithFields(logger.Component("git")),
	}

	if err := m.openOrClone(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// auth builds push/fetch credentials from a fresh installation token.
// GitHub accepts installation tokens as the password of the literal
// x-access-token user.
func (m *Manager) auth(ctx context.Context) (*githttp.BasicAuth, error) {
	token, err := m.tokens.InstallationToken(ctx)
	if err != nil {
		return nil, err
	}
	return &githttp.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}, nil
}

func (m *Manager) openOrClone(ctx context.Context) error {
	repo, err := git.PlainOpen(m.repoPath)
	if err == nil {
		m.repo = repo
		m.log.Info("Opened existing clone",
			logger.String("path", m.repoPath),
		)
		return nil
	}
	if err != git.ErrRepositoryNotExists {
		return apperror.GitError("open repository", err)
	}

	m.log.Info("Cloning repository...",
		logger.String("url", m.repoURL),
		logger.String("path", m.repoPath),
	)

	auth, err := m.auth(ctx)
	if err != nil {
		return err
	}

	repo, err = git.PlainCloneContext(ctx, m.repoPath, false, &git.CloneOptions{
		URL:  m.repoURL,
		Auth: auth,
	})
	if err != nil {
		return apperror.GitError("clone repository", err)
	}

	m.repo = repo
	return nil
}

// IsProtected reports whether a branch is in the configured protected set
func (m *Manager) IsProtected(branch string) bool {
	return m.protected[branch]
}

// validateBranchName rejects names git itself would refuse
func validateBranchName(name string) error {
	if name == "" || strings.HasPrefix(name, "-") || strings.Contains(name, "..") {
		return apperror.ValidationError("branch", "invalid branch name")
	}
	if err := plumbing.NewBranchReferenceName(name).Validate(); err != nil {
		return apperror.ValidationError("branch", "invalid branch name")
	}
	return nil
}

// CurrentBranch returns the branch the working tree is on
func (m *Manager) CurrentBranch() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentBranchLocked()
}

func (m *Manager) currentBranchLocked() (string, error) {
	head, err := m.repo.Head()
	if err != nil {
		return "", apperror.GitError("read HEAD", err)
	}
	return head.Name().Short(), nil
}

// LastCommit returns the tip commit of the current branch
func (m *Manager) LastCommit() (*Commit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	head, err := m.repo.Head()
	if err != nil {
		return nil, apperror.GitError("read HEAD", err)
	}
	commit, err := m.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, apperror.GitError("read commit", err)
	}

	return &Commit{
		Hash:    commit.Hash.String(),
		Message: commit.Message,
		Author:  commit.Author.Name,
		When:    commit.Author.When,
	}, nil
}

// ListBranches returns local and remote branches, de-duplicated, with
// protection and current flags
func (m *Manager) ListBranches() ([]Branch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, err := m.currentBranchLocked()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	branches := []Branch{}

	add := func(name string) {
		if name == "" || name == "HEAD" || seen[name] {
			return
		}
		seen[name] = true
		branches = append(branches, Branch{
			Name:        name,
			IsProtected: m.protected[name],
			IsCurrent:   name == current,
		})
	}

	localIter, err := m.repo.Branches()
	if err != nil {
		return nil, apperror.GitError("list branches", err)
	}
	err = localIter.ForEach(func(ref *plumbing.Reference) error {
		add(ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, apperror.GitError("iterate branches", err)
	}

	refIter, err := m.repo.References()
	if err != nil {
		return nil, apperror.GitError("list references", err)
	}
	prefix := "refs/remotes/" + remoteName + "/"
	err = refIter.ForEach(func(ref *plumbing.Reference) error {
		name := ref.Name().String()
		if strings.HasPrefix(name, prefix) {
			add(strings.TrimPrefix(name, prefix))
		}
		return nil
	})
	if err != nil {
		return nil, apperror.GitError("iterate references", err)
	}

	return branches, nil
}

// Checkout switches the working tree to the named branch. A branch known
// only to the remote gets a local tracking branch; a branch known nowhere
// is created from the tip of the default branch.
func (m *Manager) Checkout(ctx context.Context, name string) error {
	if err := validateBranchName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	wt, err := m.repo.Worktree()
	if err != nil {
		return apperror.GitError("open worktree", err)
	}

	branchRef := plumbing.NewBranchReferenceName(name)

	// Local branch exists
	if _, err := m.repo.Reference(branchRef, true); err == nil {
		if err := wt.Checkout(&git.CheckoutOptions{Branch: branchRef}); err != nil {
			return apperror.GitError("checkout branch", err)
		}
		m.log.Info("Checked out branch", logger.Branch(name))
		return nil
	}

	// Remote-tracking branch exists
	remoteRef := plumbing.NewRemoteReferenceName(remoteName, name)
	if ref, err := m.repo.Reference(remoteRef, true); err == nil {
		err := wt.Checkout(&git.CheckoutOptions{
			Branch: branchRef,
			Hash:   ref.Hash(),
			Create: true,
		})
		if err != nil {
			return apperror.GitError("checkout remote branch", err)
		}
		m.log.Info("Created local branch from remote", logger.Branch(name))
		return nil
	}

	// Unknown everywhere, branch off the default branch tip
	baseRef, err := m.repo.Reference(plumbing.NewBranchReferenceName(m.defaultBranch), true)
	if err != nil {
		return apperror.GitError("resolve default branch", err)
	}
	err = wt.Checkout(&git.CheckoutOptions{
		Branch: branchRef,
		Hash:   baseRef.Hash(),
		Create: true,
	})
	if err != nil {
		return apperror.GitError("create branch", err)
	}

	m.log.Info("Created new branch",
		logger.Branch(name),
		logger.String("base", m.defaultBranch),
	)
	return nil
}

// Pull fetches the remote and fast-forwards the named branch. A local
// branch that has diverged from the remote is reported as a conflict and
// left untouched.
func (m *Manager) Pull(ctx context.Context, name string) error {
	if err := validateBranchName(name); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pullLocked(ctx, name)
}

func (m *Manager) pullLocked(ctx context.Context, name string) error {
	auth, err := m.auth(ctx)
	if err != nil {
		return err
	}

	err = m.repo.FetchContext(ctx, &git.FetchOptions{
		RemoteName: remoteName,
		RefSpecs: []gitconfig.RefSpec{
			gitconfig.RefSpec(fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", remoteName)),
		},
		Auth: auth,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return apperror.GitError("fetch", err)
	}

	remoteRef, err := m.repo.Reference(plumbing.NewRemoteReferenceName(remoteName, name), true)
	if err != nil {
		return apperror.NotFound("branch", apperror.ErrBranchNotFound)
	}

	branchRef := plumbing.NewBranchReferenceName(name)
	localRef, err := m.repo.Reference(branchRef, true)
	if err != nil {
		// Not yet local; fetched ref is all we need
		return nil
	}

	if localRef.Hash() == remoteRef.Hash() {
		return nil
	}

	localCommit, err := m.repo.CommitObject(localRef.Hash())
	if err != nil {
		return apperror.GitError("read local commit", err)
	}
	remoteCommit, err := m.repo.CommitObject(remoteRef.Hash())
	if err != nil {
		return apperror.GitError("read remote commit", err)
	}

	isAncestor, err := localCommit.IsAncestor(remoteCommit)
	if err != nil {
		return apperror.GitError("compare commits", err)
	}
	if !isAncestor {
		return apperror.Conflict(
			fmt.Sprintf("branch %s has diverged from the remote", name),
			apperror.ErrNonFastForward,
		)
	}

	if err := m.repo.Storer.SetReference(plumbing.NewHashReference(branchRef, remoteRef.Hash())); err != nil {
		return apperror.GitError("fast-forward branch", err)
	}

	// Sync the working tree if the fast-forwarded branch is checked out
	current, err := m.currentBranchLocked()
	if err != nil {
		return err
	}
	if current == name {
		wt, err := m.repo.Worktree()
		if err != nil {
			return apperror.GitError("open worktree", err)
		}
		err = wt.Reset(&git.ResetOptions{
			Commit: remoteRef.Hash(),
			Mode:   git.HardReset,
		})
		if err != nil {
			return apperror.GitError("reset worktree", err)
		}
	}

	m.log.Info("Fast-forwarded branch",
		logger.Branch(name),
		logger.Commit(remoteRef.Hash().String()),
	)
	return nil
}

// Reclone rebuilds the local clone from scratch. The fresh clone lands in
// a temporary directory first so a failed clone never destroys the
// existing one.
func (m *Manager) Reclone(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	auth, err := m.auth(ctx)
	if err != nil {
		return err
	}

	parent := filepath.Dir(m.repoPath)
	tmpDir, err := os.MkdirTemp(parent, "reclone-*")
	if err != nil {
		return apperror.GitError("create temp directory", err)
	}
	defer os.RemoveAll(tmpDir)

	tmpRepo := filepath.Join(tmpDir, "repo")
	if _, err := git.PlainCloneContext(ctx, tmpRepo, false, &git.CloneOptions{
		URL:  m.repoURL,
		Auth: auth,
	}); err != nil {
		return apperror.GitError("clone repository", err)
	}

	if err := os.RemoveAll(m.repoPath); err != nil {
		return apperror.GitError("remove old clone", err)
	}
	if err := os.Rename(tmpRepo, m.repoPath); err != nil {
		return apperror.GitError("swap clone", err)
	}

	// Reopen at the final path; a handle opened in the temp location
	// would keep stale filesystem paths
	repo, err := git.PlainOpen(m.repoPath)
	if err != nil {
		return apperror.GitError("open repository", err)
	}
	m.repo = repo

	m.log.Info("Recloned repository", logger.String("path", m.repoPath))
	return nil
}

// signature builds the commit author from the acting editor's username
func signature(username string) *object.Signature {
	return &object.Signature{
		Name:  username,
		Email: fmt.Sprintf("%s@users.noreply.github.com", username),
		When:  time.Now(),
	}
}
