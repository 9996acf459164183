package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/config"
	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/infrastructure/git"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

type fixtureTokens struct{}

func (fixtureTokens) InstallationToken(ctx context.Context) (string, error) {
	return "test-token", nil
}

// newGitManager builds a Manager over a bare on-disk remote with one
// commit on a protected master branch
func newGitManager(t *testing.T) *git.Manager {
	t.Helper()

	base := t.TempDir()
	seedPath := filepath.Join(base, "seed")
	seed, err := gogit.PlainInit(seedPath, false)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(seedPath, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(seedPath, "docs", "index.md"), []byte("# Home\n"), 0o644))
	wt, err := seed.Worktree()
	require.NoError(t, err)
	_, err = wt.Add("docs/index.md")
	require.NoError(t, err)
	_, err = wt.Commit("initial", &gogit.CommitOptions{
		Author: &object.Signature{Name: "seed", Email: "seed@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	remotePath := filepath.Join(base, "remote.git")
	_, err = gogit.PlainClone(remotePath, true, &gogit.CloneOptions{URL: seedPath})
	require.NoError(t, err)

	files := &config.FilesConfig{
		RepoURL:   remotePath,
		RepoPath:  filepath.Join(base, "clone"),
		DocsPath:  "docs",
		AssetPath: "assets",
	}
	gh := &config.GitHubConfig{
		DefaultBranch:     "master",
		ProtectedBranches: []string{"master"},
	}

	manager, err := git.NewManager(context.Background(), files, gh, fixtureTokens{})
	require.NoError(t, err)
	return manager
}

func TestProtectedBranchGuard(t *testing.T) {
	env := newTestEnv(t)
	manager := newGitManager(t)
	svc := NewRepoService(manager, NewPermissionService(env.groups))

	alice := env.createUser(t, "alice")
	editors := env.createGroup(t, "editors", models.PermissionManageContent)
	require.NoError(t, env.groups.AddMember(context.Background(), editors.ID, alice.ID))

	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")
	env.enrollAdmin(t, carol.ID)

	// master is protected and checked out; ManageContent alone is not enough
	_, err := svc.WriteDoc(context.Background(), alice, "a.md", &dto.SaveDocRequest{Content: "x"})
	assert.True(t, apperror.IsForbidden(err))

	// An admin holds ManageBranches and may write there
	_, err = svc.WriteDoc(context.Background(), carol, "by-admin.md", &dto.SaveDocRequest{Content: "x"})
	require.NoError(t, err)

	// Checking out a protected branch needs ManageBranches too
	err = svc.Checkout(context.Background(), alice, "master")
	assert.True(t, apperror.IsForbidden(err))

	// Unprotected branches are open
	require.NoError(t, svc.Checkout(context.Background(), alice, "draft"))

	branch, err := svc.CurrentBranch()
	require.NoError(t, err)
	assert.Equal(t, "draft", branch)

	_, err = svc.WriteDoc(context.Background(), alice, "a.md", &dto.SaveDocRequest{Content: "x"})
	require.NoError(t, err)

	data, err := svc.ReadDoc("a.md")
	require.NoError(t, err)
	assert.Equal(t, "x", string(data))

	// ManageContent is still required off protected branches
	_, err = svc.WriteDoc(context.Background(), bob, "b.md", &dto.SaveDocRequest{Content: "x"})
	assert.True(t, apperror.IsForbidden(err))

	_, err = svc.DeleteDoc(context.Background(), bob, "a.md", "")
	assert.True(t, apperror.IsForbidden(err))
}
