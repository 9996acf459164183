package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/domain/models"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

func TestRequireWithoutAnyGroup(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPermissionService(env.groups)
	user := env.createUser(t, "alice")

	err := svc.Require(context.Background(), user.ID, models.PermissionManageContent)
	assert.True(t, apperror.IsForbidden(err))
}

func TestRequireUnionOverGroups(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPermissionService(env.groups)
	user := env.createUser(t, "alice")

	editors := env.createGroup(t, "editors", models.PermissionManageContent)
	require.NoError(t, env.groups.AddMember(context.Background(), editors.ID, user.ID))

	assert.NoError(t, svc.Require(context.Background(), user.ID, models.PermissionManageContent))
	assert.True(t, apperror.IsForbidden(svc.Require(context.Background(), user.ID, models.PermissionManageBranches)))

	// A second group widens the effective set
	releasers := env.createGroup(t, "releasers", models.PermissionManageBranches)
	require.NoError(t, env.groups.AddMember(context.Background(), releasers.ID, user.ID))

	assert.NoError(t, svc.Require(context.Background(), user.ID, models.PermissionManageBranches))

	perms, err := svc.EffectivePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Permission{models.PermissionManageBranches, models.PermissionManageContent}, perms)
}

func TestAdminPassesEveryCheck(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPermissionService(env.groups)
	user := env.createUser(t, "root")
	env.enrollAdmin(t, user.ID)

	admin, err := svc.IsAdmin(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, admin)

	for _, perm := range models.AllPermissions() {
		assert.NoError(t, svc.Require(context.Background(), user.ID, perm))
	}

	perms, err := svc.EffectivePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AllPermissions(), perms)
}

func TestCorruptStoredPermissionGrantsNothing(t *testing.T) {
	env := newTestEnv(t)
	svc := NewPermissionService(env.groups)
	user := env.createUser(t, "alice")

	group := env.createGroup(t, "editors", models.PermissionManageContent)
	require.NoError(t, env.groups.AddMember(context.Background(), group.ID, user.ID))

	// A row no parser accepts must never grant anything
	corrupt := &models.GroupPermission{GroupID: group.ID, Permission: "launch_missiles"}
	require.NoError(t, env.db.DB().Create(corrupt).Error)

	assert.True(t, apperror.IsForbidden(svc.Require(context.Background(), user.ID, models.PermissionManageUsers)))

	perms, err := svc.EffectivePermissions(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.Permission{models.PermissionManageContent}, perms)
}
