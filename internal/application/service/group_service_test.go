package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/application/dto"
	"github.com/bravo68web/scribe/internal/domain/models"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

func TestGroupLifecycle(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGroupService(env.groups)

	created, err := svc.Create(context.Background(), &dto.CreateGroupRequest{Name: "editors"})
	require.NoError(t, err)
	assert.Equal(t, "editors", created.Name)
	assert.Empty(t, created.Permissions)

	err = svc.ReplacePermissions(context.Background(), created.ID, &dto.ReplacePermissionsRequest{
		Permissions: []string{"manage_content"},
	})
	require.NoError(t, err)

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	byName := make(map[string]dto.GroupInfo, len(list))
	for _, g := range list {
		byName[g.Name] = g
	}
	require.Contains(t, byName, "editors")
	assert.Equal(t, []string{"manage_content"}, byName["editors"].Permissions)

	// The seeded Admin group holds everything
	require.Contains(t, byName, models.AdminGroupName)
	assert.Len(t, byName[models.AdminGroupName].Permissions, len(models.AllPermissions()))

	require.NoError(t, svc.Delete(context.Background(), created.ID))
	err = svc.Delete(context.Background(), created.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestReplacePermissionsRejectsUnknown(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGroupService(env.groups)

	created, err := svc.Create(context.Background(), &dto.CreateGroupRequest{Name: "editors"})
	require.NoError(t, err)

	err = svc.ReplacePermissions(context.Background(), created.ID, &dto.ReplacePermissionsRequest{
		Permissions: []string{"manage_content", "rule_the_world"},
	})
	assert.Error(t, err)

	// The rejected request changed nothing
	perms, err := env.groups.Permissions(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestAdminGroupIsImmutable(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGroupService(env.groups)

	admin, err := env.groups.FindByName(context.Background(), models.AdminGroupName)
	require.NoError(t, err)

	err = svc.Delete(context.Background(), admin.ID)
	assert.True(t, apperror.IsForbidden(err))

	err = svc.ReplacePermissions(context.Background(), admin.ID, &dto.ReplacePermissionsRequest{
		Permissions: []string{"manage_content"},
	})
	assert.True(t, apperror.IsForbidden(err))

	perms, err := env.groups.Permissions(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Len(t, perms, len(models.AllPermissions()))
}

func TestCreateDuplicateGroup(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGroupService(env.groups)

	_, err := svc.Create(context.Background(), &dto.CreateGroupRequest{Name: "editors"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), &dto.CreateGroupRequest{Name: "editors"})
	assert.True(t, apperror.IsConflict(err))
}
