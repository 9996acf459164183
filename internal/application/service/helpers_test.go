package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	"github.com/bravo68web/scribe/internal/infrastructure/database"
	repoimpl "github.com/bravo68web/scribe/internal/infrastructure/repository"
)

// testEnv bundles a migrated in-memory database with the repositories the
// services are built on. The Admin group is seeded by the migration.
type testEnv struct {
	db     *database.Database
	users  repository.UserRepository
	groups repository.GroupRepository
	pulls  repository.PullRecordRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.NewDatabaseInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Migrate(context.Background()))

	return &testEnv{
		db:     db,
		users:  repoimpl.NewUserRepository(db.DB()),
		groups: repoimpl.NewGroupRepository(db.DB()),
		pulls:  repoimpl.NewPullRecordRepository(db.DB()),
	}
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:       username,
		Token:          username + "-session",
		ExpirationDate: time.Now().Add(time.Hour),
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

// createGroup creates a group carrying the given permissions
func (e *testEnv) createGroup(t *testing.T, name string, perms ...models.Permission) *models.Group {
	t.Helper()

	group := &models.Group{Name: name}
	require.NoError(t, e.groups.Create(context.Background(), group))
	if len(perms) > 0 {
		require.NoError(t, e.groups.ReplacePermissions(context.Background(), group.ID, perms))
	}
	return group
}

// enrollAdmin puts a user into the seeded Admin group
func (e *testEnv) enrollAdmin(t *testing.T, userID int64) {
	t.Helper()

	admin, err := e.groups.FindByName(context.Background(), models.AdminGroupName)
	require.NoError(t, err)
	require.NoError(t, e.groups.AddMember(context.Background(), admin.ID, userID))
}
