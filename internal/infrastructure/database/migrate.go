package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/pkg/logger"
)

// Migrate brings the schema up to date and seeds the Admin group.
// It is safe to run on every startup.
func (d *Database) Migrate(ctx context.Context) error {
	d.log.Info("Running database migrations...")

	db := d.db.WithContext(ctx)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMembership{},
		&models.GroupPermission{},
		&models.PullRecord{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := d.seedAdminGroup(ctx); err != nil {
		return fmt.Errorf("failed to seed admin group: %w", err)
	}

	d.log.Info("Database migrations completed")
	return nil
}

// seedAdminGroup ensures the Admin group exists and holds every permission.
// Permissions added in later releases are granted to it here automatically.
func (d *Database) seedAdminGroup(ctx context.Context) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var group models.Group
		err := tx.Where("name = ?", models.AdminGroupName).First(&group).Error
		if err == gorm.ErrRecordNotFound {
			group = models.Group{Name: models.AdminGroupName}
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			d.log.Info("Created Admin group",
				logger.Int64("group_id", group.ID),
			)
		} else if err != nil {
			return err
		}

		for _, perm := range models.AllPermissions() {
			row := models.GroupPermission{GroupID: group.ID, Permission: perm.String()}
			if err := tx.Where(&row).FirstOrCreate(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
