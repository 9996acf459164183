package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bravo68web/scribe/internal/domain/models"
	"github.com/bravo68web/scribe/internal/domain/repository"
	apperror "github.com/bravo68web/scribe/pkg/errors"
)

// PullRecordRepoImpl implements the PullRecordRepository interface using GORM
type PullRecordRepoImpl struct {
	db *gorm.DB
}

// NewPullRecordRepository creates a new PullRecordRepoImpl instance
func NewPullRecordRepository(db *gorm.DB) repository.PullRecordRepository {
	return &PullRecordRepoImpl{db: db}
}

// Upsert records a pull request number, updating head branch and author
// if the number is already known
func (r *PullRecordRepoImpl) Upsert(ctx context.Context, record *models.PullRecord) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "number"}},
		DoUpdates: clause.AssignmentColumns([]string{"head_branch", "author"}),
	}).Create(record).Error
	if err != nil {
		return apperror.DatabaseError("upsert pull record", err)
	}
	return nil
}

// FindByNumber retrieves the record for a pull request number
func (r *PullRecordRepoImpl) FindByNumber(ctx context.Context, number int) (*models.PullRecord, error) {
	var record models.PullRecord
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("pull record", apperror.ErrNotFound)
		}
		return nil, apperror.DatabaseError("find pull record", err)
	}
	return &record, nil
}

// DeleteByNumber removes the record for a closed pull request
func (r *PullRecordRepoImpl) DeleteByNumber(ctx context.Context, number int) error {
	err := r.db.WithContext(ctx).Where("number = ?", number).Delete(&models.PullRecord{}).Error
	if err != nil {
		return apperror.DatabaseError("delete pull record", err)
	}
	return nil
}
