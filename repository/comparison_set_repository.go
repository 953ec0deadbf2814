package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/utils"
)

// ComparisonSetRepositoryImpl implements ComparisonSetRepository interface.
type ComparisonSetRepositoryImpl struct {
	*BaseRepository[models.ComparisonSet, models.ComparisonSetFilter]
}

// NewComparisonSetRepository creates a new comparison set repository.
func NewComparisonSetRepository(db *gorm.DB) ComparisonSetRepository {
	return &ComparisonSetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.ComparisonSet, models.ComparisonSetFilter](db),
	}
}

// ByUUID retrieves a comparison set by UUID.
func (r *ComparisonSetRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.ComparisonSet, error) {
	db := r.getDB(ctx)
	var row models.ComparisonSet
	if err := db.Where("uuid = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListByOwner returns comparison sets of a user or anonymous session, newest first.
func (r *ComparisonSetRepositoryImpl) ListByOwner(ctx context.Context, userID *uint, sessionID *string) ([]*models.ComparisonSet, error) {
	filter := models.ComparisonSetFilter{UserID: userID, SessionID: sessionID}
	return r.ByFilter(ctx, filter, "created_at DESC, id DESC", 0, 0)
}

// Update persists changes to an existing comparison set.
func (r *ComparisonSetRepositoryImpl) Update(ctx context.Context, set *models.ComparisonSet) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	set.UpdatedAt = utils.UTCNow()
	err = db.Save(set).Error
	return err
}

// Delete removes a comparison set by ID.
func (r *ComparisonSetRepositoryImpl) Delete(ctx context.Context, id uint) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}
	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Delete(&models.ComparisonSet{}, id).Error
	return err
}

// DeleteAnonymousOlderThan purges comparison sets of expired anonymous sessions.
func (r *ComparisonSetRepositoryImpl) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("user_id IS NULL AND created_at < ?", cutoff).Delete(&models.ComparisonSet{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// applyFilter applies filter criteria to a GORM query.
func (r *ComparisonSetRepositoryImpl) applyFilter(query *gorm.DB, filter models.ComparisonSetFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil || filter.SessionID != nil {
		query = scopeToOwner(query, filter.UserID, filter.SessionID)
	}
	return query
}

// ByFilter retrieves comparison sets based on filter criteria.
func (r *ComparisonSetRepositoryImpl) ByFilter(ctx context.Context, filter models.ComparisonSetFilter, orderBy string, limit, offset int) ([]*models.ComparisonSet, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ComparisonSet{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id DESC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.ComparisonSet
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of comparison sets matching filter.
func (r *ComparisonSetRepositoryImpl) Count(ctx context.Context, filter models.ComparisonSetFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.ComparisonSet{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any comparison set matches the filter.
func (r *ComparisonSetRepositoryImpl) Exists(ctx context.Context, filter models.ComparisonSetFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
