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

// SavedScenarioRepositoryImpl implements SavedScenarioRepository interface.
type SavedScenarioRepositoryImpl struct {
	*BaseRepository[models.SavedScenario, models.SavedScenarioFilter]
}

// NewSavedScenarioRepository creates a new saved scenario repository.
func NewSavedScenarioRepository(db *gorm.DB) SavedScenarioRepository {
	return &SavedScenarioRepositoryImpl{
		BaseRepository: NewBaseRepository[models.SavedScenario, models.SavedScenarioFilter](db),
	}
}

// ByUUID retrieves a scenario by UUID.
func (r *SavedScenarioRepositoryImpl) ByUUID(ctx context.Context, id uuid.UUID) (*models.SavedScenario, error) {
	db := r.getDB(ctx)
	var row models.SavedScenario
	if err := db.Where("uuid = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ByUUIDs retrieves scenarios matching any of the given UUIDs. Storage order
// is unspecified; callers needing input order must reorder.
func (r *SavedScenarioRepositoryImpl) ByUUIDs(ctx context.Context, ids []uuid.UUID) ([]*models.SavedScenario, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	db := r.getDB(ctx)
	var rows []*models.SavedScenario
	if err := db.Where("uuid IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByOwner returns scenarios of a user or anonymous session, newest first.
func (r *SavedScenarioRepositoryImpl) ListByOwner(ctx context.Context, userID *uint, sessionID *string, limit, offset int) ([]*models.SavedScenario, error) {
	filter := models.SavedScenarioFilter{UserID: userID, SessionID: sessionID}
	return r.ByFilter(ctx, filter, "created_at DESC, id DESC", limit, offset)
}

// Update persists changes to an existing scenario.
func (r *SavedScenarioRepositoryImpl) Update(ctx context.Context, scenario *models.SavedScenario) error {
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

	scenario.UpdatedAt = utils.UTCNow()
	err = db.Save(scenario).Error
	return err
}

// Delete removes a scenario by ID.
func (r *SavedScenarioRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.SavedScenario{}, id).Error
	return err
}

// ClearBaselineForOwner unsets the stored baseline flag on all scenarios of an owner.
func (r *SavedScenarioRepositoryImpl) ClearBaselineForOwner(ctx context.Context, userID *uint, sessionID *string) error {
	db := r.getDB(ctx)
	query := db.Model(&models.SavedScenario{}).Where("is_baseline")
	query = scopeToOwner(query, userID, sessionID)
	return query.Updates(map[string]any{"is_baseline": false, "updated_at": utils.UTCNow()}).Error
}

// DeleteAnonymousOlderThan purges scenarios that have no owning user and were
// created before the cutoff. The predicate runs inside the database so the
// sweep tolerates rows created while it executes; running it twice in a row
// deletes nothing the second time.
func (r *SavedScenarioRepositoryImpl) DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	db := r.getDB(ctx)
	res := db.Where("user_id IS NULL AND created_at < ?", cutoff).Delete(&models.SavedScenario{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// scopeToOwner narrows a query to rows owned by the given user or session.
func scopeToOwner(query *gorm.DB, userID *uint, sessionID *string) *gorm.DB {
	if userID != nil {
		return query.Where("user_id = ?", *userID)
	}
	if sessionID != nil {
		return query.Where("user_id IS NULL AND session_id = ?", *sessionID)
	}
	// No owner: match nothing rather than everything
	return query.Where("1 = 0")
}

// applyFilter applies filter criteria to a GORM query.
func (r *SavedScenarioRepositoryImpl) applyFilter(query *gorm.DB, filter models.SavedScenarioFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.UserID != nil || filter.SessionID != nil {
		query = scopeToOwner(query, filter.UserID, filter.SessionID)
	}
	if filter.UseCaseSlug != nil {
		query = query.Where("use_case_slug = ?", *filter.UseCaseSlug)
	}
	if filter.IsBaseline != nil {
		query = query.Where("is_baseline = ?", *filter.IsBaseline)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves scenarios based on filter criteria.
func (r *SavedScenarioRepositoryImpl) ByFilter(ctx context.Context, filter models.SavedScenarioFilter, orderBy string, limit, offset int) ([]*models.SavedScenario, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SavedScenario{})

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

	var rows []*models.SavedScenario
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of scenarios matching filter.
func (r *SavedScenarioRepositoryImpl) Count(ctx context.Context, filter models.SavedScenarioFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.SavedScenario{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any scenario matches the filter.
func (r *SavedScenarioRepositoryImpl) Exists(ctx context.Context, filter models.SavedScenarioFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
