package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/utils"
)

// UseCaseConfigurationRepositoryImpl implements UseCaseConfigurationRepository interface.
type UseCaseConfigurationRepositoryImpl struct {
	*BaseRepository[models.UseCaseConfiguration, models.UseCaseConfigurationFilter]
}

// NewUseCaseConfigurationRepository creates a new use case configuration repository.
func NewUseCaseConfigurationRepository(db *gorm.DB) UseCaseConfigurationRepository {
	return &UseCaseConfigurationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UseCaseConfiguration, models.UseCaseConfigurationFilter](db),
	}
}

// ListByUseCase returns the configurations of a use case, default first.
func (r *UseCaseConfigurationRepositoryImpl) ListByUseCase(ctx context.Context, useCaseID uint) ([]*models.UseCaseConfiguration, error) {
	return r.ByFilter(ctx, models.UseCaseConfigurationFilter{UseCaseID: &useCaseID}, "is_default DESC, id ASC", 0, 0)
}

// DefaultForUseCase returns the default configuration of a use case, if any.
func (r *UseCaseConfigurationRepositoryImpl) DefaultForUseCase(ctx context.Context, useCaseID uint) (*models.UseCaseConfiguration, error) {
	db := r.getDB(ctx)
	var row models.UseCaseConfiguration
	if err := db.Where("use_case_id = ? AND is_default", useCaseID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ReplaceForUseCase wholesale replaces the configuration set of a use case in
// one transaction.
func (r *UseCaseConfigurationRepositoryImpl) ReplaceForUseCase(ctx context.Context, useCaseID uint, configs []*models.UseCaseConfiguration) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)
		if err := db.Where("use_case_id = ?", useCaseID).Delete(&models.UseCaseConfiguration{}).Error; err != nil {
			return fmt.Errorf("failed to delete existing configurations: %w", err)
		}
		for _, cfg := range configs {
			cfg.UseCaseID = useCaseID
			if err := db.Create(cfg).Error; err != nil {
				return fmt.Errorf("failed to insert configuration %q: %w", cfg.Name, err)
			}
		}
		return nil
	})
}

// SetDefault atomically makes one configuration the default for its use case.
// Other defaults are cleared first inside the same transaction so the partial
// unique index never sees two defaults.
func (r *UseCaseConfigurationRepositoryImpl) SetDefault(ctx context.Context, useCaseID, configID uint) error {
	return WithTransaction(ctx, r.DB, func(txCtx context.Context) error {
		db := r.getDB(txCtx)

		if err := db.Model(&models.UseCaseConfiguration{}).
			Where("use_case_id = ? AND id <> ? AND is_default", useCaseID, configID).
			Updates(map[string]any{"is_default": false, "updated_at": utils.UTCNow()}).Error; err != nil {
			return fmt.Errorf("failed to clear previous default: %w", err)
		}

		res := db.Model(&models.UseCaseConfiguration{}).
			Where("id = ? AND use_case_id = ?", configID, useCaseID).
			Updates(map[string]any{"is_default": true, "updated_at": utils.UTCNow()})
		if res.Error != nil {
			return fmt.Errorf("failed to set default: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// applyFilter applies filter criteria to a GORM query.
func (r *UseCaseConfigurationRepositoryImpl) applyFilter(query *gorm.DB, filter models.UseCaseConfigurationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.UseCaseID != nil {
		query = query.Where("use_case_id = ?", *filter.UseCaseID)
	}
	if filter.IsDefault != nil {
		query = query.Where("is_default = ?", *filter.IsDefault)
	}
	return query
}

// ByFilter retrieves configurations based on filter criteria.
func (r *UseCaseConfigurationRepositoryImpl) ByFilter(ctx context.Context, filter models.UseCaseConfigurationFilter, orderBy string, limit, offset int) ([]*models.UseCaseConfiguration, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UseCaseConfiguration{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.UseCaseConfiguration
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of configurations matching filter.
func (r *UseCaseConfigurationRepositoryImpl) Count(ctx context.Context, filter models.UseCaseConfigurationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UseCaseConfiguration{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any configuration matches the filter.
func (r *UseCaseConfigurationRepositoryImpl) Exists(ctx context.Context, filter models.UseCaseConfigurationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
