package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/utils"
)

// PricingConfigurationRepositoryImpl implements PricingConfigurationRepository interface.
type PricingConfigurationRepositoryImpl struct {
	*BaseRepository[models.PricingConfiguration, models.PricingConfigurationFilter]
}

// NewPricingConfigurationRepository creates a new pricing configuration repository.
func NewPricingConfigurationRepository(db *gorm.DB) PricingConfigurationRepository {
	return &PricingConfigurationRepositoryImpl{
		BaseRepository: NewBaseRepository[models.PricingConfiguration, models.PricingConfigurationFilter](db),
	}
}

// ByConfigKey retrieves a pricing configuration by its unique key.
func (r *PricingConfigurationRepositoryImpl) ByConfigKey(ctx context.Context, configKey string) (*models.PricingConfiguration, error) {
	db := r.getDB(ctx)
	var row models.PricingConfiguration
	if err := db.Where("config_key = ?", configKey).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Upsert inserts a pricing configuration or updates the existing row with the
// same config_key (insert-or-update on conflict).
func (r *PricingConfigurationRepositoryImpl) Upsert(ctx context.Context, config *models.PricingConfiguration) error {
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

	config.UpdatedAt = utils.UTCNow()
	err = db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "config_key"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"config_category", "config_data", "version", "description", "is_active", "updated_at",
		}),
	}).Create(config).Error
	return err
}

// applyFilter applies filter criteria to a GORM query.
func (r *PricingConfigurationRepositoryImpl) applyFilter(query *gorm.DB, filter models.PricingConfigurationFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.ConfigKey != nil {
		query = query.Where("config_key = ?", *filter.ConfigKey)
	}
	if filter.ConfigCategory != nil {
		query = query.Where("config_category = ?", *filter.ConfigCategory)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	return query
}

// ByFilter retrieves pricing configurations based on filter criteria.
func (r *PricingConfigurationRepositoryImpl) ByFilter(ctx context.Context, filter models.PricingConfigurationFilter, orderBy string, limit, offset int) ([]*models.PricingConfiguration, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PricingConfiguration{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "config_key ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.PricingConfiguration
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of pricing configurations matching filter.
func (r *PricingConfigurationRepositoryImpl) Count(ctx context.Context, filter models.PricingConfigurationFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.PricingConfiguration{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any pricing configuration matches the filter.
func (r *PricingConfigurationRepositoryImpl) Exists(ctx context.Context, filter models.PricingConfigurationFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
