package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/models"
)

// EquipmentPricingRepositoryImpl implements EquipmentPricingRepository interface.
type EquipmentPricingRepositoryImpl struct {
	*BaseRepository[models.EquipmentPricing, models.EquipmentPricingFilter]
}

// NewEquipmentPricingRepository creates a new equipment pricing repository.
func NewEquipmentPricingRepository(db *gorm.DB) EquipmentPricingRepository {
	return &EquipmentPricingRepositoryImpl{
		BaseRepository: NewBaseRepository[models.EquipmentPricing, models.EquipmentPricingFilter](db),
	}
}

// ListValid returns quotes inside their validity window at the given instant,
// optionally narrowed by equipment type and region.
func (r *EquipmentPricingRepositoryImpl) ListValid(ctx context.Context, equipmentType *models.EquipmentType, region *string, at time.Time) ([]*models.EquipmentPricing, error) {
	filter := models.EquipmentPricingFilter{
		EquipmentType: equipmentType,
		Region:        region,
		ValidAt:       &at,
	}
	return r.ByFilter(ctx, filter, "equipment_type ASC, vendor ASC", 0, 0)
}

// applyFilter applies filter criteria to a GORM query.
func (r *EquipmentPricingRepositoryImpl) applyFilter(query *gorm.DB, filter models.EquipmentPricingFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.EquipmentType != nil {
		query = query.Where("equipment_type = ?", *filter.EquipmentType)
	}
	if filter.Vendor != nil {
		query = query.Where("vendor = ?", *filter.Vendor)
	}
	if filter.Region != nil {
		query = query.Where("region = ?", *filter.Region)
	}
	if filter.ConfidenceLevel != nil {
		query = query.Where("confidence_level = ?", *filter.ConfidenceLevel)
	}
	if filter.ValidAt != nil {
		query = query.Where("effective_date <= ?", *filter.ValidAt).
			Where("expiration_date IS NULL OR expiration_date > ?", *filter.ValidAt)
	}
	return query
}

// ByFilter retrieves equipment pricing rows based on filter criteria.
func (r *EquipmentPricingRepositoryImpl) ByFilter(ctx context.Context, filter models.EquipmentPricingFilter, orderBy string, limit, offset int) ([]*models.EquipmentPricing, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.EquipmentPricing{})

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

	var rows []*models.EquipmentPricing
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of equipment pricing rows matching filter.
func (r *EquipmentPricingRepositoryImpl) Count(ctx context.Context, filter models.EquipmentPricingFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.EquipmentPricing{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any equipment pricing row matches the filter.
func (r *EquipmentPricingRepositoryImpl) Exists(ctx context.Context, filter models.EquipmentPricingFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
