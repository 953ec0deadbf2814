package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/utils"
)

// UseCaseRepositoryImpl implements UseCaseRepository interface.
type UseCaseRepositoryImpl struct {
	*BaseRepository[models.UseCase, models.UseCaseFilter]
}

// NewUseCaseRepository creates a new use case repository.
func NewUseCaseRepository(db *gorm.DB) UseCaseRepository {
	return &UseCaseRepositoryImpl{
		BaseRepository: NewBaseRepository[models.UseCase, models.UseCaseFilter](db),
	}
}

// BySlug retrieves a use case by its unique slug.
func (r *UseCaseRepositoryImpl) BySlug(ctx context.Context, slug string) (*models.UseCase, error) {
	db := r.getDB(ctx)
	var row models.UseCase
	if err := db.Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// ListActive returns active use cases ordered by category then display name.
func (r *UseCaseRepositoryImpl) ListActive(ctx context.Context) ([]*models.UseCase, error) {
	return r.ByFilter(ctx, models.UseCaseFilter{IsActive: utils.ToPtr(true)}, "category ASC, display_name ASC", 0, 0)
}

// Update persists changes to an existing use case.
func (r *UseCaseRepositoryImpl) Update(ctx context.Context, useCase *models.UseCase) error {
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

	useCase.UpdatedAt = utils.UTCNow()
	err = db.Save(useCase).Error
	return err
}

// applyFilter applies filter criteria to a GORM query.
func (r *UseCaseRepositoryImpl) applyFilter(query *gorm.DB, filter models.UseCaseFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.Slug != nil {
		query = query.Where("slug = ?", *filter.Slug)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", *filter.Category)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at > ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at < ?", *filter.CreatedBefore)
	}
	return query
}

// ByFilter retrieves use cases based on filter criteria.
func (r *UseCaseRepositoryImpl) ByFilter(ctx context.Context, filter models.UseCaseFilter, orderBy string, limit, offset int) ([]*models.UseCase, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UseCase{})

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

	var rows []*models.UseCase
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of use cases matching filter.
func (r *UseCaseRepositoryImpl) Count(ctx context.Context, filter models.UseCaseFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.UseCase{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any use case matches the filter.
func (r *UseCaseRepositoryImpl) Exists(ctx context.Context, filter models.UseCaseFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
