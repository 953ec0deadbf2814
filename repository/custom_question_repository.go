package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/utils"
)

// CustomQuestionRepositoryImpl implements CustomQuestionRepository interface.
type CustomQuestionRepositoryImpl struct {
	*BaseRepository[models.CustomQuestion, models.CustomQuestionFilter]
}

// NewCustomQuestionRepository creates a new custom question repository.
func NewCustomQuestionRepository(db *gorm.DB) CustomQuestionRepository {
	return &CustomQuestionRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CustomQuestion, models.CustomQuestionFilter](db),
	}
}

// ListByUseCase returns all questions of a use case ordered by display_order,
// ties broken by insertion order.
func (r *CustomQuestionRepositoryImpl) ListByUseCase(ctx context.Context, useCaseID uint) ([]*models.CustomQuestion, error) {
	return r.ByFilter(ctx, models.CustomQuestionFilter{UseCaseID: &useCaseID}, "display_order ASC, id ASC", 0, 0)
}

// ByUseCaseAndField retrieves a question by its unique (use_case_id, field_name) pair.
func (r *CustomQuestionRepositoryImpl) ByUseCaseAndField(ctx context.Context, useCaseID uint, fieldName string) (*models.CustomQuestion, error) {
	db := r.getDB(ctx)
	var row models.CustomQuestion
	if err := db.Where("use_case_id = ? AND field_name = ?", useCaseID, fieldName).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// Update persists changes to an existing question.
func (r *CustomQuestionRepositoryImpl) Update(ctx context.Context, question *models.CustomQuestion) error {
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

	question.UpdatedAt = utils.UTCNow()
	err = db.Save(question).Error
	return err
}

// Delete removes a question by ID.
func (r *CustomQuestionRepositoryImpl) Delete(ctx context.Context, id uint) error {
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

	err = db.Delete(&models.CustomQuestion{}, id).Error
	return err
}

// applyFilter applies filter criteria to a GORM query.
func (r *CustomQuestionRepositoryImpl) applyFilter(query *gorm.DB, filter models.CustomQuestionFilter) *gorm.DB {
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UseCaseID != nil {
		query = query.Where("use_case_id = ?", *filter.UseCaseID)
	}
	if filter.FieldName != nil {
		query = query.Where("field_name = ?", *filter.FieldName)
	}
	if filter.QuestionType != nil {
		query = query.Where("question_type = ?", *filter.QuestionType)
	}
	if filter.IsAdvanced != nil {
		query = query.Where("is_advanced = ?", *filter.IsAdvanced)
	}
	if filter.IsRequired != nil {
		query = query.Where("is_required = ?", *filter.IsRequired)
	}
	return query
}

// ByFilter retrieves questions based on filter criteria.
func (r *CustomQuestionRepositoryImpl) ByFilter(ctx context.Context, filter models.CustomQuestionFilter, orderBy string, limit, offset int) ([]*models.CustomQuestion, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CustomQuestion{})

	query = r.applyFilter(query, filter)

	if orderBy == "" {
		orderBy = "display_order ASC, id ASC"
	}
	query = query.Order(orderBy)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var rows []*models.CustomQuestion
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Count returns number of questions matching filter.
func (r *CustomQuestionRepositoryImpl) Count(ctx context.Context, filter models.CustomQuestionFilter) (int64, error) {
	db := r.getDB(ctx)
	query := db.Model(&models.CustomQuestion{})
	query = r.applyFilter(query, filter)
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Exists checks if any question matches the filter.
func (r *CustomQuestionRepositoryImpl) Exists(ctx context.Context, filter models.CustomQuestionFilter) (bool, error) {
	c, err := r.Count(ctx, filter)
	if err != nil {
		return false, err
	}
	return c > 0, nil
}
