// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/stackvolt/wattwise/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
	Count(ctx context.Context, filter F) (int64, error)
	Exists(ctx context.Context, filter F) (bool, error)
}

// UseCaseRepository defines operations for use cases
type UseCaseRepository interface {
	Repository[models.UseCase, models.UseCaseFilter]
	BySlug(ctx context.Context, slug string) (*models.UseCase, error)
	ListActive(ctx context.Context) ([]*models.UseCase, error)
	Update(ctx context.Context, useCase *models.UseCase) error
}

// CustomQuestionRepository defines operations for custom questions
type CustomQuestionRepository interface {
	Repository[models.CustomQuestion, models.CustomQuestionFilter]
	ListByUseCase(ctx context.Context, useCaseID uint) ([]*models.CustomQuestion, error)
	ByUseCaseAndField(ctx context.Context, useCaseID uint, fieldName string) (*models.CustomQuestion, error)
	Update(ctx context.Context, question *models.CustomQuestion) error
	Delete(ctx context.Context, id uint) error
}

// UseCaseConfigurationRepository defines operations for use case configurations
type UseCaseConfigurationRepository interface {
	Repository[models.UseCaseConfiguration, models.UseCaseConfigurationFilter]
	ListByUseCase(ctx context.Context, useCaseID uint) ([]*models.UseCaseConfiguration, error)
	DefaultForUseCase(ctx context.Context, useCaseID uint) (*models.UseCaseConfiguration, error)
	ReplaceForUseCase(ctx context.Context, useCaseID uint, configs []*models.UseCaseConfiguration) error
	SetDefault(ctx context.Context, useCaseID, configID uint) error
}

// PricingConfigurationRepository defines operations for pricing configurations
type PricingConfigurationRepository interface {
	Repository[models.PricingConfiguration, models.PricingConfigurationFilter]
	ByConfigKey(ctx context.Context, configKey string) (*models.PricingConfiguration, error)
	Upsert(ctx context.Context, config *models.PricingConfiguration) error
}

// EquipmentPricingRepository defines operations for equipment price quotes
type EquipmentPricingRepository interface {
	Repository[models.EquipmentPricing, models.EquipmentPricingFilter]
	ListValid(ctx context.Context, equipmentType *models.EquipmentType, region *string, at time.Time) ([]*models.EquipmentPricing, error)
}

// SavedScenarioRepository defines operations for saved wizard scenarios
type SavedScenarioRepository interface {
	Repository[models.SavedScenario, models.SavedScenarioFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.SavedScenario, error)
	ByUUIDs(ctx context.Context, uuids []uuid.UUID) ([]*models.SavedScenario, error)
	ListByOwner(ctx context.Context, userID *uint, sessionID *string, limit, offset int) ([]*models.SavedScenario, error)
	Update(ctx context.Context, scenario *models.SavedScenario) error
	Delete(ctx context.Context, id uint) error
	ClearBaselineForOwner(ctx context.Context, userID *uint, sessionID *string) error
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ComparisonSetRepository defines operations for comparison sets
type ComparisonSetRepository interface {
	Repository[models.ComparisonSet, models.ComparisonSetFilter]
	ByUUID(ctx context.Context, uuid uuid.UUID) (*models.ComparisonSet, error)
	ListByOwner(ctx context.Context, userID *uint, sessionID *string) ([]*models.ComparisonSet, error)
	Update(ctx context.Context, set *models.ComparisonSet) error
	Delete(ctx context.Context, id uint) error
	DeleteAnonymousOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AdminRepository defines operations for admin accounts
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByUsername(ctx context.Context, username string) (*models.Admin, error)
	UpdateLastLogin(ctx context.Context, adminID uint, at time.Time) error
}
