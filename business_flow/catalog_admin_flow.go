package businessflow

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/app/dto"
	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	"github.com/stackvolt/wattwise/utils"
)

// CatalogAdminFlow covers the write side of the catalog: use cases, question
// definitions, and default load profiles. Every definition is validated at
// write time so the public read path never has to repair stored rows.
type CatalogAdminFlow interface {
	CreateUseCase(ctx context.Context, req *dto.CreateUseCaseRequest, metadata *ClientMetadata) (*dto.CreateUseCaseResponse, error)
	CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest, metadata *ClientMetadata) (*dto.CreateQuestionResponse, error)
	UpdateQuestion(ctx context.Context, questionID uint, req *dto.UpdateQuestionRequest, metadata *ClientMetadata) (*dto.UpdateQuestionResponse, error)
	DeleteQuestion(ctx context.Context, questionID uint, metadata *ClientMetadata) error
	ListConfigurations(ctx context.Context, useCaseSlug string) (*dto.ListConfigurationsResponse, error)
	ReplaceConfigurations(ctx context.Context, useCaseSlug string, req *dto.ReplaceConfigurationsRequest, metadata *ClientMetadata) (*dto.ReplaceConfigurationsResponse, error)
	SetDefaultConfiguration(ctx context.Context, useCaseSlug string, configID uint, metadata *ClientMetadata) (*dto.SetDefaultConfigurationResponse, error)
}

// CatalogAdminFlowImpl implements CatalogAdminFlow.
type CatalogAdminFlowImpl struct {
	useCaseRepo  repository.UseCaseRepository
	questionRepo repository.CustomQuestionRepository
	configRepo   repository.UseCaseConfigurationRepository
	db           *gorm.DB
	rc           *redis.Client
	cacheConfig  *CacheConfig
}

// NewCatalogAdminFlow creates a new catalog admin flow.
func NewCatalogAdminFlow(
	useCaseRepo repository.UseCaseRepository,
	questionRepo repository.CustomQuestionRepository,
	configRepo repository.UseCaseConfigurationRepository,
	db *gorm.DB,
	rc *redis.Client,
	cacheConfig *CacheConfig,
) CatalogAdminFlow {
	return &CatalogAdminFlowImpl{
		useCaseRepo:  useCaseRepo,
		questionRepo: questionRepo,
		configRepo:   configRepo,
		db:           db,
		rc:           rc,
		cacheConfig:  cacheConfig,
	}
}

func (f *CatalogAdminFlowImpl) CreateUseCase(ctx context.Context, req *dto.CreateUseCaseRequest, metadata *ClientMetadata) (*dto.CreateUseCaseResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}
	if req.Slug == "" {
		return nil, NewBusinessError("MISSING_SLUG", "use case slug is required", ErrSlugRequired)
	}

	row := models.UseCase{
		UUID:        uuid.New(),
		Slug:        req.Slug,
		DisplayName: req.DisplayName,
		Category:    req.Category,
		ImageURL:    req.ImageURL,
		Description: req.Description,
		IsActive:    utils.ToPtr(true),
	}

	if err := f.useCaseRepo.Save(ctx, &row); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, NewBusinessError("DUPLICATE_SLUG", "Use case slug already exists", ErrDuplicateSlug)
		}
		return nil, NewBusinessError("CREATE_USE_CASE_FAILED", "Failed to create use case", err)
	}

	return &dto.CreateUseCaseResponse{
		Message: "Use case created successfully",
		UseCase: toUseCaseItem(&row),
	}, nil
}

func (f *CatalogAdminFlowImpl) CreateQuestion(ctx context.Context, req *dto.CreateQuestionRequest, metadata *ClientMetadata) (*dto.CreateQuestionResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}
	if req.FieldName == "" {
		return nil, NewBusinessError("MISSING_FIELD_NAME", "field name is required", ErrFieldNameRequired)
	}
	if req.QuestionText == "" {
		return nil, NewBusinessError("MISSING_QUESTION_TEXT", "question text is required", ErrQuestionTextRequired)
	}

	useCase, err := f.useCaseRepo.BySlug(ctx, req.UseCaseSlug)
	if err != nil {
		return nil, NewBusinessError("USE_CASE_LOOKUP_FAILED", "Failed to lookup use case", err)
	}
	if useCase == nil {
		return nil, NewBusinessError("USE_CASE_NOT_FOUND", "Use case not found", ErrUseCaseNotFound)
	}

	questionType := models.QuestionType(req.QuestionType)
	options := toModelOptions(req.Options)

	if err := checkDefinition(questionType, req.DefaultValue, req.MinValue, req.MaxValue, options); err != nil {
		return nil, NewBusinessError("QUESTION_DEFINITION_INVALID", "Question definition is invalid", err)
	}

	row := models.CustomQuestion{
		UseCaseID:    useCase.ID,
		FieldName:    req.FieldName,
		QuestionText: req.QuestionText,
		QuestionType: questionType,
		DefaultValue: req.DefaultValue,
		MinValue:     req.MinValue,
		MaxValue:     req.MaxValue,
		Unit:         req.Unit,
		IsRequired:   utils.ToPtr(req.IsRequired),
		HelpText:     req.HelpText,
		DisplayOrder: req.DisplayOrder,
		IsAdvanced:   utils.ToPtr(req.IsAdvanced),
		Options:      options,
		Metadata:     req.Metadata,
	}

	if err := f.questionRepo.Save(ctx, &row); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, NewBusinessError("DUPLICATE_FIELD_NAME", "Field name already exists for this use case", ErrDuplicateField)
		}
		return nil, NewBusinessError("CREATE_QUESTION_FAILED", "Failed to create question", err)
	}

	f.invalidateCatalogCache(ctx, useCase.Slug)

	return &dto.CreateQuestionResponse{
		Message:  "Question created successfully",
		Question: toQuestionItem(&row),
	}, nil
}

func (f *CatalogAdminFlowImpl) UpdateQuestion(ctx context.Context, questionID uint, req *dto.UpdateQuestionRequest, metadata *ClientMetadata) (*dto.UpdateQuestionResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}

	question, err := f.questionRepo.ByID(ctx, questionID)
	if err != nil {
		return nil, NewBusinessError("QUESTION_LOOKUP_FAILED", "Failed to lookup question", err)
	}
	if question == nil {
		return nil, NewBusinessError("QUESTION_NOT_FOUND", "Question not found", ErrQuestionNotFound)
	}

	if req.QuestionText != nil {
		question.QuestionText = *req.QuestionText
	}
	if req.QuestionType != nil {
		question.QuestionType = models.QuestionType(*req.QuestionType)
	}
	if req.DefaultValue != nil {
		question.DefaultValue = req.DefaultValue
	}
	if req.MinValue != nil {
		question.MinValue = req.MinValue
	}
	if req.MaxValue != nil {
		question.MaxValue = req.MaxValue
	}
	if req.Unit != nil {
		question.Unit = req.Unit
	}
	if req.IsRequired != nil {
		question.IsRequired = req.IsRequired
	}
	if req.HelpText != nil {
		question.HelpText = req.HelpText
	}
	if req.DisplayOrder != nil {
		question.DisplayOrder = *req.DisplayOrder
	}
	if req.IsAdvanced != nil {
		question.IsAdvanced = req.IsAdvanced
	}
	if req.Options != nil {
		question.Options = toModelOptions(req.Options)
	}
	if req.Metadata != nil {
		question.Metadata = req.Metadata
	}

	// Revalidate the merged definition, not just the changed fields.
	if err := checkDefinition(question.QuestionType, question.DefaultValue, question.MinValue, question.MaxValue, question.Options); err != nil {
		return nil, NewBusinessError("QUESTION_DEFINITION_INVALID", "Question definition is invalid", err)
	}

	question.UpdatedAt = utils.UTCNow()
	if err := f.questionRepo.Update(ctx, question); err != nil {
		return nil, NewBusinessError("UPDATE_QUESTION_FAILED", "Failed to update question", err)
	}

	f.invalidateCatalogCacheByUseCaseID(ctx, question.UseCaseID)

	return &dto.UpdateQuestionResponse{
		Message:  "Question updated successfully",
		Question: toQuestionItem(question),
	}, nil
}

func (f *CatalogAdminFlowImpl) DeleteQuestion(ctx context.Context, questionID uint, metadata *ClientMetadata) error {
	question, err := f.questionRepo.ByID(ctx, questionID)
	if err != nil {
		return NewBusinessError("QUESTION_LOOKUP_FAILED", "Failed to lookup question", err)
	}
	if question == nil {
		return NewBusinessError("QUESTION_NOT_FOUND", "Question not found", ErrQuestionNotFound)
	}

	if err := f.questionRepo.Delete(ctx, questionID); err != nil {
		return NewBusinessError("DELETE_QUESTION_FAILED", "Failed to delete question", err)
	}

	f.invalidateCatalogCacheByUseCaseID(ctx, question.UseCaseID)
	return nil
}

func (f *CatalogAdminFlowImpl) ListConfigurations(ctx context.Context, useCaseSlug string) (*dto.ListConfigurationsResponse, error) {
	useCase, err := f.useCaseRepo.BySlug(ctx, useCaseSlug)
	if err != nil {
		return nil, NewBusinessError("USE_CASE_LOOKUP_FAILED", "Failed to lookup use case", err)
	}
	if useCase == nil {
		return nil, NewBusinessError("USE_CASE_NOT_FOUND", "Use case not found", ErrUseCaseNotFound)
	}

	rows, err := f.configRepo.ListByUseCase(ctx, useCase.ID)
	if err != nil {
		return nil, NewBusinessError("LIST_CONFIGURATIONS_FAILED", "Failed to list configurations", err)
	}

	// Default profile first, the rest by name.
	sort.SliceStable(rows, func(i, j int) bool {
		di, dj := rows[i].IsDefault, rows[j].IsDefault
		if di != dj {
			return di
		}
		return rows[i].Name < rows[j].Name
	})

	items := make([]dto.ConfigurationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toConfigurationItem(row))
	}

	return &dto.ListConfigurationsResponse{
		Message: "Configurations retrieved",
		Items:   items,
	}, nil
}

// ReplaceConfigurations wholesale replaces a use case's load profiles in one
// transaction. At most one profile may be flagged default; when none is, the
// first becomes the default so the wizard always has a starting point.
func (f *CatalogAdminFlowImpl) ReplaceConfigurations(ctx context.Context, useCaseSlug string, req *dto.ReplaceConfigurationsRequest, metadata *ClientMetadata) (*dto.ReplaceConfigurationsResponse, error) {
	if req == nil || len(req.Configurations) == 0 {
		return nil, NewBusinessError("INVALID_REQUEST", "at least one configuration is required", nil)
	}

	useCase, err := f.useCaseRepo.BySlug(ctx, useCaseSlug)
	if err != nil {
		return nil, NewBusinessError("USE_CASE_LOOKUP_FAILED", "Failed to lookup use case", err)
	}
	if useCase == nil {
		return nil, NewBusinessError("USE_CASE_NOT_FOUND", "Use case not found", ErrUseCaseNotFound)
	}

	defaultCount := 0
	for _, in := range req.Configurations {
		if in.IsDefault {
			defaultCount++
		}
	}
	if defaultCount > 1 {
		return nil, NewBusinessError("MULTIPLE_DEFAULTS", "at most one configuration may be the default", nil)
	}

	rows := make([]*models.UseCaseConfiguration, 0, len(req.Configurations))
	for i, in := range req.Configurations {
		isDefault := in.IsDefault
		if defaultCount == 0 && i == 0 {
			isDefault = true
		}
		rows = append(rows, &models.UseCaseConfiguration{
			UUID:                 uuid.New(),
			UseCaseID:            useCase.ID,
			Name:                 in.Name,
			TypicalLoadKW:        in.TypicalLoadKW,
			PeakLoadKW:           in.PeakLoadKW,
			ProfileType:          models.LoadProfileType(in.ProfileType),
			OperatingHoursPerDay: in.OperatingHoursPerDay,
			StorageDurationHours: in.StorageDurationHours,
			IsDefault:            isDefault,
		})
	}

	if err := f.configRepo.ReplaceForUseCase(ctx, useCase.ID, rows); err != nil {
		return nil, NewBusinessError("REPLACE_CONFIGURATIONS_FAILED", "Failed to replace configurations", err)
	}

	items := make([]dto.ConfigurationItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toConfigurationItem(row))
	}

	return &dto.ReplaceConfigurationsResponse{
		Message: "Configurations replaced successfully",
		Items:   items,
	}, nil
}

func (f *CatalogAdminFlowImpl) SetDefaultConfiguration(ctx context.Context, useCaseSlug string, configID uint, metadata *ClientMetadata) (*dto.SetDefaultConfigurationResponse, error) {
	useCase, err := f.useCaseRepo.BySlug(ctx, useCaseSlug)
	if err != nil {
		return nil, NewBusinessError("USE_CASE_LOOKUP_FAILED", "Failed to lookup use case", err)
	}
	if useCase == nil {
		return nil, NewBusinessError("USE_CASE_NOT_FOUND", "Use case not found", ErrUseCaseNotFound)
	}

	if err := f.configRepo.SetDefault(ctx, useCase.ID, configID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewBusinessError("CONFIGURATION_NOT_FOUND", "Configuration not found for this use case", ErrConfigurationNotFound)
		}
		return nil, NewBusinessError("SET_DEFAULT_FAILED", "Failed to set default configuration", err)
	}

	row, err := f.configRepo.ByID(ctx, configID)
	if err != nil {
		return nil, NewBusinessError("CONFIGURATION_LOOKUP_FAILED", "Failed to lookup configuration", err)
	}
	if row == nil {
		return nil, NewBusinessError("CONFIGURATION_NOT_FOUND", "Configuration not found", ErrConfigurationNotFound)
	}

	return &dto.SetDefaultConfigurationResponse{
		Message: "Default configuration updated",
		Item:    toConfigurationItem(row),
	}, nil
}

func (f *CatalogAdminFlowImpl) invalidateCatalogCache(ctx context.Context, slug string) {
	if !cacheAvailable(f.cacheConfig, f.rc) {
		return
	}
	_ = f.rc.Del(ctx, redisKey(*f.cacheConfig, utils.QuestionCatalogCacheKey, slug)).Err()
}

func (f *CatalogAdminFlowImpl) invalidateCatalogCacheByUseCaseID(ctx context.Context, useCaseID uint) {
	if !cacheAvailable(f.cacheConfig, f.rc) {
		return
	}
	useCase, err := f.useCaseRepo.ByID(ctx, useCaseID)
	if err != nil || useCase == nil {
		return
	}
	f.invalidateCatalogCache(ctx, useCase.Slug)
}

// checkDefinition validates a question definition at write time. range_buttons
// buckets must be sorted, non-overlapping, and contiguous so every in-range
// numeric answer maps to exactly one bucket.
func checkDefinition(questionType models.QuestionType, defaultValue *string, minValue, maxValue *float64, options models.QuestionOptions) error {
	if !questionType.Valid() {
		return ErrInvalidQuestionType
	}
	if minValue != nil && maxValue != nil && *minValue > *maxValue {
		return ErrBoundsInverted
	}

	switch questionType {
	case models.QuestionTypeNumber:
		if len(options) > 0 {
			return ErrOptionsNotAllowed
		}
		if defaultValue != nil {
			v, err := strconv.ParseFloat(*defaultValue, 64)
			if err != nil {
				return ErrDefaultNotNumeric
			}
			if minValue != nil && v < *minValue {
				return ErrDefaultOutOfBounds
			}
			if maxValue != nil && v > *maxValue {
				return ErrDefaultOutOfBounds
			}
		}

	case models.QuestionTypeBoolean:
		if len(options) > 0 {
			return ErrOptionsNotAllowed
		}
		if defaultValue != nil && *defaultValue != "true" && *defaultValue != "false" {
			return ErrDefaultNotBoolean
		}

	case models.QuestionTypeSelect:
		if len(options) == 0 {
			return ErrOptionsRequired
		}
		seen := make(map[string]struct{}, len(options))
		for _, opt := range options {
			if opt.Value == nil || *opt.Value == "" {
				return ErrOptionValueRequired
			}
			if _, dup := seen[*opt.Value]; dup {
				return ErrDuplicateOptionValue
			}
			seen[*opt.Value] = struct{}{}
		}
		if defaultValue != nil {
			if _, ok := seen[*defaultValue]; !ok {
				return ErrDefaultNotInOptions
			}
		}

	case models.QuestionTypeRangeButtons:
		if len(options) == 0 {
			return ErrOptionsRequired
		}
		buckets := make([]models.QuestionOption, len(options))
		copy(buckets, options)
		for _, b := range buckets {
			if b.Min == nil || b.Max == nil {
				return ErrBucketBoundsRequired
			}
			if *b.Min >= *b.Max {
				return ErrBoundsInverted
			}
		}
		sort.SliceStable(buckets, func(i, j int) bool { return *buckets[i].Min < *buckets[j].Min })
		for i := 1; i < len(buckets); i++ {
			if *buckets[i].Min < *buckets[i-1].Max {
				return ErrBucketsOverlap
			}
			if *buckets[i].Min > *buckets[i-1].Max {
				return ErrBucketsNotContiguous
			}
		}
		if defaultValue != nil {
			v, err := strconv.ParseFloat(*defaultValue, 64)
			if err != nil {
				return ErrDefaultNotNumeric
			}
			inBucket := false
			for _, b := range buckets {
				if v >= *b.Min && v < *b.Max {
					inBucket = true
					break
				}
			}
			if !inBucket {
				return ErrDefaultOutOfBounds
			}
		}
	}

	return nil
}

func toModelOptions(items []dto.QuestionOptionItem) models.QuestionOptions {
	if len(items) == 0 {
		return nil
	}
	options := make(models.QuestionOptions, 0, len(items))
	for _, it := range items {
		options = append(options, models.QuestionOption{
			Value:       it.Value,
			Min:         it.Min,
			Max:         it.Max,
			Label:       it.Label,
			Description: it.Description,
		})
	}
	return options
}

func toConfigurationItem(row *models.UseCaseConfiguration) dto.ConfigurationItem {
	return dto.ConfigurationItem{
		ID:                   row.ID,
		UUID:                 row.UUID.String(),
		Name:                 row.Name,
		TypicalLoadKW:        row.TypicalLoadKW,
		PeakLoadKW:           row.PeakLoadKW,
		ProfileType:          string(row.ProfileType),
		OperatingHoursPerDay: row.OperatingHoursPerDay,
		StorageDurationHours: row.StorageDurationHours,
		IsDefault:            row.IsDefault,
	}
}
