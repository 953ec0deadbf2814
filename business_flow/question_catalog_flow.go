package businessflow

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/stackvolt/wattwise/app/dto"
	"github.com/stackvolt/wattwise/models"
	"github.com/stackvolt/wattwise/repository"
	"github.com/stackvolt/wattwise/utils"
)

// QuestionCatalogFlow serves the wizard's question catalog and validates
// answers against each question's declared contract.
type QuestionCatalogFlow interface {
	ListUseCases(ctx context.Context) (*dto.ListUseCasesResponse, error)
	ListQuestions(ctx context.Context, useCaseSlug string) (*dto.ListQuestionsResponse, error)
	ValidateAnswer(ctx context.Context, req *dto.ValidateAnswerRequest) (*dto.ValidateAnswerResponse, error)
}

// QuestionCatalogFlowImpl implements QuestionCatalogFlow.
type QuestionCatalogFlowImpl struct {
	useCaseRepo  repository.UseCaseRepository
	questionRepo repository.CustomQuestionRepository
	rc           *redis.Client
	cacheConfig  *CacheConfig
}

// NewQuestionCatalogFlow creates a new question catalog flow.
func NewQuestionCatalogFlow(
	useCaseRepo repository.UseCaseRepository,
	questionRepo repository.CustomQuestionRepository,
	rc *redis.Client,
	cacheConfig *CacheConfig,
) QuestionCatalogFlow {
	return &QuestionCatalogFlowImpl{
		useCaseRepo:  useCaseRepo,
		questionRepo: questionRepo,
		rc:           rc,
		cacheConfig:  cacheConfig,
	}
}

func (f *QuestionCatalogFlowImpl) ListUseCases(ctx context.Context) (*dto.ListUseCasesResponse, error) {
	rows, err := f.useCaseRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("LIST_USE_CASES_FAILED", "Failed to list use cases", err)
	}

	items := make([]dto.UseCaseItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, toUseCaseItem(row))
	}

	return &dto.ListUseCasesResponse{
		Message: "Use cases retrieved",
		Items:   items,
	}, nil
}

// ListQuestions returns the catalog for one use case split into basic and
// advanced tiers, ordered by display_order then id. The full response is
// cached per slug and invalidated on any catalog write.
func (f *QuestionCatalogFlowImpl) ListQuestions(ctx context.Context, useCaseSlug string) (*dto.ListQuestionsResponse, error) {
	if useCaseSlug == "" {
		return nil, NewBusinessError("MISSING_USE_CASE_SLUG", "use case slug is required", ErrSlugRequired)
	}

	cacheKey := redisKey(derefCacheConfig(f.cacheConfig), utils.QuestionCatalogCacheKey, useCaseSlug)
	if cacheAvailable(f.cacheConfig, f.rc) {
		if bs, err := f.rc.Get(ctx, cacheKey).Bytes(); err == nil && len(bs) > 0 {
			var out dto.ListQuestionsResponse
			if err := json.Unmarshal(bs, &out); err == nil {
				return &out, nil
			}
		}
	}

	useCase, err := f.useCaseRepo.BySlug(ctx, useCaseSlug)
	if err != nil {
		return nil, NewBusinessError("USE_CASE_LOOKUP_FAILED", "Failed to lookup use case", err)
	}
	if useCase == nil {
		return nil, NewBusinessError("USE_CASE_NOT_FOUND", "Use case not found", ErrUseCaseNotFound)
	}
	if !utils.IsTrue(useCase.IsActive) {
		return nil, NewBusinessError("USE_CASE_INACTIVE", "Use case is inactive", ErrUseCaseInactive)
	}

	questions, err := f.questionRepo.ListByUseCase(ctx, useCase.ID)
	if err != nil {
		return nil, NewBusinessError("LIST_QUESTIONS_FAILED", "Failed to list questions", err)
	}

	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].DisplayOrder != questions[j].DisplayOrder {
			return questions[i].DisplayOrder < questions[j].DisplayOrder
		}
		return questions[i].ID < questions[j].ID
	})

	basic := make([]dto.QuestionItem, 0, len(questions))
	advanced := make([]dto.QuestionItem, 0)
	for _, q := range questions {
		item := toQuestionItem(q)
		if utils.IsTrue(q.IsAdvanced) {
			advanced = append(advanced, item)
		} else {
			basic = append(basic, item)
		}
	}

	resp := &dto.ListQuestionsResponse{
		Message:  "Question catalog retrieved",
		UseCase:  toUseCaseItem(useCase),
		Basic:    basic,
		Advanced: advanced,
	}

	if cacheAvailable(f.cacheConfig, f.rc) {
		if bs, err := json.Marshal(resp); err == nil {
			_ = f.rc.Set(ctx, cacheKey, bs, 0).Err()
		}
	}

	return resp, nil
}

// ValidateAnswer checks one wizard answer against its question's contract.
// Contract violations come back as a structured rejection, not an error;
// errors are reserved for unknown questions and infrastructure failures.
func (f *QuestionCatalogFlowImpl) ValidateAnswer(ctx context.Context, req *dto.ValidateAnswerRequest) (*dto.ValidateAnswerResponse, error) {
	if req == nil {
		return nil, NewBusinessError("INVALID_REQUEST", "request is required", nil)
	}

	useCase, err := f.useCaseRepo.BySlug(ctx, req.UseCaseSlug)
	if err != nil {
		return nil, NewBusinessError("USE_CASE_LOOKUP_FAILED", "Failed to lookup use case", err)
	}
	if useCase == nil {
		return nil, NewBusinessError("USE_CASE_NOT_FOUND", "Use case not found", ErrUseCaseNotFound)
	}

	question, err := f.questionRepo.ByUseCaseAndField(ctx, useCase.ID, req.FieldName)
	if err != nil {
		return nil, NewBusinessError("QUESTION_LOOKUP_FAILED", "Failed to lookup question", err)
	}
	if question == nil {
		return nil, NewBusinessError("QUESTION_NOT_FOUND", "Question not found", ErrQuestionNotFound)
	}

	if err := checkAnswer(question, req.Value); err != nil {
		if IsValidationError(err) {
			return &dto.ValidateAnswerResponse{
				Message: "Answer rejected",
				Valid:   false,
				Reason:  err.Error(),
			}, nil
		}
		return nil, err
	}

	return &dto.ValidateAnswerResponse{
		Message: "Answer accepted",
		Valid:   true,
	}, nil
}

// checkAnswer validates a raw JSON value against a question's type contract.
func checkAnswer(q *models.CustomQuestion, raw json.RawMessage) error {
	switch q.QuestionType {
	case models.QuestionTypeNumber:
		v, ok := decodeNumeric(raw)
		if !ok {
			return ErrValueNotNumeric
		}
		if q.MinValue != nil && v < *q.MinValue {
			return ErrValueOutOfBounds
		}
		if q.MaxValue != nil && v > *q.MaxValue {
			return ErrValueOutOfBounds
		}
		return nil

	case models.QuestionTypeBoolean:
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return ErrValueNotBoolean
		}
		return nil

	case models.QuestionTypeSelect:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ErrValueNotInOptions
		}
		for _, opt := range q.Options {
			if opt.Value != nil && *opt.Value == s {
				return nil
			}
		}
		return ErrValueNotInOptions

	case models.QuestionTypeRangeButtons:
		v, ok := decodeNumeric(raw)
		if !ok {
			return ErrValueNotNumeric
		}
		for _, opt := range q.Options {
			if opt.Min == nil || opt.Max == nil {
				continue
			}
			if v >= *opt.Min && v < *opt.Max {
				return nil
			}
		}
		return ErrValueNotInBuckets

	default:
		return ErrInvalidQuestionType
	}
}

// decodeNumeric accepts a JSON number or a numeric string. Wizard clients
// send both shapes depending on the input widget.
func decodeNumeric(raw json.RawMessage) (float64, bool) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil {
			return v, true
		}
	}
	return 0, false
}

func derefCacheConfig(cfg *CacheConfig) CacheConfig {
	if cfg == nil {
		return CacheConfig{}
	}
	return *cfg
}

func toUseCaseItem(row *models.UseCase) dto.UseCaseItem {
	return dto.UseCaseItem{
		ID:          row.ID,
		UUID:        row.UUID.String(),
		Slug:        row.Slug,
		DisplayName: row.DisplayName,
		Category:    row.Category,
		ImageURL:    row.ImageURL,
		Description: row.Description,
		IsActive:    utils.IsTrue(row.IsActive),
	}
}

func toQuestionItem(q *models.CustomQuestion) dto.QuestionItem {
	options := make([]dto.QuestionOptionItem, 0, len(q.Options))
	for _, opt := range q.Options {
		options = append(options, dto.QuestionOptionItem{
			Value:       opt.Value,
			Min:         opt.Min,
			Max:         opt.Max,
			Label:       opt.Label,
			Description: opt.Description,
		})
	}
	if len(options) == 0 {
		options = nil
	}
	return dto.QuestionItem{
		ID:           q.ID,
		FieldName:    q.FieldName,
		QuestionText: q.QuestionText,
		QuestionType: string(q.QuestionType),
		DefaultValue: q.DefaultValue,
		MinValue:     q.MinValue,
		MaxValue:     q.MaxValue,
		Unit:         q.Unit,
		IsRequired:   utils.IsTrue(q.IsRequired),
		HelpText:     q.HelpText,
		DisplayOrder: q.DisplayOrder,
		IsAdvanced:   utils.IsTrue(q.IsAdvanced),
		Options:      options,
		Metadata:     q.Metadata,
	}
}
