// Package businessflow contains the core business logic for the questionnaire
// catalog, pricing stores, and scenario comparator.
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Catalog errors
	ErrUseCaseNotFound      = errors.New("use case not found")
	ErrUseCaseInactive      = errors.New("use case is inactive")
	ErrQuestionNotFound     = errors.New("question not found")
	ErrDuplicateField       = errors.New("field name already exists for this use case")
	ErrDuplicateSlug        = errors.New("use case slug already exists")
	ErrSlugRequired         = errors.New("use case slug is required")
	ErrFieldNameRequired    = errors.New("field name is required")
	ErrQuestionTextRequired = errors.New("question text is required")
	ErrInvalidQuestionType  = errors.New("invalid question type")

	// Question definition errors
	ErrBoundsInverted       = errors.New("min value exceeds max value")
	ErrDefaultOutOfBounds   = errors.New("default value is outside the declared bounds")
	ErrDefaultNotNumeric    = errors.New("default value is not numeric")
	ErrDefaultNotBoolean    = errors.New("default value is not a boolean")
	ErrDefaultNotInOptions  = errors.New("default value is not a declared option")
	ErrOptionsRequired      = errors.New("at least one option is required")
	ErrOptionsNotAllowed    = errors.New("options are only valid for select and range_buttons questions")
	ErrOptionValueRequired  = errors.New("option value is required for select questions")
	ErrDuplicateOptionValue = errors.New("duplicate option value")
	ErrBucketBoundsRequired = errors.New("range bucket min and max are required")
	ErrBucketsOverlap       = errors.New("range buckets overlap")
	ErrBucketsNotContiguous = errors.New("range buckets are not contiguous")

	// Answer validation errors
	ErrValueOutOfBounds  = errors.New("value is outside the declared bounds")
	ErrValueNotNumeric   = errors.New("value is not numeric")
	ErrValueNotBoolean   = errors.New("value is not a boolean")
	ErrValueNotInOptions = errors.New("value is not a declared option")
	ErrValueNotInBuckets = errors.New("value does not fall into any declared bucket")

	// Configuration errors
	ErrConfigurationNotFound = errors.New("use case configuration not found")
	ErrConfigKeyRequired     = errors.New("config key is required")
	ErrInvalidConfigCategory = errors.New("invalid config category")
	ErrConfigShape           = errors.New("config data does not match the category contract")
	ErrPricingConfigNotFound = errors.New("pricing configuration not found")

	// Equipment pricing errors
	ErrInvalidEquipmentType = errors.New("invalid equipment type")
	ErrUnitPriceRequired    = errors.New("unit price for the equipment type is required")
	ErrCapacityRangeInvalid = errors.New("min capacity exceeds max capacity")

	// Scenario errors
	ErrScenarioNotFound      = errors.New("scenario not found")
	ErrScenarioNameRequired  = errors.New("scenario name is required")
	ErrInputStateRequired    = errors.New("scenario input state is required")
	ErrComparisonSetNotFound = errors.New("comparison set not found")
	ErrComparisonSetEmpty    = errors.New("comparison set has no scenarios")
	ErrOwnershipDenied       = errors.New("row is not owned by the caller")
	ErrOwnerRequired         = errors.New("a user or session owner is required")

	// Admin auth errors
	ErrAdminNotFound     = errors.New("admin not found")
	ErrAdminInactive     = errors.New("admin account is inactive")
	ErrIncorrectPassword = errors.New("incorrect password")
	ErrCaptchaFailed     = errors.New("captcha verification failed")
	ErrCacheNotAvailable = errors.New("cache not available")

	// Filter errors
	ErrInvalidPage     = errors.New("page must be at least 1")
	ErrInvalidPageSize = errors.New("page size must be between 1 and 100")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsUseCaseNotFound(err error) bool {
	return errors.Is(err, ErrUseCaseNotFound)
}

func IsQuestionNotFound(err error) bool {
	return errors.Is(err, ErrQuestionNotFound)
}

func IsDuplicateField(err error) bool {
	return errors.Is(err, ErrDuplicateField)
}

func IsDuplicateSlug(err error) bool {
	return errors.Is(err, ErrDuplicateSlug)
}

func IsConfigShape(err error) bool {
	return errors.Is(err, ErrConfigShape)
}

func IsScenarioNotFound(err error) bool {
	return errors.Is(err, ErrScenarioNotFound)
}

func IsComparisonSetNotFound(err error) bool {
	return errors.Is(err, ErrComparisonSetNotFound)
}

func IsOwnershipDenied(err error) bool {
	return errors.Is(err, ErrOwnershipDenied)
}

func IsPricingConfigNotFound(err error) bool {
	return errors.Is(err, ErrPricingConfigNotFound)
}

func IsConfigurationNotFound(err error) bool {
	return errors.Is(err, ErrConfigurationNotFound)
}

func IsAdminNotFound(err error) bool {
	return errors.Is(err, ErrAdminNotFound)
}

func IsAdminInactive(err error) bool {
	return errors.Is(err, ErrAdminInactive)
}

func IsIncorrectPassword(err error) bool {
	return errors.Is(err, ErrIncorrectPassword)
}

func IsCaptchaFailed(err error) bool {
	return errors.Is(err, ErrCaptchaFailed)
}

// IsValidationError reports whether err belongs to the answer/definition
// validation family (surfaced to the caller, never silently coerced).
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrBoundsInverted, ErrDefaultOutOfBounds, ErrDefaultNotNumeric,
		ErrDefaultNotBoolean, ErrDefaultNotInOptions, ErrOptionsRequired,
		ErrOptionsNotAllowed, ErrOptionValueRequired, ErrDuplicateOptionValue,
		ErrBucketBoundsRequired, ErrBucketsOverlap, ErrBucketsNotContiguous,
		ErrValueOutOfBounds, ErrValueNotNumeric, ErrValueNotBoolean,
		ErrValueNotInOptions, ErrValueNotInBuckets, ErrInvalidQuestionType,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
