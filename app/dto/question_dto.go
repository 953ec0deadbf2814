// Package dto contains request and response data transfer objects for the API layer
package dto

import "encoding/json"

// QuestionOptionItem is one entry of a select or range_buttons option list.
type QuestionOptionItem struct {
	Value       *string  `json:"value,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Label       string   `json:"label" validate:"required"`
	Description *string  `json:"description,omitempty"`
}

// QuestionItem is a single catalog question as rendered by the wizard.
type QuestionItem struct {
	ID           uint                 `json:"id"`
	FieldName    string               `json:"field_name"`
	QuestionText string               `json:"question_text"`
	QuestionType string               `json:"question_type"`
	DefaultValue *string              `json:"default_value,omitempty"`
	MinValue     *float64             `json:"min_value,omitempty"`
	MaxValue     *float64             `json:"max_value,omitempty"`
	Unit         *string              `json:"unit,omitempty"`
	IsRequired   bool                 `json:"is_required"`
	HelpText     *string              `json:"help_text,omitempty"`
	DisplayOrder int                  `json:"display_order"`
	IsAdvanced   bool                 `json:"is_advanced"`
	Options      []QuestionOptionItem `json:"options,omitempty"`
	Metadata     json.RawMessage      `json:"metadata,omitempty"`
}

// ListQuestionsResponse is the two-tier question catalog for one use case.
// Basic questions are always shown; advanced ones sit behind a collapsible panel.
type ListQuestionsResponse struct {
	Message  string         `json:"message"`
	UseCase  UseCaseItem    `json:"use_case"`
	Basic    []QuestionItem `json:"basic"`
	Advanced []QuestionItem `json:"advanced"`
}

// CreateQuestionRequest creates one catalog question (admin only).
type CreateQuestionRequest struct {
	UseCaseSlug  string               `json:"use_case_slug" validate:"required"`
	FieldName    string               `json:"field_name" validate:"required,max=100"`
	QuestionText string               `json:"question_text" validate:"required"`
	QuestionType string               `json:"question_type" validate:"required,oneof=number boolean select range_buttons"`
	DefaultValue *string              `json:"default_value,omitempty"`
	MinValue     *float64             `json:"min_value,omitempty"`
	MaxValue     *float64             `json:"max_value,omitempty"`
	Unit         *string              `json:"unit,omitempty"`
	IsRequired   bool                 `json:"is_required"`
	HelpText     *string              `json:"help_text,omitempty"`
	DisplayOrder int                  `json:"display_order"`
	IsAdvanced   bool                 `json:"is_advanced"`
	Options      []QuestionOptionItem `json:"options,omitempty"`
	Metadata     json.RawMessage      `json:"metadata,omitempty"`
}

// CreateQuestionResponse returns the created question.
type CreateQuestionResponse struct {
	Message  string       `json:"message"`
	Question QuestionItem `json:"question"`
}

// UpdateQuestionRequest updates an existing question in place.
type UpdateQuestionRequest struct {
	QuestionText *string              `json:"question_text,omitempty"`
	QuestionType *string              `json:"question_type,omitempty" validate:"omitempty,oneof=number boolean select range_buttons"`
	DefaultValue *string              `json:"default_value,omitempty"`
	MinValue     *float64             `json:"min_value,omitempty"`
	MaxValue     *float64             `json:"max_value,omitempty"`
	Unit         *string              `json:"unit,omitempty"`
	IsRequired   *bool                `json:"is_required,omitempty"`
	HelpText     *string              `json:"help_text,omitempty"`
	DisplayOrder *int                 `json:"display_order,omitempty"`
	IsAdvanced   *bool                `json:"is_advanced,omitempty"`
	Options      []QuestionOptionItem `json:"options,omitempty"`
	Metadata     json.RawMessage      `json:"metadata,omitempty"`
}

// UpdateQuestionResponse returns the updated question.
type UpdateQuestionResponse struct {
	Message  string       `json:"message"`
	Question QuestionItem `json:"question"`
}

// ValidateAnswerRequest validates one wizard answer against its question contract.
type ValidateAnswerRequest struct {
	UseCaseSlug string          `json:"use_case_slug" validate:"required"`
	FieldName   string          `json:"field_name" validate:"required"`
	Value       json.RawMessage `json:"value" validate:"required"`
}

// ValidateAnswerResponse reports the validation outcome.
type ValidateAnswerResponse struct {
	Message string `json:"message"`
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
}

// UseCaseItem is an industry vertical entry.
type UseCaseItem struct {
	ID          uint    `json:"id"`
	UUID        string  `json:"uuid"`
	Slug        string  `json:"slug"`
	DisplayName string  `json:"display_name"`
	Category    string  `json:"category"`
	ImageURL    *string `json:"image_url,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"is_active"`
}

// ListUseCasesResponse lists the wizard's industry verticals.
type ListUseCasesResponse struct {
	Message string        `json:"message"`
	Items   []UseCaseItem `json:"items"`
}

// CreateUseCaseRequest creates a new industry vertical (admin only).
type CreateUseCaseRequest struct {
	Slug        string  `json:"slug" validate:"required,max=100"`
	DisplayName string  `json:"display_name" validate:"required,max=255"`
	Category    string  `json:"category" validate:"required,max=100"`
	ImageURL    *string `json:"image_url,omitempty" validate:"omitempty,max=500"`
	Description *string `json:"description,omitempty"`
}

// CreateUseCaseResponse returns the created use case.
type CreateUseCaseResponse struct {
	Message string      `json:"message"`
	UseCase UseCaseItem `json:"use_case"`
}
