package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/stackvolt/wattwise/utils"
)

// QuestionType represents the input type of a custom question.
type QuestionType string

const (
	QuestionTypeNumber       QuestionType = "number"
	QuestionTypeBoolean      QuestionType = "boolean"
	QuestionTypeSelect       QuestionType = "select"
	QuestionTypeRangeButtons QuestionType = "range_buttons"
)

// Valid checks if the question type is valid.
func (t QuestionType) Valid() bool {
	switch t {
	case QuestionTypeNumber,
		QuestionTypeBoolean,
		QuestionTypeSelect,
		QuestionTypeRangeButtons:
		return true
	default:
		return false
	}
}

// Scan implements the sql.Scanner interface for QuestionType.
func (t *QuestionType) Scan(value any) error {
	if value == nil {
		*t = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*t = QuestionType(v)
	case []byte:
		*t = QuestionType(string(v))
	default:
		return fmt.Errorf("cannot scan %T into QuestionType", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for QuestionType.
func (t QuestionType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid QuestionType: %s", t)
	}
	return string(t), nil
}

// QuestionOption is one entry of a select or range_buttons option list.
// Select options carry Value; range_buttons options carry a [Min, Max) bucket.
type QuestionOption struct {
	Value       *string  `json:"value,omitempty"`
	Min         *float64 `json:"min,omitempty"`
	Max         *float64 `json:"max,omitempty"`
	Label       string   `json:"label"`
	Description *string  `json:"description,omitempty"`
}

// QuestionOptions is an ordered option list stored as a jsonb column.
type QuestionOptions []QuestionOption

// Scan implements the sql.Scanner interface for QuestionOptions.
func (o *QuestionOptions) Scan(value any) error {
	if value == nil {
		*o = nil
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into QuestionOptions", value)
	}

	return json.Unmarshal(raw, o)
}

// Value implements the driver.Valuer interface for QuestionOptions.
func (o QuestionOptions) Value() (driver.Value, error) {
	if o == nil {
		return nil, nil
	}
	return json.Marshal(o)
}

// CustomQuestion represents one dynamically rendered wizard input field
// belonging to a use case. (use_case_id, field_name) is unique by declared
// constraint rather than repaired after the fact.
type CustomQuestion struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	UseCaseID    uint            `gorm:"not null;index:idx_custom_questions_use_case_id;uniqueIndex:uk_custom_questions_use_case_field" json:"use_case_id"`
	FieldName    string          `gorm:"type:varchar(100);not null;uniqueIndex:uk_custom_questions_use_case_field" json:"field_name"`
	QuestionText string          `gorm:"type:text;not null" json:"question_text"`
	QuestionType QuestionType    `gorm:"type:varchar(20);not null" json:"question_type"`
	DefaultValue *string         `gorm:"type:varchar(255)" json:"default_value,omitempty"`
	MinValue     *float64        `json:"min_value,omitempty"`
	MaxValue     *float64        `json:"max_value,omitempty"`
	Unit         *string         `gorm:"type:varchar(50)" json:"unit,omitempty"`
	IsRequired   *bool           `gorm:"default:false" json:"is_required"`
	HelpText     *string         `gorm:"type:text" json:"help_text,omitempty"`
	DisplayOrder int             `gorm:"not null;default:0;index:idx_custom_questions_display_order" json:"display_order"`
	IsAdvanced   *bool           `gorm:"default:false;index:idx_custom_questions_is_advanced" json:"is_advanced"`
	Options      QuestionOptions `gorm:"type:jsonb" json:"options,omitempty"`
	Metadata     json.RawMessage `gorm:"type:jsonb;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	UseCase *UseCase `gorm:"foreignKey:UseCaseID;references:ID;constraint:OnDelete:CASCADE" json:"use_case,omitempty"`
}

func (CustomQuestion) TableName() string { return "custom_questions" }

// BeforeCreate ensures timestamps are set.
func (q *CustomQuestion) BeforeCreate(tx *gorm.DB) error {
	if q.CreatedAt.IsZero() {
		q.CreatedAt = utils.UTCNow()
	}
	if q.UpdatedAt.IsZero() {
		q.UpdatedAt = utils.UTCNow()
	}
	return nil
}

// CustomQuestionFilter represents filter criteria for custom question queries
type CustomQuestionFilter struct {
	ID           *uint         `json:"id,omitempty"`
	UseCaseID    *uint         `json:"use_case_id,omitempty"`
	FieldName    *string       `json:"field_name,omitempty"`
	QuestionType *QuestionType `json:"question_type,omitempty"`
	IsAdvanced   *bool         `json:"is_advanced,omitempty"`
	IsRequired   *bool         `json:"is_required,omitempty"`
}
