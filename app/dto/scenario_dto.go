package dto

import "encoding/json"

// SaveScenarioRequest persists one wizard run snapshot.
type SaveScenarioRequest struct {
	Name              string          `json:"name" validate:"required,max=255"`
	UseCaseSlug       string          `json:"use_case_slug" validate:"required,max=100"`
	InputState        json.RawMessage `json:"input_state" validate:"required"`
	CalculatedResults json.RawMessage `json:"calculated_results,omitempty"`
	PeakKW            float64         `json:"peak_kw" validate:"gte=0"`
	KWhCapacity       float64         `json:"kwh_capacity" validate:"gte=0"`
	TotalCost         float64         `json:"total_cost" validate:"gte=0"`
	AnnualSavings     float64         `json:"annual_savings" validate:"gte=0"`
	PaybackYears      float64         `json:"payback_years" validate:"gte=0"`
}

// SaveScenarioResponse returns the stored scenario and, for anonymous callers,
// the session token that owns it.
type SaveScenarioResponse struct {
	Message      string       `json:"message"`
	Scenario     ScenarioItem `json:"scenario"`
	SessionToken *string      `json:"session_token,omitempty"`
}

// ScenarioItem is a saved scenario summary.
type ScenarioItem struct {
	UUID          string  `json:"uuid"`
	Name          string  `json:"name"`
	UseCaseSlug   string  `json:"use_case_slug"`
	PeakKW        float64 `json:"peak_kw"`
	KWhCapacity   float64 `json:"kwh_capacity"`
	TotalCost     float64 `json:"total_cost"`
	AnnualSavings float64 `json:"annual_savings"`
	PaybackYears  float64 `json:"payback_years"`
	IsBaseline    bool    `json:"is_baseline"`
	CreatedAt     string  `json:"created_at"`
}

// GetScenarioResponse returns one scenario with its full payloads.
type GetScenarioResponse struct {
	Message           string          `json:"message"`
	Scenario          ScenarioItem    `json:"scenario"`
	InputState        json.RawMessage `json:"input_state"`
	CalculatedResults json.RawMessage `json:"calculated_results"`
}

// ListScenariosResponse lists an owner's saved scenarios, newest first.
type ListScenariosResponse struct {
	Message string         `json:"message"`
	Items   []ScenarioItem `json:"items"`
}

// CompareScenariosRequest compares scenarios in the given order. The first
// UUID is the baseline for percentage deltas. Strict makes missing ids an
// error instead of silently omitting them.
type CompareScenariosRequest struct {
	ScenarioUUIDs []string `json:"scenario_uuids" validate:"dive,uuid"`
	Strict        bool     `json:"strict"`
}

// ComparisonRow is one scenario's comparison entry with derived metrics.
type ComparisonRow struct {
	UUID            string  `json:"uuid"`
	Name            string  `json:"name"`
	UseCaseSlug     string  `json:"use_case_slug"`
	PeakKW          float64 `json:"peak_kw"`
	KWhCapacity     float64 `json:"kwh_capacity"`
	TotalCost       float64 `json:"total_cost"`
	AnnualSavings   float64 `json:"annual_savings"`
	PaybackYears    float64 `json:"payback_years"`
	CostPerKWh      float64 `json:"cost_per_kwh"`
	SavingsDeltaPct float64 `json:"savings_delta_pct"`
	IsBaseline      bool    `json:"is_baseline"`
}

// CompareScenariosResponse returns comparison rows in request order.
type CompareScenariosResponse struct {
	Message string          `json:"message"`
	Rows    []ComparisonRow `json:"rows"`
}

// CreateComparisonSetRequest groups scenarios for a saved side-by-side view.
type CreateComparisonSetRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	ScenarioUUIDs []string `json:"scenario_uuids" validate:"required,min=1,dive,uuid"`
}

// ComparisonSetItem is a stored comparison set.
type ComparisonSetItem struct {
	UUID          string   `json:"uuid"`
	Name          string   `json:"name"`
	ScenarioUUIDs []string `json:"scenario_uuids"`
	CreatedAt     string   `json:"created_at"`
}

// CreateComparisonSetResponse returns the stored set.
type CreateComparisonSetResponse struct {
	Message string            `json:"message"`
	Set     ComparisonSetItem `json:"set"`
}

// ListComparisonSetsResponse lists an owner's comparison sets.
type ListComparisonSetsResponse struct {
	Message string              `json:"message"`
	Items   []ComparisonSetItem `json:"items"`
}
