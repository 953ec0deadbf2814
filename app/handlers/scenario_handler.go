package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stackvolt/wattwise/app/dto"
	"github.com/stackvolt/wattwise/app/middleware"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/utils"
)

// ScenarioHandlerInterface defines the contract for scenario handlers.
type ScenarioHandlerInterface interface {
	SaveScenario(c fiber.Ctx) error
	ListScenarios(c fiber.Ctx) error
	GetScenario(c fiber.Ctx) error
	DeleteScenario(c fiber.Ctx) error
	MarkBaseline(c fiber.Ctx) error
	CompareScenarios(c fiber.Ctx) error
	ExportComparison(c fiber.Ctx) error
	CreateComparisonSet(c fiber.Ctx) error
	ListComparisonSets(c fiber.Ctx) error
	DeleteComparisonSet(c fiber.Ctx) error
	CompareSet(c fiber.Ctx) error
}

// ScenarioHandler handles saved scenario and comparison requests.
type ScenarioHandler struct {
	flow       businessflow.ScenarioFlow
	exportFlow businessflow.ScenarioExportFlow
	validator  *validator.Validate
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(flow businessflow.ScenarioFlow, exportFlow businessflow.ScenarioExportFlow) *ScenarioHandler {
	return &ScenarioHandler{
		flow:       flow,
		exportFlow: exportFlow,
		validator:  validator.New(),
	}
}

func (h *ScenarioHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *ScenarioHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ownerFromContext builds the effective owner from middleware context values.
func ownerFromContext(c fiber.Ctx) businessflow.Owner {
	var owner businessflow.Owner
	if userID, ok := middleware.GetUserIDFromContext(c); ok && userID != 0 {
		owner.UserID = &userID
		return owner
	}
	if sessionID, ok := middleware.GetSessionIDFromContext(c); ok {
		owner.SessionID = &sessionID
	}
	return owner
}

// SaveScenario persists one wizard run snapshot.
// @Summary Save scenario
// @Description Save one wizard run with its denormalized summary metrics
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param request body dto.SaveScenarioRequest true "Scenario payload"
// @Success 201 {object} dto.APIResponse{data=dto.SaveScenarioResponse} "Saved"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios [post]
func (h *ScenarioHandler) SaveScenario(c fiber.Ctx) error {
	var req dto.SaveScenarioRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.SaveScenario(h.createRequestContext(c, "/api/v1/scenarios"), ownerFromContext(c), &req, metadata)
	if err != nil {
		return h.mapScenarioError(c, err, "SAVE_SCENARIO_FAILED", "Failed to save scenario")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Scenario saved successfully", res)
}

// ListScenarios lists the caller's saved scenarios.
// @Summary List scenarios
// @Description List the caller's saved scenarios, newest first
// @Tags Scenarios
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.APIResponse{data=dto.ListScenariosResponse} "Retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios [get]
func (h *ScenarioHandler) ListScenarios(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	res, err := h.flow.ListScenarios(h.createRequestContext(c, "/api/v1/scenarios"), ownerFromContext(c), limit, offset)
	if err != nil {
		return h.mapScenarioError(c, err, "LIST_SCENARIOS_FAILED", "Failed to list scenarios")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Scenarios retrieved", res)
}

// GetScenario returns one scenario with full payloads.
// @Summary Get scenario
// @Description Get one saved scenario with its input state and results
// @Tags Scenarios
// @Produce json
// @Param uuid path string true "Scenario UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetScenarioResponse} "Retrieved"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios/{uuid} [get]
func (h *ScenarioHandler) GetScenario(c fiber.Ctx) error {
	res, err := h.flow.GetScenario(h.createRequestContext(c, "/api/v1/scenarios/:uuid"), ownerFromContext(c), c.Params("uuid"))
	if err != nil {
		return h.mapScenarioError(c, err, "GET_SCENARIO_FAILED", "Failed to get scenario")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Scenario retrieved", res)
}

// DeleteScenario removes one saved scenario.
// @Summary Delete scenario
// @Description Delete one of the caller's saved scenarios
// @Tags Scenarios
// @Produce json
// @Param uuid path string true "Scenario UUID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios/{uuid} [delete]
func (h *ScenarioHandler) DeleteScenario(c fiber.Ctx) error {
	if err := h.flow.DeleteScenario(h.createRequestContext(c, "/api/v1/scenarios/:uuid"), ownerFromContext(c), c.Params("uuid")); err != nil {
		return h.mapScenarioError(c, err, "DELETE_SCENARIO_FAILED", "Failed to delete scenario")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Scenario deleted successfully", nil)
}

// MarkBaseline flags one scenario as the caller's baseline.
// @Summary Mark baseline
// @Description Flag one scenario as the caller's baseline, clearing any previous one
// @Tags Scenarios
// @Produce json
// @Param uuid path string true "Scenario UUID"
// @Success 200 {object} dto.APIResponse{data=dto.ScenarioItem} "Updated"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios/{uuid}/baseline [post]
func (h *ScenarioHandler) MarkBaseline(c fiber.Ctx) error {
	res, err := h.flow.MarkBaseline(h.createRequestContext(c, "/api/v1/scenarios/:uuid/baseline"), ownerFromContext(c), c.Params("uuid"))
	if err != nil {
		return h.mapScenarioError(c, err, "MARK_BASELINE_FAILED", "Failed to mark baseline")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Baseline updated", res)
}

// CompareScenarios builds comparison rows for the requested scenarios.
// @Summary Compare scenarios
// @Description Compare scenarios in request order; the first UUID is the baseline
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param request body dto.CompareScenariosRequest true "Comparison payload"
// @Success 200 {object} dto.APIResponse{data=dto.CompareScenariosResponse} "Built"
// @Failure 404 {object} dto.APIResponse "Scenario not found (strict mode)"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios/compare [post]
func (h *ScenarioHandler) CompareScenarios(c fiber.Ctx) error {
	var req dto.CompareScenariosRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	res, err := h.flow.CompareScenarios(h.createRequestContext(c, "/api/v1/scenarios/compare"), ownerFromContext(c), &req)
	if err != nil {
		return h.mapScenarioError(c, err, "COMPARE_SCENARIOS_FAILED", "Failed to compare scenarios")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Comparison built", res)
}

// ExportComparison downloads a comparison as an xlsx spreadsheet.
// @Summary Export comparison
// @Description Build the comparison and stream it as an xlsx file
// @Tags Scenarios
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param request body dto.CompareScenariosRequest true "Comparison payload"
// @Success 200 {file} binary "Spreadsheet"
// @Failure 404 {object} dto.APIResponse "Scenario not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/scenarios/compare/export [post]
func (h *ScenarioHandler) ExportComparison(c fiber.Ctx) error {
	var req dto.CompareScenariosRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	filename, content, err := h.exportFlow.ExportComparison(h.createRequestContext(c, "/api/v1/scenarios/compare/export"), ownerFromContext(c), &req)
	if err != nil {
		return h.mapScenarioError(c, err, "EXPORT_COMPARISON_FAILED", "Failed to export comparison")
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(content)
}

// CreateComparisonSet stores a named group of scenarios.
// @Summary Create comparison set
// @Description Save a named, ordered group of scenarios for later comparison
// @Tags Scenarios
// @Accept json
// @Produce json
// @Param request body dto.CreateComparisonSetRequest true "Set payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateComparisonSetResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Scenario not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/comparison-sets [post]
func (h *ScenarioHandler) CreateComparisonSet(c fiber.Ctx) error {
	var req dto.CreateComparisonSetRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.CreateComparisonSet(h.createRequestContext(c, "/api/v1/comparison-sets"), ownerFromContext(c), &req, metadata)
	if err != nil {
		return h.mapScenarioError(c, err, "CREATE_COMPARISON_SET_FAILED", "Failed to create comparison set")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Comparison set created successfully", res)
}

// ListComparisonSets lists the caller's comparison sets.
// @Summary List comparison sets
// @Description List the caller's saved comparison sets
// @Tags Scenarios
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListComparisonSetsResponse} "Retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/comparison-sets [get]
func (h *ScenarioHandler) ListComparisonSets(c fiber.Ctx) error {
	res, err := h.flow.ListComparisonSets(h.createRequestContext(c, "/api/v1/comparison-sets"), ownerFromContext(c))
	if err != nil {
		return h.mapScenarioError(c, err, "LIST_COMPARISON_SETS_FAILED", "Failed to list comparison sets")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Comparison sets retrieved", res)
}

// DeleteComparisonSet removes one comparison set.
// @Summary Delete comparison set
// @Description Delete one of the caller's comparison sets
// @Tags Scenarios
// @Produce json
// @Param uuid path string true "Set UUID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/comparison-sets/{uuid} [delete]
func (h *ScenarioHandler) DeleteComparisonSet(c fiber.Ctx) error {
	if err := h.flow.DeleteComparisonSet(h.createRequestContext(c, "/api/v1/comparison-sets/:uuid"), ownerFromContext(c), c.Params("uuid")); err != nil {
		return h.mapScenarioError(c, err, "DELETE_COMPARISON_SET_FAILED", "Failed to delete comparison set")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Comparison set deleted successfully", nil)
}

// CompareSet builds comparison rows for a stored set.
// @Summary Compare a stored set
// @Description Resolve a stored set and build comparison rows in its array order
// @Tags Scenarios
// @Produce json
// @Param uuid path string true "Set UUID"
// @Success 200 {object} dto.APIResponse{data=dto.CompareScenariosResponse} "Built"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/comparison-sets/{uuid}/compare [get]
func (h *ScenarioHandler) CompareSet(c fiber.Ctx) error {
	res, err := h.flow.CompareSet(h.createRequestContext(c, "/api/v1/comparison-sets/:uuid/compare"), ownerFromContext(c), c.Params("uuid"))
	if err != nil {
		return h.mapScenarioError(c, err, "COMPARE_SET_FAILED", "Failed to compare set")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Comparison built", res)
}

func (h *ScenarioHandler) mapScenarioError(c fiber.Ctx, err error, fallbackCode, fallbackMessage string) error {
	if be, ok := err.(*businessflow.BusinessError); ok {
		switch be.Code {
		case "SCENARIO_NOT_FOUND", "COMPARISON_SET_NOT_FOUND":
			return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", be.Code, be.Error())
		case "MISSING_OWNER":
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "A session or login is required", be.Code, be.Error())
		case "INVALID_REQUEST", "MISSING_SCENARIO_NAME", "MISSING_INPUT_STATE", "COMPARISON_SET_EMPTY":
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", be.Code, be.Error())
		}
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func (h *ScenarioHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *ScenarioHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
