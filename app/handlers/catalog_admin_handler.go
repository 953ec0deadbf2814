package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stackvolt/wattwise/app/dto"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/utils"
)

// CatalogAdminHandlerInterface defines the contract for catalog admin handlers.
type CatalogAdminHandlerInterface interface {
	CreateUseCase(c fiber.Ctx) error
	CreateQuestion(c fiber.Ctx) error
	UpdateQuestion(c fiber.Ctx) error
	DeleteQuestion(c fiber.Ctx) error
	ReplaceConfigurations(c fiber.Ctx) error
	SetDefaultConfiguration(c fiber.Ctx) error
}

// CatalogAdminHandler handles the admin write side of the catalog.
type CatalogAdminHandler struct {
	flow      businessflow.CatalogAdminFlow
	validator *validator.Validate
}

// NewCatalogAdminHandler creates a new catalog admin handler.
func NewCatalogAdminHandler(flow businessflow.CatalogAdminFlow) *CatalogAdminHandler {
	return &CatalogAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CatalogAdminHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CatalogAdminHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateUseCase creates a new industry vertical.
// @Summary Create use case
// @Description Create a new industry vertical (admin)
// @Tags Catalog Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateUseCaseRequest true "Use case payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateUseCaseResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Duplicate slug"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/use-cases [post]
func (h *CatalogAdminHandler) CreateUseCase(c fiber.Ctx) error {
	var req dto.CreateUseCaseRequest
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
	res, err := h.flow.CreateUseCase(h.createRequestContext(c, "/api/v1/admin/use-cases"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "DUPLICATE_SLUG":
				return h.ErrorResponse(c, fiber.StatusConflict, "Use case slug already exists", be.Code, be.Error())
			case "MISSING_SLUG", "INVALID_REQUEST":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create use case", "CREATE_USE_CASE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Use case created successfully", res)
}

// CreateQuestion creates one catalog question.
// @Summary Create question
// @Description Create one catalog question with write-time definition validation (admin)
// @Tags Catalog Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateQuestionRequest true "Question payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateQuestionResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Invalid definition"
// @Failure 404 {object} dto.APIResponse "Use case not found"
// @Failure 409 {object} dto.APIResponse "Duplicate field name"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/questions [post]
func (h *CatalogAdminHandler) CreateQuestion(c fiber.Ctx) error {
	var req dto.CreateQuestionRequest
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
	res, err := h.flow.CreateQuestion(h.createRequestContext(c, "/api/v1/admin/questions"), &req, metadata)
	if err != nil {
		return h.mapQuestionError(c, err, "CREATE_QUESTION_FAILED", "Failed to create question")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Question created successfully", res)
}

// UpdateQuestion updates an existing question in place.
// @Summary Update question
// @Description Update a question; the merged definition is revalidated (admin)
// @Tags Catalog Admin
// @Accept json
// @Produce json
// @Param id path int true "Question ID"
// @Param request body dto.UpdateQuestionRequest true "Partial question payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateQuestionResponse} "Updated"
// @Failure 400 {object} dto.APIResponse "Invalid definition"
// @Failure 404 {object} dto.APIResponse "Question not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/questions/{id} [put]
func (h *CatalogAdminHandler) UpdateQuestion(c fiber.Ctx) error {
	questionID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid question id", "INVALID_QUESTION_ID", nil)
	}

	var req dto.UpdateQuestionRequest
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
	res, err := h.flow.UpdateQuestion(h.createRequestContext(c, "/api/v1/admin/questions/:id"), uint(questionID), &req, metadata)
	if err != nil {
		return h.mapQuestionError(c, err, "UPDATE_QUESTION_FAILED", "Failed to update question")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Question updated successfully", res)
}

// DeleteQuestion removes a question from the catalog.
// @Summary Delete question
// @Description Delete one catalog question (admin)
// @Tags Catalog Admin
// @Produce json
// @Param id path int true "Question ID"
// @Success 200 {object} dto.APIResponse "Deleted"
// @Failure 404 {object} dto.APIResponse "Question not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/questions/{id} [delete]
func (h *CatalogAdminHandler) DeleteQuestion(c fiber.Ctx) error {
	questionID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid question id", "INVALID_QUESTION_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if err := h.flow.DeleteQuestion(h.createRequestContext(c, "/api/v1/admin/questions/:id"), uint(questionID), metadata); err != nil {
		return h.mapQuestionError(c, err, "DELETE_QUESTION_FAILED", "Failed to delete question")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Question deleted successfully", nil)
}

// ReplaceConfigurations wholesale replaces a use case's load profiles.
// @Summary Replace load profiles
// @Description Replace all load profiles of one use case in a single transaction (admin)
// @Tags Catalog Admin
// @Accept json
// @Produce json
// @Param slug path string true "Use case slug"
// @Param request body dto.ReplaceConfigurationsRequest true "Profiles payload"
// @Success 200 {object} dto.APIResponse{data=dto.ReplaceConfigurationsResponse} "Replaced"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Use case not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/use-cases/{slug}/configurations [put]
func (h *CatalogAdminHandler) ReplaceConfigurations(c fiber.Ctx) error {
	slug := c.Params("slug")

	var req dto.ReplaceConfigurationsRequest
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
	res, err := h.flow.ReplaceConfigurations(h.createRequestContext(c, "/api/v1/admin/use-cases/:slug/configurations"), slug, &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "USE_CASE_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Use case not found", be.Code, be.Error())
			case "INVALID_REQUEST", "MULTIPLE_DEFAULTS":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to replace configurations", "REPLACE_CONFIGURATIONS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Configurations replaced successfully", res)
}

// SetDefaultConfiguration atomically switches the default load profile.
// @Summary Set default profile
// @Description Atomically mark one load profile as the use case default (admin)
// @Tags Catalog Admin
// @Produce json
// @Param slug path string true "Use case slug"
// @Param id path int true "Configuration ID"
// @Success 200 {object} dto.APIResponse{data=dto.SetDefaultConfigurationResponse} "Updated"
// @Failure 404 {object} dto.APIResponse "Configuration not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/use-cases/{slug}/configurations/{id}/default [post]
func (h *CatalogAdminHandler) SetDefaultConfiguration(c fiber.Ctx) error {
	slug := c.Params("slug")
	configID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid configuration id", "INVALID_CONFIGURATION_ID", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	res, err := h.flow.SetDefaultConfiguration(h.createRequestContext(c, "/api/v1/admin/use-cases/:slug/configurations/:id/default"), slug, uint(configID), metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "USE_CASE_NOT_FOUND", "CONFIGURATION_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Configuration not found", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to set default configuration", "SET_DEFAULT_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Default configuration updated", res)
}

// mapQuestionError translates question flow errors to HTTP responses. The
// validation family maps to 400 so broken definitions never reach storage.
func (h *CatalogAdminHandler) mapQuestionError(c fiber.Ctx, err error, fallbackCode, fallbackMessage string) error {
	if be, ok := err.(*businessflow.BusinessError); ok {
		switch be.Code {
		case "USE_CASE_NOT_FOUND", "QUESTION_NOT_FOUND":
			return h.ErrorResponse(c, fiber.StatusNotFound, "Not found", be.Code, be.Error())
		case "DUPLICATE_FIELD_NAME":
			return h.ErrorResponse(c, fiber.StatusConflict, "Field name already exists for this use case", be.Code, be.Error())
		case "QUESTION_DEFINITION_INVALID", "INVALID_REQUEST", "MISSING_FIELD_NAME", "MISSING_QUESTION_TEXT":
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid question definition", be.Code, be.Error())
		}
	}
	if businessflow.IsValidationError(err) {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid question definition", "QUESTION_DEFINITION_INVALID", err.Error())
	}
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMessage, fallbackCode, nil)
}

func (h *CatalogAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *CatalogAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
