// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/stackvolt/wattwise/app/dto"
	businessflow "github.com/stackvolt/wattwise/business_flow"
	"github.com/stackvolt/wattwise/utils"
)

// QuestionCatalogHandlerInterface defines the contract for public catalog handlers.
type QuestionCatalogHandlerInterface interface {
	ListUseCases(c fiber.Ctx) error
	ListQuestions(c fiber.Ctx) error
	ValidateAnswer(c fiber.Ctx) error
	ListConfigurations(c fiber.Ctx) error
}

// QuestionCatalogHandler serves the public read side of the wizard catalog.
type QuestionCatalogHandler struct {
	catalogFlow businessflow.QuestionCatalogFlow
	adminFlow   businessflow.CatalogAdminFlow
	validator   *validator.Validate
}

// NewQuestionCatalogHandler creates a new question catalog handler.
func NewQuestionCatalogHandler(catalogFlow businessflow.QuestionCatalogFlow, adminFlow businessflow.CatalogAdminFlow) *QuestionCatalogHandler {
	return &QuestionCatalogHandler{
		catalogFlow: catalogFlow,
		adminFlow:   adminFlow,
		validator:   validator.New(),
	}
}

func (h *QuestionCatalogHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *QuestionCatalogHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ListUseCases lists active industry verticals.
// @Summary List use cases
// @Description List active industry verticals for the wizard landing page
// @Tags Catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListUseCasesResponse} "Retrieved"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/use-cases [get]
func (h *QuestionCatalogHandler) ListUseCases(c fiber.Ctx) error {
	res, err := h.catalogFlow.ListUseCases(h.createRequestContext(c, "/api/v1/use-cases"))
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list use cases", "LIST_USE_CASES_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Use cases retrieved", res)
}

// ListQuestions returns the tiered question catalog for one use case.
// @Summary List catalog questions
// @Description List basic and advanced questions of one use case
// @Tags Catalog
// @Produce json
// @Param slug path string true "Use case slug"
// @Success 200 {object} dto.APIResponse{data=dto.ListQuestionsResponse} "Retrieved"
// @Failure 404 {object} dto.APIResponse "Use case not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/use-cases/{slug}/questions [get]
func (h *QuestionCatalogHandler) ListQuestions(c fiber.Ctx) error {
	slug := c.Params("slug")

	res, err := h.catalogFlow.ListQuestions(h.createRequestContext(c, "/api/v1/use-cases/:slug/questions"), slug)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "USE_CASE_NOT_FOUND", "USE_CASE_INACTIVE":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Use case not found", be.Code, be.Error())
			case "MISSING_USE_CASE_SLUG":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Use case slug is required", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list questions", "LIST_QUESTIONS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Question catalog retrieved", res)
}

// ValidateAnswer validates one wizard answer against its question contract.
// @Summary Validate an answer
// @Description Validate one wizard answer against its question's declared contract
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body dto.ValidateAnswerRequest true "Answer payload"
// @Success 200 {object} dto.APIResponse{data=dto.ValidateAnswerResponse} "Validated"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Question not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/answers/validate [post]
func (h *QuestionCatalogHandler) ValidateAnswer(c fiber.Ctx) error {
	var req dto.ValidateAnswerRequest
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

	res, err := h.catalogFlow.ValidateAnswer(h.createRequestContext(c, "/api/v1/answers/validate"), &req)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "USE_CASE_NOT_FOUND", "QUESTION_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Question not found", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to validate answer", "VALIDATE_ANSWER_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, res.Message, res)
}

// ListConfigurations lists the default load profiles of a use case.
// @Summary List load profiles
// @Description List default load profiles of one use case, default first
// @Tags Catalog
// @Produce json
// @Param slug path string true "Use case slug"
// @Success 200 {object} dto.APIResponse{data=dto.ListConfigurationsResponse} "Retrieved"
// @Failure 404 {object} dto.APIResponse "Use case not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/use-cases/{slug}/configurations [get]
func (h *QuestionCatalogHandler) ListConfigurations(c fiber.Ctx) error {
	slug := c.Params("slug")

	res, err := h.adminFlow.ListConfigurations(h.createRequestContext(c, "/api/v1/use-cases/:slug/configurations"), slug)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			if be.Code == "USE_CASE_NOT_FOUND" {
				return h.ErrorResponse(c, fiber.StatusNotFound, "Use case not found", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list configurations", "LIST_CONFIGURATIONS_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Configurations retrieved", res)
}

func (h *QuestionCatalogHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *QuestionCatalogHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
