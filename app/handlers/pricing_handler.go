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

// PricingHandlerInterface defines the contract for pricing handlers.
type PricingHandlerInterface interface {
	GetPricingConfig(c fiber.Ctx) error
	UpsertPricingConfig(c fiber.Ctx) error
	ListEquipmentPricing(c fiber.Ctx) error
	CreateEquipmentPricing(c fiber.Ctx) error
}

// PricingHandler serves pricing configuration documents and equipment quotes.
type PricingHandler struct {
	flow      businessflow.PricingFlow
	validator *validator.Validate
}

// NewPricingHandler creates a new pricing handler.
func NewPricingHandler(flow businessflow.PricingFlow) *PricingHandler {
	return &PricingHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *PricingHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *PricingHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// GetPricingConfig returns one keyed configuration document.
// @Summary Get pricing configuration
// @Description Get one configuration document by key
// @Tags Pricing
// @Produce json
// @Param key path string true "Config key"
// @Success 200 {object} dto.APIResponse{data=dto.GetPricingConfigResponse} "Retrieved"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/configs/{key} [get]
func (h *PricingHandler) GetPricingConfig(c fiber.Ctx) error {
	configKey := c.Params("key")

	res, err := h.flow.GetPricingConfig(h.createRequestContext(c, "/api/v1/pricing/configs/:key"), configKey)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "PRICING_CONFIG_NOT_FOUND":
				return h.ErrorResponse(c, fiber.StatusNotFound, "Pricing configuration not found", be.Code, be.Error())
			case "MISSING_CONFIG_KEY":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Config key is required", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to get pricing configuration", "GET_PRICING_CONFIG_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Pricing configuration retrieved", res)
}

// UpsertPricingConfig inserts or replaces a configuration document.
// @Summary Upsert pricing configuration
// @Description Insert or replace a configuration document by key; the body is shape-checked against its category (admin)
// @Tags Pricing Admin
// @Accept json
// @Produce json
// @Param key path string true "Config key"
// @Param request body dto.UpsertPricingConfigRequest true "Config payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpsertPricingConfigResponse} "Saved"
// @Failure 400 {object} dto.APIResponse "Shape mismatch"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/pricing/configs/{key} [put]
func (h *PricingHandler) UpsertPricingConfig(c fiber.Ctx) error {
	configKey := c.Params("key")

	var req dto.UpsertPricingConfigRequest
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
	res, err := h.flow.UpsertPricingConfig(h.createRequestContext(c, "/api/v1/admin/pricing/configs/:key"), configKey, &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "CONFIG_SHAPE_INVALID", "INVALID_CONFIG_CATEGORY", "MISSING_CONFIG_KEY", "INVALID_REQUEST":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid configuration", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to save pricing configuration", "UPSERT_PRICING_CONFIG_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Pricing configuration saved", res)
}

// ListEquipmentPricing lists currently valid vendor quotes.
// @Summary List equipment pricing
// @Description List valid vendor quotes, optionally filtered by type and region
// @Tags Pricing
// @Produce json
// @Param type query string false "Equipment type"
// @Param region query string false "Region"
// @Success 200 {object} dto.APIResponse{data=dto.ListEquipmentPricingResponse} "Retrieved"
// @Failure 400 {object} dto.APIResponse "Invalid equipment type"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/pricing/equipment [get]
func (h *PricingHandler) ListEquipmentPricing(c fiber.Ctx) error {
	var equipmentType, region *string
	if v := c.Query("type"); v != "" {
		equipmentType = &v
	}
	if v := c.Query("region"); v != "" {
		region = &v
	}

	res, err := h.flow.ListEquipmentPricing(h.createRequestContext(c, "/api/v1/pricing/equipment"), equipmentType, region)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			if be.Code == "INVALID_EQUIPMENT_TYPE" {
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid equipment type", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to list equipment pricing", "LIST_EQUIPMENT_PRICING_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Equipment pricing retrieved", res)
}

// CreateEquipmentPricing adds a vendor quote.
// @Summary Create equipment pricing
// @Description Add one vendor quote; the price column matching the type is required (admin)
// @Tags Pricing Admin
// @Accept json
// @Produce json
// @Param request body dto.CreateEquipmentPricingRequest true "Quote payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateEquipmentPricingResponse} "Created"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 500 {object} dto.APIResponse "Internal server error"
// @Router /api/v1/admin/pricing/equipment [post]
func (h *PricingHandler) CreateEquipmentPricing(c fiber.Ctx) error {
	var req dto.CreateEquipmentPricingRequest
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
	res, err := h.flow.CreateEquipmentPricing(h.createRequestContext(c, "/api/v1/admin/pricing/equipment"), &req, metadata)
	if err != nil {
		if be, ok := err.(*businessflow.BusinessError); ok {
			switch be.Code {
			case "INVALID_EQUIPMENT_TYPE", "UNIT_PRICE_REQUIRED", "CAPACITY_RANGE_INVALID", "INVALID_EXPIRATION_DATE", "INVALID_REQUEST":
				return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid quote", be.Code, be.Error())
			}
		}
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create equipment pricing", "CREATE_EQUIPMENT_PRICING_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Equipment pricing created successfully", res)
}

func (h *PricingHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func (h *PricingHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
