package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request context keys populated by handlers for the flow layer
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTokenBytes is the byte length of anonymous wizard session tokens
	SessionTokenBytes = 32
)

// Retention constants
const (
	// AnonymousScenarioRetention is how long scenarios without an owner are kept
	AnonymousScenarioRetention = 30 * 24 * time.Hour
)

// Cache key constants
const (
	// QuestionCatalogCacheKey prefixes the per-use-case question catalog cache entries
	QuestionCatalogCacheKey = "question_catalog"

	// PricingConfigCacheKey prefixes the pricing configuration cache entries
	PricingConfigCacheKey = "pricing_config"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
