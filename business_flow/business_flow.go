// Package businessflow contains the core business logic for the questionnaire
// catalog, pricing stores, and scenario comparator.
package businessflow

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

const RequestIDKey = "X-Request-ID"

// Owner identifies who a scenario or comparison set belongs to: an
// authenticated user or an anonymous wizard session. Exactly one side is set.
type Owner struct {
	UserID    *uint   `json:"user_id,omitempty"`
	SessionID *string `json:"session_id,omitempty"`
}

// Valid reports whether the owner names a user or a session.
func (o Owner) Valid() bool {
	return o.UserID != nil || o.SessionID != nil
}

// IsAnonymous reports whether the owner is a session rather than a user.
func (o Owner) IsAnonymous() bool {
	return o.UserID == nil
}

// ClientMetadata holds client-related information for request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// CacheConfig is the subset of cache settings the flows need for key derivation.
type CacheConfig struct {
	Enabled     bool
	RedisPrefix string
}

// redisKey derives a namespaced cache key.
func redisKey(cfg CacheConfig, parts ...string) string {
	key := cfg.RedisPrefix
	for _, p := range parts {
		if key == "" {
			key = p
			continue
		}
		key = fmt.Sprintf("%s:%s", key, p)
	}
	return key
}

// cacheAvailable reports whether a usable redis client was wired in.
func cacheAvailable(cfg *CacheConfig, rc *redis.Client) bool {
	return cfg != nil && cfg.Enabled && rc != nil
}
