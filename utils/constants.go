package utils

import (
	"time"
)

// ContextKey is the type used for request-scoped context values
type ContextKey string

// Request context keys
const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Buzz scoring constants
const (
	// BuzzWindow is the full scoring window for interaction events (24 hours)
	BuzzWindow = 24 * time.Hour

	// BuzzRecentWindow is the sub-window in which events count at full weight (6 hours)
	BuzzRecentWindow = 6 * time.Hour

	// BuzzDecayMultiplier is applied to events older than the recent sub-window
	BuzzDecayMultiplier = 0.5

	// Base weights by event kind
	BuzzWeightView   = 1
	BuzzWeightSave   = 3
	BuzzWeightFollow = 4

	// DefaultBuzzLimit is the default number of ranked entities returned
	DefaultBuzzLimit = 20
)

// Redis key names (prefixed per CacheConfig.RedisPrefix)
const (
	RetentionLockKey = "retention:lock"
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
