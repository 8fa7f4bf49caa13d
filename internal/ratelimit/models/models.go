// Package models holds rate limit classes and results.
package models

import (
	"strings"
	"time"
)

// EndpointClass categorizes endpoints for differentiated rate limiting.
type EndpointClass string

const (
	// ClassAuth: wallet sign-in (/auth/challenge, /auth/token), keyed by IP
	ClassAuth EndpointClass = "auth"
	// ClassWrite: controller mutations, keyed by caller address
	ClassWrite EndpointClass = "write"
	// ClassRead: public views, keyed by IP
	ClassRead EndpointClass = "read"
)

// Limit is the request budget of a class within a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits are applied when no override is configured.
var DefaultLimits = map[EndpointClass]Limit{
	ClassAuth:  {Requests: 10, Window: time.Minute},
	ClassWrite: {Requests: 60, Window: time.Minute},
	ClassRead:  {Requests: 300, Window: time.Minute},
}

// RateLimitResult represents the outcome of a rate limit check.
type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

// RateLimitExceededResponse is the API response when rate limit is exceeded.
type RateLimitExceededResponse struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after"`
}

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// so a crafted identifier cannot address another bucket.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// Key builds the bucket key for a class and identifier.
func Key(class EndpointClass, kind, identifier string) string {
	return "rl:" + string(class) + ":" + kind + ":" + SanitizeKeySegment(identifier)
}
