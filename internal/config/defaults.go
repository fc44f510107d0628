// Package config - defaults.go centralizes magic numbers and default values.
//
// DESIGN: All default values that appear in multiple places should be defined here.
// This makes configuration more maintainable and auditable.
package config

import "time"

// =============================================================================
// HTTP AND NETWORKING
// =============================================================================

// DefaultServerPort is the port the gateway listens on when PORT is unset.
const DefaultServerPort = 8787

// DefaultServerReadTimeout for the HTTP server.
const DefaultServerReadTimeout = 2 * time.Minute

// DefaultServerWriteTimeout for the HTTP server. Model calls are seconds-scale,
// so this needs headroom beyond a typical API timeout.
const DefaultServerWriteTimeout = 5 * time.Minute

// DefaultUpstreamTimeout is the HTTP client timeout for store and model calls.
const DefaultUpstreamTimeout = 120 * time.Second

// MaxAnalyzePayloadBytes is the serialized size ceiling for analyze-workout
// request bodies (20 MiB). Requests above this are rejected before any model
// call is made.
const MaxAnalyzePayloadBytes = 20 * 1024 * 1024

// MaxStructuredBodyBytes caps generate-plan and search-exercises bodies.
// These carry no media, so a small ceiling is enough.
const MaxStructuredBodyBytes = 64 * 1024

// MaxErrorBodyLogLen limits upstream error response bodies in logs.
const MaxErrorBodyLogLen = 500

// =============================================================================
// MODEL DEFAULTS
// =============================================================================

// DefaultModelBaseURL is the Gemini-compatible API base URL.
const DefaultModelBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// DefaultGenerateModel is used for analysis and plan generation.
const DefaultGenerateModel = "gemini-2.0-flash"

// DefaultEmbedModel produces the fixed-dimension query embeddings.
const DefaultEmbedModel = "text-embedding-004"

// =============================================================================
// VECTOR SEARCH DEFAULTS
// =============================================================================

// DefaultMatchThreshold is the cosine similarity floor for exercise search.
const DefaultMatchThreshold = 0.5

// DefaultMatchCount is the maximum number of exercises returned per search.
const DefaultMatchCount = 5

// =============================================================================
// RATE LIMITING
// =============================================================================

// DefaultRateLimit is requests per second per IP.
const DefaultRateLimit = 20

// DefaultRateBurst is the per-IP token bucket burst.
const DefaultRateBurst = 40

// MaxRateLimitBuckets prevents memory exhaustion from too many IP buckets.
const MaxRateLimitBuckets = 10000
