// Error taxonomy and mapping for the request pipeline.
//
// DESIGN: Every pipeline stage fails with a typed *apiError; writeError maps
// the kind to an HTTP status and a uniform `{"error": "..."}` envelope.
// Dependency faults (model provider, store) are surfaced as 400 so internal
// topology is not leaked. Causes are logged, never returned to the caller.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorKind identifies which pipeline stage rejected the request.
type ErrorKind string

const (
	ErrUnauthorized         ErrorKind = "unauthorized"
	ErrSubscriptionRequired ErrorKind = "subscription_required"
	ErrInvalidArgument      ErrorKind = "invalid_argument"
	ErrPayloadTooLarge      ErrorKind = "payload_too_large"
	ErrUpstream             ErrorKind = "upstream_error"
	ErrBadUpstreamResponse  ErrorKind = "bad_upstream_response"
	ErrRateLimited          ErrorKind = "rate_limited"
	ErrMethodNotAllowed     ErrorKind = "method_not_allowed"
	ErrUnhandled            ErrorKind = "unhandled"
)

// apiError carries a kind, a caller-visible message, and an internal cause.
type apiError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *apiError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *apiError) Unwrap() error { return e.cause }

func errUnauthorized() *apiError {
	return &apiError{Kind: ErrUnauthorized, Message: "Unauthorized"}
}

func errSubscriptionRequired() *apiError {
	return &apiError{Kind: ErrSubscriptionRequired, Message: "Pro subscription required"}
}

func errInvalidArgument(msg string) *apiError {
	return &apiError{Kind: ErrInvalidArgument, Message: msg}
}

// errInvalidField names the first failing field, matching the validator's
// first-found reporting order.
func errInvalidField(field string) *apiError {
	return &apiError{Kind: ErrInvalidArgument, Message: fmt.Sprintf("invalid value for %q", field)}
}

func errPayloadTooLarge() *apiError {
	return &apiError{Kind: ErrPayloadTooLarge, Message: "payload exceeds the 20 MiB limit"}
}

func errUpstream(msg string, cause error) *apiError {
	return &apiError{Kind: ErrUpstream, Message: msg, cause: cause}
}

func errBadUpstreamResponse(cause error) *apiError {
	return &apiError{Kind: ErrBadUpstreamResponse, Message: "invalid response from model provider", cause: cause}
}

func errRateLimited() *apiError {
	return &apiError{Kind: ErrRateLimited, Message: "rate limit exceeded"}
}

func errMethodNotAllowed() *apiError {
	return &apiError{Kind: ErrMethodNotAllowed, Message: "method not allowed"}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(kind ErrorKind) int {
	switch kind {
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrSubscriptionRequired:
		return http.StatusForbidden
	case ErrRateLimited:
		return http.StatusTooManyRequests
	case ErrMethodNotAllowed:
		return http.StatusMethodNotAllowed
	default:
		// InvalidArgument, PayloadTooLarge, Upstream, BadUpstreamResponse,
		// Unhandled - all caller-visible as 400.
		return http.StatusBadRequest
	}
}

// writeError writes the uniform error envelope. CORS headers were already
// attached by the endpoint wrapper, so error responses carry them too.
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		apiErr = &apiError{Kind: ErrUnhandled, Message: "request failed", cause: err}
	}

	if ev := requestEventFrom(r.Context()); ev != nil {
		ev.ErrorKind = string(apiErr.Kind)
	}
	if apiErr.cause != nil {
		log.Debug().Err(apiErr.cause).Str("kind", string(apiErr.Kind)).Str("path", r.URL.Path).Msg("request failed")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusFor(apiErr.Kind))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": apiErr.Message})
}

// writeJSON writes a success payload.
func (g *Gateway) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeRawJSON writes pre-validated JSON bytes without re-encoding.
func (g *Gateway) writeRawJSON(w http.ResponseWriter, status int, payload []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(payload)
}
