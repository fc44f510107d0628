// HTTP request handling for the coach gateway.
//
// DESIGN: Every endpoint shares one pipeline shape:
//   - endpoint():   request ID, CORS, pre-flight, method check, rate limit,
//     access log, telemetry
//   - handlers:     auth gate -> (entitlement) -> validate -> model invoke ->
//     normalize, each stage failing fast through writeError
//
// No state crosses requests; the store and model clients are stateless HTTP
// wrappers shared read-only.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/genai"
	"github.com/train-anywhere/coach-gateway/internal/monitoring"
	"github.com/train-anywhere/coach-gateway/internal/store"
	"github.com/train-anywhere/coach-gateway/internal/utils"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Gateway holds the per-process dependencies shared by all handlers.
type Gateway struct {
	cfg     *config.Config
	store   *store.Client
	model   *genai.Client
	tracker *monitoring.Tracker
	limiter *ipLimiter
}

// New creates a Gateway from resolved configuration.
func New(cfg *config.Config) *Gateway {
	tracker, err := monitoring.NewTracker(monitoring.TelemetryConfig{
		Enabled:     cfg.Monitoring.Enabled,
		LogPath:     cfg.Monitoring.LogPath,
		LogToStdout: cfg.Monitoring.LogToStdout,
	})
	if err != nil {
		log.Warn().Err(err).Msg("telemetry disabled: tracker init failed")
		tracker, _ = monitoring.NewTracker(monitoring.TelemetryConfig{})
	}

	g := &Gateway{
		cfg:     cfg,
		store:   store.NewClient(cfg.Store.URL, cfg.Store.AnonKey, cfg.Store.ServiceKey),
		model:   genai.NewClient(cfg.Model.BaseURL, cfg.Model.APIKey, cfg.Model.GenerateModel, cfg.Model.EmbedModel),
		tracker: tracker,
	}
	if cfg.RateLimit.Enabled {
		g.limiter = newIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}

	tracker.RecordInit(buildInitEvent(cfg))
	return g
}

// Handler returns the routed HTTP handler.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", g.handleHealth)
	mux.Handle("/api/analyze-workout", g.endpoint("analyze-workout", g.handleAnalyzeWorkout))
	mux.Handle("/api/generate-plan", g.endpoint("generate-plan", g.handleGeneratePlan))
	mux.Handle("/api/search-exercises", g.endpoint("search-exercises", g.handleSearchExercises))
	return mux
}

// Close flushes telemetry.
func (g *Gateway) Close() error {
	return g.tracker.Close()
}

// =============================================================================
// ENDPOINT WRAPPER
// =============================================================================

// endpoint wraps a handler with the shared pre-pipeline stages. CORS headers
// go on before anything can fail so every response carries them.
func (g *Gateway) endpoint(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := g.getRequestID(r)
		w.Header().Set("X-Request-ID", requestID)

		g.applyCORS(w, r)

		// Pre-flight short-circuit: success, no body.
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		ev := &monitoring.RequestEvent{
			Timestamp: start,
			RequestID: requestID,
			Endpoint:  name,
			Method:    r.Method,
		}
		r = r.WithContext(withRequestEvent(r.Context(), ev))

		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		switch {
		case r.Method != http.MethodPost:
			g.writeError(sw, r, errMethodNotAllowed())
		case g.limiter != nil && !g.limiter.Allow(utils.ClientIP(r)):
			g.writeError(sw, r, errRateLimited())
		default:
			h(sw, r)
		}

		ev.StatusCode = sw.status
		ev.DurationMs = time.Since(start).Milliseconds()
		ev.Success = sw.status < 400
		g.tracker.RecordRequest(ev)

		log.Info().
			Str("request_id", requestID).
			Str("endpoint", name).
			Str("method", r.Method).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// getRequestID reuses the caller's X-Request-ID when present.
func (g *Gateway) getRequestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}

// =============================================================================
// HEALTH
// =============================================================================

// handleHealth returns gateway health status.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":  "ok",
		"time":    time.Now().Format(time.RFC3339),
		"version": Version,
	})
}

// =============================================================================
// TELEMETRY PLUMBING
// =============================================================================

type requestEventKey struct{}

func withRequestEvent(ctx context.Context, ev *monitoring.RequestEvent) context.Context {
	return context.WithValue(ctx, requestEventKey{}, ev)
}

func requestEventFrom(ctx context.Context) *monitoring.RequestEvent {
	ev, _ := ctx.Value(requestEventKey{}).(*monitoring.RequestEvent)
	return ev
}

// countModelCall increments the request's model-invocation counter.
func countModelCall(r *http.Request) {
	if ev := requestEventFrom(r.Context()); ev != nil {
		ev.ModelCalls++
	}
}

// statusWriter captures the response status for logging and telemetry.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func buildInitEvent(cfg *config.Config) *monitoring.InitEvent {
	wildcard := len(cfg.CORS.AllowedOrigins) == 0
	for _, o := range cfg.CORS.AllowedOrigins {
		if o == "*" {
			wildcard = true
		}
	}
	return &monitoring.InitEvent{
		Timestamp:      time.Now(),
		Event:          "gateway_init",
		ServerPort:     cfg.Server.Port,
		GenerateModel:  cfg.Model.GenerateModel,
		EmbedModel:     cfg.Model.EmbedModel,
		CORSWildcard:   wildcard,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RateLimitRPS:   cfg.RateLimit.RPS,
		HasModelKey:    cfg.Model.APIKey != "",
		HasServiceKey:  cfg.Store.ServiceKey != "",
	}
}
