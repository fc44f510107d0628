package gateway_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/train-anywhere/coach-gateway/internal/config"
)

func TestCORS_AllowListRejectsUnknownOrigin(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, func(cfg *config.Config) {
		cfg.CORS.AllowedOrigins = []string{"https://train-anywhere.vercel.app"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-plan", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	// Unknown origin gets the default entry, never its own value echoed back.
	assert.Equal(t, "https://train-anywhere.vercel.app", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Body.String())
}

func TestCORS_AllowListEchoesMemberOrigin(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, func(cfg *config.Config) {
		cfg.CORS.AllowedOrigins = []string{"https://train-anywhere.vercel.app", "http://localhost:5173"}
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-plan", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Values("Vary"), "Origin")
}

func TestCORS_WildcardPolicy(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil) // empty allow-list selects wildcard

	req := httptest.NewRequest(http.MethodOptions, "/api/search-exercises", nil)
	req.Header.Set("Origin", "https://anything.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_HeadersPresentOnErrorResponses(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, func(cfg *config.Config) {
		cfg.CORS.AllowedOrigins = []string{"https://train-anywhere.vercel.app"}
	})

	// No bearer credential: 401, but CORS headers still attached.
	req := httptest.NewRequest(http.MethodPost, "/api/generate-plan", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "https://train-anywhere.vercel.app", w.Header().Get("Access-Control-Allow-Origin"))
}
