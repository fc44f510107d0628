package gateway_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/gateway"
)

// fakeBackends stands in for the store and the model provider. Counters let
// tests assert which upstreams were actually reached.
type fakeBackends struct {
	storeServer *httptest.Server
	modelServer *httptest.Server

	userID string
	isPro  bool

	// What the model returns from generateContent.
	generateText string

	// Captured state.
	generateCalls atomic.Int64
	embedCalls    atomic.Int64
	matchCalls    atomic.Int64
	lastMatchBody atomic.Value // []byte
	matchRows     string
}

const validToken = "valid-session-token"

func newFakeBackends(t *testing.T) *fakeBackends {
	t.Helper()

	f := &fakeBackends{
		userID:       "user-123",
		isPro:        true,
		generateText: `{"ok":true}`,
		matchRows:    `[]`,
	}

	storeMux := http.NewServeMux()
	storeMux.HandleFunc("/auth/v1/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+validToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.Header.Get("apikey") == "" {
			t.Error("identity lookup missing apikey header")
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": f.userID})
	})
	storeMux.HandleFunc("/rest/v1/profiles", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": f.userID, "is_pro": f.isPro},
		})
	})
	storeMux.HandleFunc("/rest/v1/rpc/match_exercises", func(w http.ResponseWriter, r *http.Request) {
		f.matchCalls.Add(1)
		body, _ := io.ReadAll(r.Body)
		f.lastMatchBody.Store(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.matchRows))
	})
	f.storeServer = httptest.NewServer(storeMux)
	t.Cleanup(f.storeServer.Close)

	modelMux := http.NewServeMux()
	modelMux.HandleFunc("/models/gemini-2.0-flash:generateContent", func(w http.ResponseWriter, r *http.Request) {
		f.generateCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": f.generateText}}}},
			},
		})
	})
	modelMux.HandleFunc("/models/text-embedding-004:embedContent", func(w http.ResponseWriter, r *http.Request) {
		f.embedCalls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embedding":{"values":[0.11,0.22,0.33]}}`))
	})
	f.modelServer = httptest.NewServer(modelMux)
	t.Cleanup(f.modelServer.Close)

	return f
}

func (f *fakeBackends) config() *config.Config {
	return &config.Config{
		Store: config.StoreConfig{
			URL:        f.storeServer.URL,
			AnonKey:    "anon-key",
			ServiceKey: "service-key",
		},
		Model: config.ModelConfig{
			BaseURL:       f.modelServer.URL,
			APIKey:        "test-model-key",
			GenerateModel: config.DefaultGenerateModel,
			EmbedModel:    config.DefaultEmbedModel,
		},
	}
}

func newTestGateway(t *testing.T, f *fakeBackends, mutate func(*config.Config)) http.Handler {
	t.Helper()
	cfg := f.config()
	if mutate != nil {
		mutate(cfg)
	}
	return gateway.New(cfg).Handler()
}
