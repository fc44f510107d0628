// search-exercises: semantic search over the exercise catalog.
package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/store"
)

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Exercises []store.Exercise `json:"exercises"`
}

// handleSearchExercises embeds the query text and runs the similarity-search
// RPC with fixed threshold and count. The store's ordering is returned as-is.
func (g *Gateway) handleSearchExercises(w http.ResponseWriter, r *http.Request) {
	if _, err := g.authenticate(r); err != nil {
		g.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxStructuredBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		g.writeError(w, r, errInvalidArgument("failed to read request body"))
		return
	}

	var req searchRequest
	if err := json.Unmarshal(body, &req); err != nil {
		g.writeError(w, r, errInvalidArgument("request body must be valid JSON"))
		return
	}

	// Normalization is the validator's job, not the caller's.
	query := strings.TrimSpace(req.Query)
	if query == "" {
		g.writeError(w, r, errInvalidField("query"))
		return
	}

	countModelCall(r)
	embedding, err := g.model.EmbedText(r.Context(), query)
	if err != nil {
		g.writeError(w, r, errUpstream("model request failed", err))
		return
	}

	exercises, err := g.store.MatchExercises(r.Context(), embedding,
		config.DefaultMatchThreshold, config.DefaultMatchCount)
	if err != nil {
		g.writeError(w, r, errUpstream("exercise search failed", err))
		return
	}
	if exercises == nil {
		exercises = []store.Exercise{}
	}

	g.writeJSON(w, http.StatusOK, searchResponse{Exercises: exercises})
}
