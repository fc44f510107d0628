// analyze-workout: multi-image form analysis, pro tier only.
package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/genai"
)

type analysisImage struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

type analyzeRequest struct {
	Images []analysisImage `json:"images"`
	Prompt string          `json:"prompt"`
}

// handleAnalyzeWorkout runs the full gated pipeline: auth, pro entitlement,
// size/shape validation, one model call, JSON normalization.
func (g *Gateway) handleAnalyzeWorkout(w http.ResponseWriter, r *http.Request) {
	actx, err := g.authenticate(r)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	// Entitlement runs before the body is even read; a non-pro caller never
	// incurs model cost.
	if err := g.requirePro(r, actx); err != nil {
		g.writeError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, config.MaxAnalyzePayloadBytes+1)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			g.writeError(w, r, errPayloadTooLarge())
		} else {
			g.writeError(w, r, errInvalidArgument("failed to read request body"))
		}
		return
	}
	if len(body) > config.MaxAnalyzePayloadBytes {
		g.writeError(w, r, errPayloadTooLarge())
		return
	}

	var req analyzeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		g.writeError(w, r, errInvalidArgument("request body must be valid JSON"))
		return
	}
	if err := validateAnalyzeRequest(&req); err != nil {
		g.writeError(w, r, err)
		return
	}

	images := make([]genai.ImageInput, len(req.Images))
	for i, img := range req.Images {
		images[i] = genai.ImageInput{Data: img.Data, MimeType: img.MimeType}
	}

	countModelCall(r)
	text, err := g.model.GenerateContent(r.Context(), genai.BuildAnalysisRequest(images, req.Prompt))
	if err != nil {
		g.writeError(w, r, errUpstream("model request failed", err))
		return
	}

	payload, err := parseModelJSON(text)
	if err != nil {
		g.writeError(w, r, errBadUpstreamResponse(err))
		return
	}

	g.writeRawJSON(w, http.StatusOK, payload)
}

// validateAnalyzeRequest reports the first failing field.
func validateAnalyzeRequest(req *analyzeRequest) error {
	if len(req.Images) == 0 {
		return errInvalidArgument(`"images" must contain at least one image`)
	}
	for i, img := range req.Images {
		if img.Data == "" {
			return errInvalidField(fmt.Sprintf("images[%d].data", i))
		}
		if img.MimeType == "" {
			return errInvalidField(fmt.Sprintf("images[%d].mimeType", i))
		}
	}
	return nil
}
