// generate-plan: JSON-constrained workout plan generation.
package gateway

import (
	"encoding/json"
	"io"
	"math"
	"net/http"

	"github.com/train-anywhere/coach-gateway/internal/config"
	"github.com/train-anywhere/coach-gateway/internal/genai"
)

// Closed enumerations for the plan request. Unknown values are rejected, not
// passed through to the prompt.
var (
	planGoals = []string{"Muscle Gain", "Fat Loss", "Strength", "Endurance"}

	planEquipment = []string{"Full Gym", "Dumbbells Only", "Bodyweight Only"}

	planExperience = []string{"Beginner", "Intermediate", "Advanced"}
)

type planRequest struct {
	Goal        string  `json:"goal"`
	DaysPerWeek float64 `json:"daysPerWeek"`
	Equipment   string  `json:"equipment"`
	Experience  string  `json:"experience"`
}

// handleGeneratePlan validates a structured request against its closed
// enumerations, then asks the model for a JSON plan.
func (g *Gateway) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
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

	var req planRequest
	if err := json.Unmarshal(body, &req); err != nil {
		g.writeError(w, r, errInvalidArgument("request body must be valid JSON"))
		return
	}
	if err := validatePlanRequest(&req); err != nil {
		g.writeError(w, r, err)
		return
	}

	countModelCall(r)
	text, err := g.model.GenerateContent(r.Context(), genai.BuildPlanRequest(
		req.Goal, int(req.DaysPerWeek), req.Equipment, req.Experience))
	if err != nil {
		g.writeError(w, r, errUpstream("model request failed", err))
		return
	}

	// Valid JSON is the only contract here; schedule.weeks internals are the
	// model's to fill and the client's to render.
	payload, err := parseModelJSON(text)
	if err != nil {
		g.writeError(w, r, errBadUpstreamResponse(err))
		return
	}

	g.writeRawJSON(w, http.StatusOK, payload)
}

// validatePlanRequest checks each field against its enumeration in a fixed
// order, reporting the first failure for reproducibility.
func validatePlanRequest(req *planRequest) error {
	if !isMember(req.Goal, planGoals) {
		return errInvalidField("goal")
	}
	if req.DaysPerWeek != math.Trunc(req.DaysPerWeek) ||
		req.DaysPerWeek < 1 || req.DaysPerWeek > 7 {
		return errInvalidField("daysPerWeek")
	}
	if !isMember(req.Equipment, planEquipment) {
		return errInvalidField("equipment")
	}
	if !isMember(req.Experience, planExperience) {
		return errInvalidField("experience")
	}
	return nil
}

func isMember(v string, members []string) bool {
	for _, m := range members {
		if v == m {
			return true
		}
	}
	return false
}
