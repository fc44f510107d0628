// Prompt builders for the fitness endpoints.
//
// USAGE:
//   - BuildAnalysisRequest(): multi-image form check -> free text/JSON
//   - BuildPlanRequest():     structured plan generation -> JSON-constrained
//
// Plan generation pins responseMimeType to application/json so the provider
// returns machine-parseable output; form analysis leaves the format to the
// caller's prompt.
package genai

import "fmt"

// =============================================================================
// System Prompts
// =============================================================================

// DefaultAnalysisPrompt is used when the caller supplies images without an
// explicit prompt.
const DefaultAnalysisPrompt = `You are an expert strength coach reviewing exercise form from photos.

For each image, assess:
1. Joint alignment and posture
2. Range of motion
3. Common injury risks visible in the position shown

Respond as JSON with the shape:
{"exercise": string, "formScore": number (1-10), "issues": [string], "corrections": [string], "summary": string}

Output only the JSON object - no explanations or meta-commentary.`

// planPromptTemplate drives JSON-constrained plan generation. The schema in
// the prompt is the contract the client renders; the gateway checks only that
// the reply parses as JSON.
const planPromptTemplate = `You are an expert personal trainer. Create a weekly workout plan.

Client profile:
- Goal: %s
- Training days per week: %d
- Available equipment: %s
- Experience level: %s

Respond as a single JSON object with the shape:
{
  "name": string,
  "description": string,
  "schedule": {
    "weeks": [
      {
        "week": number,
        "days": [
          {
            "day": string,
            "focus": string,
            "exercises": [
              {"name": string, "sets": number, "reps": string, "rest": string}
            ]
          }
        ]
      }
    ]
  }
}

Cover 4 weeks with progressive overload. Output only the JSON object.`

// =============================================================================
// Request Builders
// =============================================================================

// ImageInput is one caller-supplied image.
type ImageInput struct {
	Data     string
	MimeType string
}

// BuildAnalysisRequest assembles a multi-image + text generateContent request.
func BuildAnalysisRequest(images []ImageInput, prompt string) GenerateContentRequest {
	if prompt == "" {
		prompt = DefaultAnalysisPrompt
	}

	parts := make([]Part, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, Part{
			InlineData: &InlineData{MimeType: img.MimeType, Data: img.Data},
		})
	}
	parts = append(parts, Part{Text: prompt})

	return GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
	}
}

// BuildPlanRequest assembles a JSON-constrained plan generation request.
func BuildPlanRequest(goal string, daysPerWeek int, equipment, experience string) GenerateContentRequest {
	prompt := fmt.Sprintf(planPromptTemplate, goal, daysPerWeek, equipment, experience)

	return GenerateContentRequest{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: prompt}}}},
		GenerationConfig: &GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}
}
