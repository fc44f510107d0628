// Response normalization for model output.
//
// Providers frequently wrap JSON replies in Markdown code fences even when
// asked not to. The normalizer strips the fence, then requires the remainder
// to parse as JSON; a parse failure is terminal, never coerced into partial
// data.
package gateway

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// stripCodeFence removes a surrounding ``` or ```json fence, if present.
// Unfenced input is returned trimmed and otherwise untouched.
func stripCodeFence(s string) string {
	t := strings.TrimSpace(s)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	t = strings.TrimPrefix(t, "json")
	t = strings.TrimSpace(t)
	t = strings.TrimSuffix(t, "```")
	return strings.TrimSpace(t)
}

// parseModelJSON normalizes model text into raw JSON bytes. Deeper schema
// validation of plan payloads is deliberately not performed here.
func parseModelJSON(text string) ([]byte, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("model returned an empty reply")
	}
	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("model reply is not valid JSON")
	}
	return []byte(cleaned), nil
}
