package gateway_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const smallPNG = "iVBORw0KGgoAAAANSUhEUg==" // truncated base64, shape is all that matters

func analyzeBody(images int) string {
	imgs := make([]string, images)
	for i := range imgs {
		imgs[i] = fmt.Sprintf(`{"data":%q,"mimeType":"image/png"}`, smallPNG)
	}
	return fmt.Sprintf(`{"images":[%s],"prompt":"Check my squat depth"}`, strings.Join(imgs, ","))
}

func TestAnalyzeWorkout_RequiresAuth(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	w := postJSON(h, "/api/analyze-workout", "", analyzeBody(1))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorMessage(t, w))
	assert.EqualValues(t, 0, f.generateCalls.Load())
}

func TestAnalyzeWorkout_RequiresProTier(t *testing.T) {
	f := newFakeBackends(t)
	f.isPro = false
	h := newTestGateway(t, f, nil)

	w := postJSON(h, "/api/analyze-workout", validToken, analyzeBody(1))

	assert.Equal(t, http.StatusForbidden, w.Code)
	// Entitlement failure must be decided before any model cost is incurred.
	assert.EqualValues(t, 0, f.generateCalls.Load(), "model must not be reached for non-pro users")
}

func TestAnalyzeWorkout_PayloadTooLarge(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	// Auth and entitlement pass; the size ceiling still rejects the request.
	huge := fmt.Sprintf(`{"images":[{"data":%q,"mimeType":"image/png"}],"prompt":"x"}`,
		strings.Repeat("A", 21*1024*1024))
	w := postJSON(h, "/api/analyze-workout", validToken, huge)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorMessage(t, w), "20 MiB")
	assert.EqualValues(t, 0, f.generateCalls.Load())
}

func TestAnalyzeWorkout_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "no images",
			body: `{"images":[],"prompt":"check form"}`,
			want: "images",
		},
		{
			name: "image missing data",
			body: `{"images":[{"mimeType":"image/png"}],"prompt":"check form"}`,
			want: "images[0].data",
		},
		{
			name: "image missing mime type",
			body: fmt.Sprintf(`{"images":[{"data":%q}],"prompt":"check form"}`, smallPNG),
			want: "images[0].mimeType",
		},
		{
			name: "not json",
			body: `this is not json`,
			want: "JSON",
		},
	}

	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(h, "/api/analyze-workout", validToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, errorMessage(t, w), tt.want)
		})
	}
	assert.EqualValues(t, 0, f.generateCalls.Load())
}

func TestAnalyzeWorkout_Success(t *testing.T) {
	f := newFakeBackends(t)
	f.generateText = "```json\n" + `{"exercise":"Squat","formScore":7,"issues":["knee cave"],"corrections":["push knees out"],"summary":"Solid depth"}` + "\n```"
	h := newTestGateway(t, f, nil)

	w := postJSON(h, "/api/analyze-workout", validToken, analyzeBody(2))

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var analysis struct {
		Exercise  string  `json:"exercise"`
		FormScore float64 `json:"formScore"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &analysis))
	assert.Equal(t, "Squat", analysis.Exercise)
	assert.EqualValues(t, 7, analysis.FormScore)
	assert.EqualValues(t, 1, f.generateCalls.Load())
}

func TestAnalyzeWorkout_MethodNotAllowed(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze-workout", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
