package gateway_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(h http.Handler, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope.Error
}

func TestGeneratePlan_RequiresAuth(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	for _, token := range []string{"", "garbage-token"} {
		w := postJSON(h, "/api/generate-plan", token, `{"goal":"Strength","daysPerWeek":3,"equipment":"Full Gym","experience":"Beginner"}`)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Unauthorized", errorMessage(t, w))
	}
	assert.EqualValues(t, 0, f.generateCalls.Load(), "model must not be reached without auth")
}

func TestGeneratePlan_Validation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "unknown goal",
			body:       `{"goal":"Get Swole","daysPerWeek":3,"equipment":"Full Gym","experience":"Beginner"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "goal",
		},
		{
			name:       "missing goal",
			body:       `{"daysPerWeek":3,"equipment":"Full Gym","experience":"Beginner"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "goal",
		},
		{
			name:       "daysPerWeek zero",
			body:       `{"goal":"Strength","daysPerWeek":0,"equipment":"Full Gym","experience":"Beginner"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "daysPerWeek",
		},
		{
			name:       "daysPerWeek eight",
			body:       `{"goal":"Strength","daysPerWeek":8,"equipment":"Full Gym","experience":"Beginner"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "daysPerWeek",
		},
		{
			name:       "daysPerWeek fractional",
			body:       `{"goal":"Strength","daysPerWeek":3.5,"equipment":"Full Gym","experience":"Beginner"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "daysPerWeek",
		},
		{
			name:       "unknown equipment",
			body:       `{"goal":"Strength","daysPerWeek":3,"equipment":"Kettlebell Cult","experience":"Beginner"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "equipment",
		},
		{
			name:       "unknown experience",
			body:       `{"goal":"Strength","daysPerWeek":3,"equipment":"Full Gym","experience":"Legendary"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "experience",
		},
		{
			name:       "goal reported first",
			body:       `{"goal":"Nope","daysPerWeek":99,"equipment":"Nope","experience":"Nope"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "goal",
		},
	}

	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(h, "/api/generate-plan", validToken, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, errorMessage(t, w), tt.wantField)
		})
	}
	assert.EqualValues(t, 0, f.generateCalls.Load(), "invalid input must not reach the model")
}

func TestGeneratePlan_Success(t *testing.T) {
	f := newFakeBackends(t)
	// Providers often fence JSON output; the gateway must unwrap it.
	f.generateText = "```json\n" + `{"name":"4-Day Strength","description":"Progressive program","schedule":{"weeks":[{"week":1,"days":[]}]}}` + "\n```"
	h := newTestGateway(t, f, nil)

	w := postJSON(h, "/api/generate-plan", validToken,
		`{"goal":"Strength","daysPerWeek":4,"equipment":"Full Gym","experience":"Intermediate"}`)

	require.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var plan struct {
		Name     string `json:"name"`
		Schedule struct {
			Weeks []json.RawMessage `json:"weeks"`
		} `json:"schedule"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))
	assert.Equal(t, "4-Day Strength", plan.Name)
	assert.Len(t, plan.Schedule.Weeks, 1)
	assert.EqualValues(t, 1, f.generateCalls.Load())
}

func TestGeneratePlan_UnparseableModelReply(t *testing.T) {
	f := newFakeBackends(t)
	f.generateText = "Here is your plan: do squats on Monday."
	h := newTestGateway(t, f, nil)

	w := postJSON(h, "/api/generate-plan", validToken,
		`{"goal":"Strength","daysPerWeek":3,"equipment":"Full Gym","experience":"Beginner"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, errorMessage(t, w))
}

func TestGeneratePlan_ValidDays(t *testing.T) {
	f := newFakeBackends(t)
	h := newTestGateway(t, f, nil)

	w := postJSON(h, "/api/generate-plan", validToken,
		`{"goal":"Strength","daysPerWeek":3,"equipment":"Full Gym","experience":"Beginner"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}
