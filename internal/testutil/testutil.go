// Package testutil provides common test utilities and helpers for QuitPulse tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/quitpulse/QuitPulse/internal/api"
	"github.com/quitpulse/QuitPulse/internal/insights"
	"github.com/quitpulse/QuitPulse/internal/intervention"
	"github.com/quitpulse/QuitPulse/internal/models"
	"github.com/quitpulse/QuitPulse/internal/notify"
	"github.com/quitpulse/QuitPulse/internal/scheduler"
	"github.com/quitpulse/QuitPulse/internal/store"
	"github.com/quitpulse/QuitPulse/internal/tracker"
)

// NewTestServer creates a test API server with in-memory dependencies.
// The tracker is returned alongside so tests can seed and inspect events.
func NewTestServer(t *testing.T) (*api.Server, *tracker.Service) {
	t.Helper()

	kv := store.NewInMemoryKV()
	tr := tracker.NewService(kv)
	runner := intervention.NewRunner(tr)
	t.Cleanup(runner.Stop)

	sched := scheduler.NewScheduler()
	t.Cleanup(sched.Stop)
	notifier := notify.NewService(sched)
	gen := &insights.StaticGenerator{Delay: 0}

	return api.NewServer(tr, runner, notifier, gen), tr
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// AssertJSONResponse decodes JSON response and validates the status field.
func AssertJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, expectedStatus string) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}

	if status, ok := response["status"].(string); ok {
		if status != expectedStatus {
			t.Errorf("expected status '%s', got '%s'", expectedStatus, status)
		}
	} else {
		t.Error("response missing or invalid 'status' field")
	}

	return response
}

// CreateHTTPRequest creates an HTTP request with optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// SeedCravings appends one craving event per given hour to the tracker,
// all stamped on the same reference day.
func SeedCravings(t *testing.T, tr *tracker.Service, hours []int) {
	t.Helper()
	base := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local)
	for _, h := range hours {
		event := models.NewCravingEvent(base.Add(time.Duration(h)*time.Hour), models.IntensityHigh, "")
		if err := tr.AppendCravingEvent(event); err != nil {
			t.Fatalf("failed to seed craving event: %v", err)
		}
	}
}

// MustMarshalJSON marshals an object to JSON and fails test on error.
func MustMarshalJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal JSON: %v", err)
	}
	return data
}

// MustUnmarshalJSON unmarshals JSON data into target and fails test on error.
func MustUnmarshalJSON(t *testing.T, data []byte, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(data, target); err != nil {
		t.Fatalf("failed to unmarshal JSON: %v", err)
	}
}
