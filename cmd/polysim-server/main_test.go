package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stochsim/polysim/internal/polysim"
)

func testModelConfig() polysim.ModelConfig {
	return polysim.ModelConfig{
		Name: "single-gene",
		Genome: polysim.GenomeConfig{
			Name:   "plasmid",
			Length: 120,
			Promoters: []polysim.PromoterConfig{
				{Name: "p1", Start: 1, Stop: 10, Interactions: map[string]float64{"rnapol": 1e7}},
			},
			Terminators: []polysim.TerminatorConfig{
				{Name: "t1", Start: 90, Stop: 95, Efficiency: map[string]float64{"rnapol": 1.0}},
			},
		},
		Polymerases: []polysim.PolymeraseConfig{
			{Name: "rnapol", Footprint: 10, Speed: 40, Copies: 10},
		},
		Run: polysim.RunConfig{Seed: 42, StopTime: 5, SampleInterval: 1},
	}
}

func TestExtractRunID(t *testing.T) {
	tests := []struct {
		path     string
		id       string
		restPath string
	}{
		{"/runs/abc", "abc", ""},
		{"/runs/abc/species", "abc", "/species"},
		{"/runs/abc/report", "abc", "/report"},
		{"/other/abc", "", ""},
	}
	for _, tc := range tests {
		id, rest := extractRunID(tc.path)
		if id != tc.id || rest != tc.restPath {
			t.Errorf("extractRunID(%q) = (%q, %q), want (%q, %q)", tc.path, id, rest, tc.id, tc.restPath)
		}
	}
}

func TestHandleHealth(t *testing.T) {
	srv := NewServer(NewLogger("error"), 0)

	rec := httptest.NewRecorder()
	srv.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", rec.Code)
	}
}

func waitForStatus(t *testing.T, srv *Server, runID, want string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		run, exists := srv.GetRun(runID)
		if !exists {
			t.Fatalf("Run %s disappeared", runID)
		}
		run.mu.Lock()
		status := run.status
		run.mu.Unlock()
		if status == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Run %s never reached status %s", runID, want)
}

func TestStartRunLifecycle(t *testing.T) {
	srv := NewServer(NewLogger("error"), 0)

	body, err := json.Marshal(testModelConfig())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	rec := httptest.NewRecorder()
	srv.handleStartRun(rec, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var created map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("Decoding response failed: %v", err)
	}
	runID := created["run_id"]
	if runID == "" {
		t.Fatal("Expected a run ID in the response")
	}

	waitForStatus(t, srv, runID, StatusFinished)

	rec = httptest.NewRecorder()
	srv.handleRunRoutes(rec, httptest.NewRequest(http.MethodGet, "/runs/"+runID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	var status map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("Decoding status failed: %v", err)
	}
	if status["status"] != StatusFinished {
		t.Errorf("Expected finished status, got %v", status["status"])
	}
	if status["samples"].(float64) != 6 {
		t.Errorf("Expected 6 samples, got %v", status["samples"])
	}

	rec = httptest.NewRecorder()
	srv.handleRunRoutes(rec, httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/species", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for species, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handleRunRoutes(rec, httptest.NewRequest(http.MethodGet, "/runs/"+runID+"/report", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for report, got %d", rec.Code)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("time\t")) {
		t.Errorf("Expected a TSV report, got %q", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.handleRunRoutes(rec, httptest.NewRequest(http.MethodDelete, "/runs/"+runID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for delete, got %d", rec.Code)
	}
	if _, exists := srv.GetRun(runID); exists {
		t.Error("Expected the run removed after delete")
	}
}

func TestStartRunRejectsInvalidModel(t *testing.T) {
	srv := NewServer(NewLogger("error"), 0)

	rec := httptest.NewRecorder()
	srv.handleStartRun(rec, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte(`{"name":"broken"}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for an invalid model, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handleStartRun(rec, httptest.NewRequest(http.MethodPost, "/runs", bytes.NewReader([]byte("{"))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for malformed JSON, got %d", rec.Code)
	}
}

func TestRunNotFound(t *testing.T) {
	srv := NewServer(NewLogger("error"), 0)

	rec := httptest.NewRecorder()
	srv.handleRunRoutes(rec, httptest.NewRequest(http.MethodGet, "/runs/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rec.Code)
	}
}

func TestNotifierEndpoints(t *testing.T) {
	srv := NewServer(NewLogger("error"), 0)

	body := []byte(`{"type":"websocket","id":"ws-1"}`)
	rec := httptest.NewRecorder()
	srv.handleNotifiersRoutes(rec, httptest.NewRequest(http.MethodPost, "/notifiers", bytes.NewReader(body)))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 registering a notifier, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.handleNotifiersRoutes(rec, httptest.NewRequest(http.MethodGet, "/notifiers", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 listing notifiers, got %d", rec.Code)
	}
	var list map[string][]map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("Decoding list failed: %v", err)
	}
	if len(list["notifiers"]) != 1 || list["notifiers"][0]["id"] != "ws-1" {
		t.Errorf("Unexpected notifier list: %v", list)
	}

	rec = httptest.NewRecorder()
	srv.handleNotifiersRoutes(rec, httptest.NewRequest(http.MethodDelete, "/notifiers/ws-1", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 unregistering, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	srv.handleNotifiersRoutes(rec, httptest.NewRequest(http.MethodPost, "/notifiers", bytes.NewReader([]byte(`{"type":"webhook","id":"wh"}`))))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for a webhook without URL, got %d", rec.Code)
	}
}
