package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stochsim/polysim/internal/polysim"
)

func buildTestModel() polysim.ModelConfig {
	return NewModel("single-gene").
		Genome(NewGenome("plasmid", 230).
			Promoter(NewPromoter("phi", 1, 10).Binding("rnapol", 2e8)).
			Gene("proteinX", 26, 148, 11, 25, 1e7).
			Terminator(NewTerminator("t1", 160, 165).Efficiency("rnapol", 1.0))).
		Polymerase("rnapol", 10, 40, 10).
		Polymerase("ribosome", 10, 30, 100).
		Seed(42).
		RunFor(60, 5).
		Build()
}

func TestModelBuilder(t *testing.T) {
	cfg := buildTestModel()

	if cfg.Name != "single-gene" {
		t.Errorf("Expected name 'single-gene', got '%s'", cfg.Name)
	}
	if cfg.Genome.Length != 230 {
		t.Errorf("Expected genome length 230, got %d", cfg.Genome.Length)
	}
	if len(cfg.Genome.Promoters) != 1 || cfg.Genome.Promoters[0].Interactions["rnapol"] != 2e8 {
		t.Errorf("Unexpected promoters: %+v", cfg.Genome.Promoters)
	}
	if len(cfg.Genome.Genes) != 1 || cfg.Genome.Genes[0].RBSStop != 25 {
		t.Errorf("Unexpected genes: %+v", cfg.Genome.Genes)
	}
	if len(cfg.Polymerases) != 2 {
		t.Fatalf("Expected 2 polymerases, got %d", len(cfg.Polymerases))
	}
	if cfg.Run.Seed != 42 || cfg.Run.StopTime != 60 || cfg.Run.SampleInterval != 5 {
		t.Errorf("Unexpected run config: %+v", cfg.Run)
	}

	if err := polysim.ValidateModelConfig(cfg); err != nil {
		t.Errorf("Built model should validate, got: %v", err)
	}
}

func TestGenomeBuilderOptions(t *testing.T) {
	genome := NewGenome("phage", 100).
		Mask(20, "rnapol").
		DegradationRate(1e-2).
		Weights(make([]float64, 100)...).
		Build()

	if genome.Mask == nil || genome.Mask.Start != 20 {
		t.Fatalf("Expected mask at 20, got %+v", genome.Mask)
	}
	if len(genome.Mask.Interactions) != 1 || genome.Mask.Interactions[0] != "rnapol" {
		t.Errorf("Unexpected mask interactions: %v", genome.Mask.Interactions)
	}
	if genome.TranscriptDegradationRate != 1e-2 {
		t.Errorf("Expected degradation rate 1e-2, got %g", genome.TranscriptDegradationRate)
	}
	if len(genome.TranscriptWeights) != 100 {
		t.Errorf("Expected 100 weights, got %d", len(genome.TranscriptWeights))
	}
}

func TestModelBuilderSpeciesAndReactions(t *testing.T) {
	cfg := NewModel("decay").
		Species("proteinX", 50).
		Reaction(1e-3, []string{"proteinX"}, []string{"degraded"}).
		Build()

	if len(cfg.Species) != 1 || cfg.Species[0].Count != 50 {
		t.Errorf("Unexpected species: %+v", cfg.Species)
	}
	if len(cfg.Reactions) != 1 || cfg.Reactions[0].RateConstant != 1e-3 {
		t.Errorf("Unexpected reactions: %+v", cfg.Reactions)
	}
}

func TestClientStartRun(t *testing.T) {
	var received polysim.ModelConfig
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/runs" {
			t.Errorf("Unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("Decoding model failed: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{"run_id": "run-1"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	runID, err := c.StartRun(context.Background(), buildTestModel())
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if runID != "run-1" {
		t.Errorf("Expected run ID 'run-1', got '%s'", runID)
	}
	if received.Name != "single-gene" {
		t.Errorf("Server received wrong model: %s", received.Name)
	}
}

func TestClientStatusAndSpecies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/runs/run-1":
			_ = json.NewEncoder(w).Encode(RunStatus{RunID: "run-1", Status: "finished", Time: 60, Samples: 13})
		case "/runs/run-1/species":
			_ = json.NewEncoder(w).Encode(SpeciesCounts{RunID: "run-1", Time: 60, Species: map[string]int{"proteinX": 7}})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL)

	status, err := c.Status(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Status != "finished" || status.Samples != 13 {
		t.Errorf("Unexpected status: %+v", status)
	}

	counts, err := c.Species(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Species failed: %v", err)
	}
	if counts.Species["proteinX"] != 7 {
		t.Errorf("Expected 7 proteinX, got %d", counts.Species["proteinX"])
	}
}

func TestClientWaitForRun(t *testing.T) {
	var polls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		polls++
		status := "running"
		if polls >= 3 {
			status = "finished"
		}
		_ = json.NewEncoder(w).Encode(RunStatus{RunID: "run-1", Status: status})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	status, err := c.WaitForRun(context.Background(), "run-1", 5*time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForRun failed: %v", err)
	}
	if status.Status != "finished" {
		t.Errorf("Expected finished, got %s", status.Status)
	}
	if polls < 3 {
		t.Errorf("Expected at least 3 polls, got %d", polls)
	}
}

func TestClientWaitForRunFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(RunStatus{RunID: "run-1", Status: "failed", Error: "movers overlap"})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, err := c.WaitForRun(context.Background(), "run-1", time.Millisecond); err == nil {
		t.Error("Expected an error for a failed run")
	}
}

func TestClientServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid model: genome length is required", http.StatusBadRequest)
	}))
	defer server.Close()

	c := NewClient(server.URL)
	_, err := c.StartRun(context.Background(), polysim.ModelConfig{})
	if err == nil {
		t.Fatal("Expected an error from a 400 response")
	}
}

func TestClientNotifiers(t *testing.T) {
	var registered map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/notifiers":
			if err := json.NewDecoder(r.Body).Decode(&registered); err != nil {
				t.Errorf("Decoding notifier failed: %v", err)
			}
			_, _ = w.Write([]byte("notifier registered"))
		case r.Method == http.MethodDelete && r.URL.Path == "/notifiers/hook-1":
			_, _ = w.Write([]byte("notifier unregistered"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c := NewClient(server.URL)
	err := c.RegisterWebhook(context.Background(), "hook-1", "http://example.com/hook", map[string]string{"X-Token": "abc"})
	if err != nil {
		t.Fatalf("RegisterWebhook failed: %v", err)
	}
	if registered["type"] != "webhook" || registered["id"] != "hook-1" {
		t.Errorf("Unexpected registration body: %v", registered)
	}
	cfg, _ := registered["config"].(map[string]any)
	if cfg["url"] != "http://example.com/hook" {
		t.Errorf("Unexpected webhook config: %v", cfg)
	}

	if err := c.UnregisterNotifier(context.Background(), "hook-1"); err != nil {
		t.Fatalf("UnregisterNotifier failed: %v", err)
	}
}
