package main

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/stochsim/polysim/internal/polysim"
	"github.com/stochsim/polysim/internal/polysim/notifiers"
)

// extractRunID extracts the run ID from a path like "/runs/{id}/..."
// Returns the run ID and the remaining path, or empty strings if not found.
func extractRunID(path string) (string, string) {
	if !strings.HasPrefix(path, "/runs/") {
		return "", ""
	}

	rest := path[len("/runs/"):]

	idx := strings.Index(rest, "/")
	if idx == -1 {
		return rest, ""
	}
	return rest[:idx], rest[idx:]
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// POST /runs
// Body: ModelConfig JSON
// Validates the model, starts a run, and returns its ID.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var cfg polysim.ModelConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		http.Error(w, "invalid model json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := polysim.ValidateModelConfig(cfg); err != nil {
		http.Error(w, "invalid model: "+err.Error(), http.StatusBadRequest)
		return
	}

	run, err := s.StartRun(cfg)
	if err != nil {
		s.logger.Errorf("Failed to start run: model=%s error=%v", cfg.Name, err)
		http.Error(w, "cannot start run: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(map[string]string{"run_id": run.id})
}

// GET /runs
// List all run IDs.
func (s *Server) handleListRuns(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string][]string{"runs": s.ListRuns()}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{id}
// Run status: state, simulated time, sample count.
func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request, run *simRun) {
	run.mu.Lock()
	status := run.status
	errMsg := ""
	if run.err != nil {
		errMsg = run.err.Error()
	}
	simTime := run.model.Scheduler.Time()
	samples := len(run.model.Scheduler.Snapshots())
	run.mu.Unlock()

	response := map[string]any{
		"run_id":  run.id,
		"model":   run.cfg.Name,
		"status":  status,
		"time":    simTime,
		"samples": samples,
	}
	if errMsg != "" {
		response["error"] = errMsg
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{id}/species
// Current species counts.
func (s *Server) handleRunSpecies(w http.ResponseWriter, r *http.Request, run *simRun) {
	run.mu.Lock()
	species := run.model.Tracker.Species()
	simTime := run.model.Scheduler.Time()
	run.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"run_id":  run.id,
		"time":    simTime,
		"species": species,
	}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// GET /runs/{id}/report
// Species counts over time as tab-separated values.
func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request, run *simRun) {
	run.mu.Lock()
	snapshots := append([]polysim.Snapshot(nil), run.model.Scheduler.Snapshots()...)
	run.mu.Unlock()

	w.Header().Set("Content-Type", "text/tab-separated-values")
	if err := polysim.WriteTSVReport(w, snapshots, polysim.SpeciesNames(snapshots)); err != nil {
		s.logger.Errorf("Failed to write report: run_id=%s error=%v", run.id, err)
	}
}

// DELETE /runs/{id}
// Cancel and remove a run.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request, run *simRun) {
	if err := s.DeleteRun(run.id); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	s.logger.Infof("Run deleted: run_id=%s", run.id)

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("run deleted"))
}

// handleRunRoutes routes requests to run-specific handlers.
// Handles paths like /runs/{id}, /runs/{id}/species, /runs/{id}/report.
func (s *Server) handleRunRoutes(w http.ResponseWriter, r *http.Request) {
	runID, remainingPath := extractRunID(r.URL.Path)
	if runID == "" {
		http.Error(w, "run ID is required in path: /runs/{id}/...", http.StatusBadRequest)
		return
	}

	run, exists := s.GetRun(runID)
	if !exists {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	switch {
	case remainingPath == "" && r.Method == http.MethodGet:
		s.handleRunStatus(w, r, run)
	case remainingPath == "" && r.Method == http.MethodDelete:
		s.handleDeleteRun(w, r, run)
	case remainingPath == "/species" && r.Method == http.MethodGet:
		s.handleRunSpecies(w, r, run)
	case remainingPath == "/report" && r.Method == http.MethodGet:
		s.handleRunReport(w, r, run)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// handleNotifiersRoutes handles notifier management endpoints
func (s *Server) handleNotifiersRoutes(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/notifiers" && r.Method == http.MethodGet:
		s.handleListNotifiers(w, r)
	case r.URL.Path == "/notifiers" && r.Method == http.MethodPost:
		s.handleRegisterNotifier(w, r)
	case strings.HasPrefix(r.URL.Path, "/notifiers/") && r.Method == http.MethodDelete:
		s.handleUnregisterNotifier(w, r)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

// GET /notifiers
// List all registered notifiers
func (s *Server) handleListNotifiers(w http.ResponseWriter, _ *http.Request) {
	notifierIDs := s.notifierMgr.ListNotifiers()

	list := make([]map[string]string, 0, len(notifierIDs))
	for _, id := range notifierIDs {
		notifier, exists := s.notifierMgr.GetNotifier(id)
		if exists {
			list = append(list, map[string]string{
				"id":   id,
				"type": notifier.Type(),
			})
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{"notifiers": list}); err != nil {
		http.Error(w, "cannot encode: "+err.Error(), http.StatusInternalServerError)
		return
	}
}

// POST /notifiers
// Register a new notifier
// Body: { "type": "webhook", "id": "my-webhook", "config": { "url": "http://..." } }
type registerNotifierRequest struct {
	Type   string         `json:"type"`
	ID     string         `json:"id"`
	Config map[string]any `json:"config"`
}

func (s *Server) handleRegisterNotifier(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerNotifierRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.ID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	var notifier polysim.Notifier

	switch req.Type {
	case "webhook":
		url, ok := req.Config["url"].(string)
		if !ok || url == "" {
			http.Error(w, "webhook URL is required", http.StatusBadRequest)
			return
		}
		wh := notifiers.NewWebhookNotifier(req.ID, url)

		if headers, ok := req.Config["headers"].(map[string]any); ok {
			for k, v := range headers {
				if vStr, ok := v.(string); ok {
					wh.SetHeader(k, vStr)
				}
			}
		}

		notifier = wh
	case "websocket":
		notifier = notifiers.NewWebSocketNotifier(req.ID)
	default:
		http.Error(w, "unknown notifier type: "+req.Type, http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.RegisterNotifier(notifier); err != nil {
		_ = notifier.Close()
		http.Error(w, "cannot register notifier: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier registered"))
}

// DELETE /notifiers/{id}
// Unregister a notifier
func (s *Server) handleUnregisterNotifier(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/notifiers/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required", http.StatusBadRequest)
		return
	}

	if err := s.notifierMgr.UnregisterNotifier(notifierID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("notifier unregistered"))
}

// GET /ws/{notifierID}
// Upgrade to a WebSocket connection fed by the named websocket notifier.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	notifierID := strings.TrimPrefix(r.URL.Path, "/ws/")
	if notifierID == "" {
		http.Error(w, "notifier ID is required in path: /ws/{id}", http.StatusBadRequest)
		return
	}

	notifier, exists := s.notifierMgr.GetNotifier(notifierID)
	if !exists {
		http.Error(w, "notifier not found", http.StatusNotFound)
		return
	}
	wsn, ok := notifier.(*notifiers.WebSocketNotifier)
	if !ok {
		http.Error(w, "notifier is not a websocket notifier", http.StatusBadRequest)
		return
	}

	upgrader := wsn.GetUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("WebSocket upgrade failed: notifier_id=%s error=%v", notifierID, err)
		return
	}
	wsn.RegisterClient(conn)

	// Drain the read side so close frames are processed; unregister on
	// disconnect.
	go func() {
		defer wsn.UnregisterClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
