package main

import (
	"net/http"
	"os"

	"github.com/stochsim/polysim/internal/polysim"
)

func main() {
	cfg := loadServerConfig()
	logger := NewLogger(cfg.LogLevel)

	srv := NewServer(logger, cfg.StepBatchSize)

	if cfg.ModelFile != "" {
		data, err := os.ReadFile(cfg.ModelFile)
		if err != nil {
			logger.Fatalf("reading model file %s: %v", cfg.ModelFile, err)
		}
		modelCfg, err := polysim.LoadModelConfig(data)
		if err != nil {
			logger.Fatalf("loading model file %s: %v", cfg.ModelFile, err)
		}
		run, err := srv.StartRun(modelCfg)
		if err != nil {
			logger.Fatalf("starting initial run: %v", err)
		}
		logger.Infof("Initial run started from %s: run_id=%s", cfg.ModelFile, run.id)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", srv.handleHealth)
	mux.HandleFunc("/runs", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			srv.handleStartRun(w, r)
		case http.MethodGet:
			srv.handleListRuns(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("/runs/", srv.handleRunRoutes)
	mux.HandleFunc("/notifiers", srv.handleNotifiersRoutes)
	mux.HandleFunc("/notifiers/", srv.handleNotifiersRoutes)
	mux.HandleFunc("/ws/", srv.handleWebSocket)

	logger.Infof("polysim-server listening on %s", cfg.Addr)
	logger.Fatalf("%v", http.ListenAndServe(cfg.Addr, mux))
}
