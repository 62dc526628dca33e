package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/stochsim/polysim/internal/polysim"
)

// Run status values reported by the API.
const (
	StatusRunning  = "running"
	StatusFinished = "finished"
	StatusFailed   = "failed"
	StatusCanceled = "canceled"
)

// simRun is one simulation run owned by the server. The scheduler is
// single-threaded; mu serializes stepping and HTTP state reads.
type simRun struct {
	id     string
	cfg    polysim.ModelConfig
	model  *polysim.Model
	cancel context.CancelFunc

	mu     sync.Mutex
	status string
	err    error
}

// Server manages simulation runs and the global notifier registry.
type Server struct {
	mu          sync.RWMutex
	runs        map[string]*simRun
	notifierMgr *polysim.NotificationManager
	logger      *Logger
	batchSize   int
}

// NewServer creates a new server instance
func NewServer(logger *Logger, batchSize int) *Server {
	if batchSize <= 0 {
		batchSize = 1024
	}
	return &Server{
		runs:        make(map[string]*simRun),
		notifierMgr: polysim.NewNotificationManager(logger),
		logger:      logger,
		batchSize:   batchSize,
	}
}

// StartRun builds a model from the config and starts stepping it in the
// background. All currently registered notifiers receive its events.
func (s *Server) StartRun(cfg polysim.ModelConfig) (*simRun, error) {
	model, err := polysim.BuildModel(cfg, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building model: %w", err)
	}
	model.Scheduler.SetNotifications(s.notifierMgr, s.notifierMgr.ListNotifiers())

	ctx, cancel := context.WithCancel(context.Background())
	run := &simRun{
		id:     model.Scheduler.ID(),
		cfg:    cfg,
		model:  model,
		cancel: cancel,
		status: StatusRunning,
	}

	s.mu.Lock()
	s.runs[run.id] = run
	s.mu.Unlock()

	go s.drive(ctx, run)
	s.logger.Infof("Run started: run_id=%s model=%s", run.id, cfg.Name)
	return run, nil
}

// drive steps the run in batches until completion, releasing the run
// lock between batches so handlers can read live state.
func (s *Server) drive(ctx context.Context, run *simRun) {
	stopTime := run.cfg.Run.StopTime
	sampleInterval := run.cfg.Run.SampleInterval
	for {
		run.mu.Lock()
		done, err := run.model.Scheduler.RunSteps(ctx, stopTime, sampleInterval, s.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				run.status = StatusCanceled
			} else {
				run.status = StatusFailed
				run.err = err
			}
			run.mu.Unlock()
			if run.status == StatusFailed {
				s.logger.Errorf("Run failed: run_id=%s error=%v", run.id, err)
			} else {
				s.logger.Infof("Run canceled: run_id=%s", run.id)
			}
			return
		}
		if done {
			run.status = StatusFinished
			run.mu.Unlock()
			s.logger.Infof("Run finished: run_id=%s", run.id)
			return
		}
		run.mu.Unlock()
	}
}

// GetRun returns the run with the given ID.
func (s *Server) GetRun(id string) (*simRun, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, exists := s.runs[id]
	return run, exists
}

// ListRuns returns all run IDs.
func (s *Server) ListRuns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.runs))
	for id := range s.runs {
		ids = append(ids, id)
	}
	return ids
}

// DeleteRun cancels a run and removes it from the server.
func (s *Server) DeleteRun(id string) error {
	s.mu.Lock()
	run, exists := s.runs[id]
	if exists {
		delete(s.runs, id)
	}
	s.mu.Unlock()
	if !exists {
		return fmt.Errorf("run %s not found", id)
	}
	run.cancel()
	return nil
}
