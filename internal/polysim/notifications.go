package polysim

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// Kinds of run events fanned out to notifiers.
const (
	EventTermination = "termination"
	EventTranscript  = "transcript"
	EventSample      = "sample"
)

// RunEvent is a notification emitted while a simulation run progresses.
type RunEvent struct {
	RunID     string         `json:"run_id"`
	Time      float64        `json:"time"`
	Kind      string         `json:"kind"`
	Polymer   string         `json:"polymer,omitempty"`
	Mover     string         `json:"mover,omitempty"`
	Gene      string         `json:"gene,omitempty"`
	Species   map[string]int `json:"species,omitempty"`
	Timestamp int64          `json:"timestamp"`
}

// JSON returns the event as JSON bytes.
func (e RunEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is a delivery channel for run events.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string
	// Type returns the kind of notifier (e.g. "webhook", "websocket").
	Type() string
	// Notify delivers one event. The context bounds delivery time.
	Notify(ctx context.Context, event RunEvent) error
	// Close releases any resources held by the notifier.
	Close() error
}

type notificationJob struct {
	event       RunEvent
	notifierIDs []string
}

// NotificationManager routes run events to registered notifiers
// asynchronously, so delivery never blocks the simulation loop. Delivery
// is best effort: a full queue drops events, and failed deliveries are
// retried with exponential backoff before giving up.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	logger    Logger
}

// NewNotificationManager creates a manager with one delivery worker.
func NewNotificationManager(logger Logger) *NotificationManager {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		logger:    logger,
	}
	mgr.wg.Add(1)
	go mgr.worker()
	return mgr
}

// RegisterNotifier adds a notifier to the manager.
func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}
	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}
	nm.mu.Lock()
	defer nm.mu.Unlock()
	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}
	nm.notifiers[id] = notifier
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	if exists {
		delete(nm.notifiers, id)
	}
	nm.mu.Unlock()
	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}
	if err := notifier.Close(); err != nil {
		return fmt.Errorf("closing notifier %s: %w", id, err)
	}
	return nil
}

// GetNotifier returns the notifier with the given ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the IDs of all registered notifiers.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Enqueue queues an event for asynchronous delivery to the named
// notifiers. Non-blocking; drops the event if the queue is full.
func (nm *NotificationManager) Enqueue(event RunEvent, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}
	nm.mu.RLock()
	closed := nm.closed
	nm.mu.RUnlock()
	if closed {
		return
	}
	event.Timestamp = time.Now().Unix()
	select {
	case nm.jobs <- notificationJob{event: event, notifierIDs: notifierIDs}:
	default:
		nm.logger.Warnf("notification queue full, dropping %s event for run %s", event.Kind, event.RunID)
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		for _, id := range job.notifierIDs {
			nm.notifyWithRetry(ctx, id, job.event)
		}
		cancel()
	}
}

func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event RunEvent) {
	nm.mu.RLock()
	notifier, ok := nm.notifiers[notifierID]
	nm.mu.RUnlock()
	if !ok {
		nm.logger.Warnf("notification failed: notifier %s not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond
	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		if err == nil {
			return
		}
		nm.logger.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)
		if attempt == maxRetries {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Close shuts down delivery and closes all registered notifiers.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	defer nm.mu.Unlock()
	var firstErr error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing notifier %s: %w", id, err)
		}
	}
	nm.notifiers = make(map[string]Notifier)
	return firstErr
}
