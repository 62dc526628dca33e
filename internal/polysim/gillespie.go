package polysim

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
)

// Scheduler drives one simulation run with the Gillespie stochastic
// simulation algorithm: it aggregates total propensity across all
// registered reactions and polymers, samples one action, executes it to
// full completion, and advances simulated time by an exponentially
// distributed step. Strictly single-threaded and turn-based.
type Scheduler struct {
	runID   string
	tracker *SpeciesTracker
	rng     *rand.Rand
	logger  Logger

	reactions []Reaction
	polymers  []*Polymer
	// transcript polymers get gene-product bookkeeping on termination
	transcripts map[*Polymer]bool

	time       float64
	nextSample float64
	snapshots  []Snapshot

	notifications *NotificationManager
	notifierIDs   []string
}

// NewScheduler creates a scheduler for one run over the given tracker.
func NewScheduler(tracker *SpeciesTracker, rng *rand.Rand, logger Logger) *Scheduler {
	if logger == nil {
		logger = NewNoOpLogger()
	}
	return &Scheduler{
		runID:       uuid.NewString(),
		tracker:     tracker,
		rng:         rng,
		logger:      logger,
		transcripts: make(map[*Polymer]bool),
	}
}

// ID returns the unique identifier of this run.
func (s *Scheduler) ID() string { return s.runID }

// Time returns the current simulated time in seconds.
func (s *Scheduler) Time() float64 { return s.time }

// Snapshots returns the species count samples recorded so far.
func (s *Scheduler) Snapshots() []Snapshot { return s.snapshots }

// SetNotifications wires an optional notification manager; run events
// are fanned out to the named notifiers.
func (s *Scheduler) SetNotifications(mgr *NotificationManager, notifierIDs []string) {
	s.notifications = mgr
	s.notifierIDs = notifierIDs
}

// AddReaction registers a schedulable reaction.
func (s *Scheduler) AddReaction(reaction Reaction) {
	s.reactions = append(s.reactions, reaction)
}

// AddPolymer registers a polymer's movement as a schedulable action and
// wires the scheduler as its event sink.
func (s *Scheduler) AddPolymer(polymer *Polymer) {
	polymer.SetIndex(len(s.polymers))
	polymer.SetEventSink(s)
	s.polymers = append(s.polymers, polymer)
}

// TranscriptSpawned registers a freshly spawned transcript: it is
// initialized (fully masked) and scheduled like any other polymer.
func (s *Scheduler) TranscriptSpawned(transcript *Transcript) {
	if err := transcript.Initialize(); err != nil {
		// Initialize on a fresh transcript only fails on broken
		// invariants; surface it on the next Step.
		s.logger.Errorf("initializing spawned transcript: %v", err)
		return
	}
	s.AddPolymer(transcript.Polymer)
	s.transcripts[transcript.Polymer] = true
	s.logger.Debugf("transcript spawned spanning [%d, %d]", transcript.Mask().Start(), transcript.Stop())
	s.notify(RunEvent{
		RunID: s.runID,
		Time:  s.time,
		Kind:  EventTranscript,
	})
}

// MoverTerminated returns the detached mover to the free species pool
// and, for a transcript, counts the finished gene product.
func (s *Scheduler) MoverTerminated(event TerminationEvent) {
	s.tracker.Increment(event.MoverName, 1)
	if s.transcripts[event.Polymer] && event.Gene != RunOffGene {
		s.tracker.Increment(event.Gene, 1)
		s.tracker.IncrementRibo(event.Gene, -1)
	}
	s.logger.Debugf("mover %s terminated on polymer %d (gene %s)",
		event.MoverName, event.Polymer.Index(), event.Gene)
	s.notify(RunEvent{
		RunID:   s.runID,
		Time:    s.time,
		Kind:    EventTermination,
		Polymer: event.Polymer.Name(),
		Mover:   event.MoverName,
		Gene:    event.Gene,
	})
}

// TotalPropensity sums propensities across all reactions and polymers.
func (s *Scheduler) TotalPropensity() float64 {
	var total float64
	for _, reaction := range s.reactions {
		total += reaction.Propensity()
	}
	for _, polymer := range s.polymers {
		total += polymer.Propensity()
	}
	return total
}

// Step samples and executes exactly one action, advancing simulated
// time. Returns false when total propensity has reached zero and the run
// is exhausted.
func (s *Scheduler) Step() (bool, error) {
	props := make([]float64, 0, len(s.reactions)+len(s.polymers))
	for _, reaction := range s.reactions {
		props = append(props, reaction.Propensity())
	}
	for _, polymer := range s.polymers {
		props = append(props, polymer.Propensity())
	}
	var total float64
	for _, p := range props {
		total += p
	}
	if total <= 0 {
		return false, nil
	}

	s.time += s.rng.ExpFloat64() / total

	chosen, err := weightedIndex(s.rng, props)
	if err != nil {
		return false, err
	}
	if chosen < len(s.reactions) {
		err = s.reactions[chosen].Execute()
	} else {
		err = s.polymers[chosen-len(s.reactions)].Execute()
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Run advances the simulation until simulated time reaches stopTime,
// sampling species counts every sampleInterval seconds. Consistency
// errors abort the run.
func (s *Scheduler) Run(ctx context.Context, stopTime, sampleInterval float64) error {
	for {
		done, err := s.RunSteps(ctx, stopTime, sampleInterval, 4096)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// RunSteps executes at most maxSteps actions toward stopTime, sampling
// species counts every sampleInterval seconds. Returns true when the run
// is complete, either because stopTime was reached or because total
// propensity dropped to zero; trailing samples are recorded before
// returning. Callers that interleave stepping with state reads use this
// to bound how long the scheduler is busy.
func (s *Scheduler) RunSteps(ctx context.Context, stopTime, sampleInterval float64, maxSteps int) (bool, error) {
	for i := 0; i < maxSteps && s.time < stopTime; i++ {
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		default:
		}
		for s.nextSample <= s.time && s.nextSample <= stopTime {
			s.sample(s.nextSample)
			s.nextSample += sampleInterval
		}
		ok, err := s.Step()
		if err != nil {
			return false, err
		}
		if !ok {
			s.logger.Infof("run %s exhausted at t=%.3f: total propensity is zero", s.runID, s.time)
			s.finish(stopTime, sampleInterval)
			return true, nil
		}
	}
	if s.time >= stopTime {
		s.finish(stopTime, sampleInterval)
		return true, nil
	}
	return false, nil
}

func (s *Scheduler) finish(stopTime, sampleInterval float64) {
	for s.nextSample <= stopTime {
		s.sample(s.nextSample)
		s.nextSample += sampleInterval
	}
	s.logger.Infof("run %s finished at t=%.3f with %d samples", s.runID, s.time, len(s.snapshots))
}

func (s *Scheduler) sample(at float64) {
	snapshot := Snapshot{
		RunID:   s.runID,
		Time:    at,
		Species: s.tracker.Species(),
	}
	s.snapshots = append(s.snapshots, snapshot)
	s.notify(RunEvent{
		RunID:   s.runID,
		Time:    at,
		Kind:    EventSample,
		Species: snapshot.Species,
	})
}

func (s *Scheduler) notify(event RunEvent) {
	if s.notifications == nil || len(s.notifierIDs) == 0 {
		return
	}
	s.notifications.Enqueue(event, s.notifierIDs)
}
