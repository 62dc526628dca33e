package polysim

// TerminationEvent reports a mover detaching from a polymer, either at a
// release site or by running off the polymer's end (Gene == RunOffGene).
type TerminationEvent struct {
	Polymer   *Polymer
	MoverName string
	Gene      string
}

// EventSink receives engine events the moment they happen. The engine
// does not persist events itself; the enclosing scheduler drains them.
type EventSink interface {
	// MoverTerminated fires when a mover detaches from a polymer.
	MoverTerminated(event TerminationEvent)
	// TranscriptSpawned fires when a genome constructs a new dependent
	// transcript for a freshly bound polymerase.
	TranscriptSpawned(transcript *Transcript)
}

type noopSink struct{}

func (noopSink) MoverTerminated(TerminationEvent) {}
func (noopSink) TranscriptSpawned(*Transcript)    {}
