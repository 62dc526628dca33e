package polysim

import "math/rand"

// Transcript is an mRNA polymer tracking translating ribosomes. It is
// spawned by a genome with private clones of the template sites in its
// span, starts fully masked, and has its mask receded as the parent
// polymerase synthesizes it. Bound movers get their reading frame fixed
// to (bind position mod 3) so frame-aware stop-codon checks work.
type Transcript struct {
	*Polymer
}

// NewTranscript creates a transcript over [start, stop] in genome
// coordinates with the given cloned site intervals, mask, and
// per-position weight vector.
func NewTranscript(name string, start, stop int,
	rbsIntervals []Interval[*BindingSite], stopSiteIntervals []Interval[*ReleaseSite],
	mask *Mask, weights []float64, tracker *SpeciesTracker, rng *rand.Rand) *Transcript {
	t := &Transcript{Polymer: NewPolymer(name, start, stop, tracker, rng)}
	t.mask = mask
	t.weights = weights
	t.movers = NewMoverManager(weights)
	t.bindingIntervals = rbsIntervals
	t.releaseIntervals = stopSiteIntervals
	t.setFrame = true
	return t
}
