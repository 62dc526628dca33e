package polysim

import (
	"fmt"
	"math/rand"
)

// Genome is a polymer tracking transcribing polymerases. Unlike a plain
// polymer it carries a transcript template: when a polymerase binds, the
// genome spawns a dependent transcript spanning from the polymerase's
// trailing edge to the genome's end, built from private clones of every
// template site fully contained in that span.
type Genome struct {
	*Polymer

	rbsIntervals      []Interval[*BindingSite]
	stopSiteIntervals []Interval[*ReleaseSite]
	transcriptRBS     *SiteIndex[*BindingSite]
	transcriptStops   *SiteIndex[*ReleaseSite]

	transcriptWeights []float64
	degradationRate   float64

	bindings map[string]map[string]float64
}

// NewGenome creates a genome of the given length. A nonzero
// degradationRate injects a synthetic decay binding site near the 5' end
// of every spawned transcript.
func NewGenome(name string, length int, degradationRate float64, tracker *SpeciesTracker, rng *rand.Rand) *Genome {
	g := &Genome{
		Polymer:         NewPolymer(name, 1, length, tracker, rng),
		degradationRate: degradationRate,
		bindings:        make(map[string]map[string]float64),
	}
	g.transcriptWeights = make([]float64, length)
	for i := range g.transcriptWeights {
		g.transcriptWeights[i] = 1.0
	}
	g.Polymer.attach = g.attachMover
	return g
}

// AddMask masks the genome from start to its end; movers named in
// interactions may push the mask back (progressive genome entry).
func (g *Genome) AddMask(start int, interactions []string) {
	interactionMap := make(map[string]float64, len(interactions))
	for _, name := range interactions {
		interactionMap[name] = 1.0
	}
	g.mask = NewMask(start, g.stop, interactionMap)
}

// AddPromoter registers a promoter on the genome.
func (g *Genome) AddPromoter(name string, start, stop int, interactions map[string]float64) {
	g.AddBindingSite(NewBindingSite(name, start, stop, interactions))
	g.bindings[name] = copyInteractions(interactions)
}

// AddTerminator registers a terminator on the genome. efficiency maps
// polymerase names to termination probability in [0, 1].
func (g *Genome) AddTerminator(name string, start, stop int, efficiency map[string]float64) {
	g.AddReleaseSite(NewReleaseSite(name, start, stop, efficiency))
}

// AddGene registers a gene on the transcript template: a ribosome
// binding site upstream of the reading frame and a stop codon at its
// end. Spawned transcripts clone these sites.
func (g *Genome) AddGene(name string, start, stop, rbsStart, rbsStop int, rbsStrength float64) {
	rbs := NewBindingSite(name+"_rbs", rbsStart, rbsStop, map[string]float64{"ribosome": rbsStrength})
	rbs.SetGene(name)
	g.rbsIntervals = append(g.rbsIntervals, Interval[*BindingSite]{rbs.Start(), rbs.Stop(), rbs})
	g.bindings[name+"_rbs"] = map[string]float64{"ribosome": rbsStrength}

	stopCodon := NewReleaseSite("stop_codon", stop-1, stop, map[string]float64{"ribosome": 1.0})
	stopCodon.SetReadingFrame(start % 3)
	stopCodon.SetGene(name)
	g.stopSiteIntervals = append(g.stopSiteIntervals, Interval[*ReleaseSite]{stopCodon.Start(), stopCodon.Stop(), stopCodon})
}

// AddWeights replaces the per-position weight vector applied to spawned
// transcripts, encoding position-specific speed modulation such as codon
// bias. The vector length must equal the genome length.
func (g *Genome) AddWeights(weights []float64) error {
	if len(weights) != g.stop-g.start+1 {
		return fmt.Errorf("transcript weight vector has length %d, want genome length %d",
			len(weights), g.stop-g.start+1)
	}
	g.transcriptWeights = append([]float64(nil), weights...)
	return nil
}

// Bindings returns each registered binding-site name with its partner
// interaction strengths, for assembling binding reactions.
func (g *Genome) Bindings() map[string]map[string]float64 {
	return g.bindings
}

// Initialize freezes both the genome's own site indexes and the
// transcript template indexes.
func (g *Genome) Initialize() error {
	if err := g.Polymer.Initialize(); err != nil {
		return err
	}
	g.transcriptRBS = NewSiteIndex(g.rbsIntervals)
	g.transcriptStops = NewSiteIndex(g.stopSiteIntervals)
	return nil
}

// attachMover spawns the dependent transcript for a freshly bound
// polymerase and tracks both together.
func (g *Genome) attachMover(pol Mover) error {
	transcript := g.BuildTranscript(pol.Stop(), g.stop)
	if err := g.movers.Insert(pol, transcript); err != nil {
		return err
	}
	g.sink.TranscriptSpawned(transcript)
	return nil
}

// BuildTranscript assembles a transcript spanning [start, stop] in
// genome coordinates: clones of every template site fully contained in
// the span, a mask covering the not-yet-synthesized region, and the
// genome's transcript weight vector.
func (g *Genome) BuildTranscript(start, stop int) *Transcript {
	var rbsIntervals []Interval[*BindingSite]
	for _, site := range g.transcriptRBS.FindContained(start, stop) {
		clone := site.Clone()
		rbsIntervals = append(rbsIntervals, Interval[*BindingSite]{clone.Start(), clone.Stop(), clone})
	}
	if g.degradationRate != 0 {
		decay := NewBindingSite(RnaseSiteName, start+1, start+11,
			map[string]float64{RnaseName: g.degradationRate})
		rbsIntervals = append(rbsIntervals, Interval[*BindingSite]{decay.Start(), decay.Stop(), decay})
	}

	var stopIntervals []Interval[*ReleaseSite]
	for _, site := range g.transcriptStops.FindContained(start, stop) {
		clone := site.Clone()
		stopIntervals = append(stopIntervals, Interval[*ReleaseSite]{clone.Start(), clone.Stop(), clone})
	}

	mask := NewMask(start, stop, nil)
	return NewTranscript("rna", start, g.stop, rbsIntervals, stopIntervals, mask,
		g.transcriptWeights, g.tracker, g.rng)
}
