package polysim

// coverage is the reference-counted covering state of a fixed site,
// together with the baseline used for edge-triggered queries. WasCovered
// and WasUncovered are only meaningful for the window between two
// ResetState calls; callers must reset after consuming a transition.
type coverage struct {
	count    int
	baseline int
}

// Cover increments the covering count. Sites can be covered by several
// overlapping movers at once.
func (c *coverage) Cover() { c.count++ }

// Uncover decrements the covering count, saturating at zero.
func (c *coverage) Uncover() {
	if c.count > 0 {
		c.count--
	}
}

// IsCovered reports whether at least one mover is covering the site.
func (c *coverage) IsCovered() bool { return c.count > 0 }

// ResetState snapshots the current count as the new baseline.
func (c *coverage) ResetState() { c.baseline = c.count }

// WasCovered reports a free-to-covered transition since the last reset.
func (c *coverage) WasCovered() bool { return c.baseline == 0 && c.count > 0 }

// WasUncovered reports a covered-to-free transition since the last reset.
func (c *coverage) WasUncovered() bool { return c.baseline >= 1 && c.count == 0 }

// fixedSite carries the state shared by both site variants: identity, the
// inclusive [start, stop] interval on the polymer, the map of partner
// mover names to interaction strengths, an optional gene label, a reading
// frame tag, and the covering state.
type fixedSite struct {
	name         string
	start        int
	stop         int
	interactions map[string]float64
	gene         string
	readingFrame int
	coverage
}

func (s *fixedSite) Name() string                    { return s.name }
func (s *fixedSite) Start() int                      { return s.start }
func (s *fixedSite) Stop() int                       { return s.stop }
func (s *fixedSite) Gene() string                    { return s.gene }
func (s *fixedSite) SetGene(gene string)             { s.gene = gene }
func (s *fixedSite) ReadingFrame() int               { return s.readingFrame }
func (s *fixedSite) SetReadingFrame(frame int)       { s.readingFrame = frame }
func (s *fixedSite) Interactions() map[string]float64 { return s.interactions }

func copyInteractions(interactions map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(interactions))
	for name, strength := range interactions {
		out[name] = strength
	}
	return out
}

// BindingSite is a promoter or ribosome binding site: a fixed site that
// movers bind to. The interaction strength is the binding rate constant
// for that mover species.
type BindingSite struct {
	fixedSite
	firstExposure bool
}

// NewBindingSite creates a binding site spanning the inclusive interval
// [start, stop] interacting with the given mover species.
func NewBindingSite(name string, start, stop int, interactions map[string]float64) *BindingSite {
	return &BindingSite{
		fixedSite: fixedSite{
			name:         name,
			start:        start,
			stop:         stop,
			interactions: copyInteractions(interactions),
		},
	}
}

// CheckInteraction reports whether the named mover can bind this site.
func (b *BindingSite) CheckInteraction(moverName string) bool {
	_, ok := b.interactions[moverName]
	return ok
}

// Strength returns the binding rate constant for the named mover.
func (b *BindingSite) Strength(moverName string) float64 {
	return b.interactions[moverName]
}

// FirstExposure reports whether the site has been exposed before. Used to
// count each synthesized transcript exactly once.
func (b *BindingSite) FirstExposure() bool { return b.firstExposure }

// SetFirstExposure marks the site as having been exposed.
func (b *BindingSite) SetFirstExposure(exposed bool) { b.firstExposure = exposed }

// Clone returns a deep copy with pristine covering state and exposure
// flag. Used when a transcript is spawned with private copies of the
// genome's template sites.
func (b *BindingSite) Clone() *BindingSite {
	clone := NewBindingSite(b.name, b.start, b.stop, b.interactions)
	clone.gene = b.gene
	clone.readingFrame = b.readingFrame
	return clone
}

// ReleaseSite is a terminator or stop codon: a fixed site that detaches
// movers. The interaction strength is the termination efficiency in
// [0, 1] for that mover species.
type ReleaseSite struct {
	fixedSite
	readthrough bool
}

// NewReleaseSite creates a release site spanning the inclusive interval
// [start, stop] terminating the given mover species.
func NewReleaseSite(name string, start, stop int, interactions map[string]float64) *ReleaseSite {
	return &ReleaseSite{
		fixedSite: fixedSite{
			name:         name,
			start:        start,
			stop:         stop,
			interactions: copyInteractions(interactions),
		},
	}
}

// CheckInteraction reports whether the named mover, in the given reading
// frame, can terminate at this site.
func (r *ReleaseSite) CheckInteraction(moverName string, readingFrame int) bool {
	if _, ok := r.interactions[moverName]; !ok {
		return false
	}
	return readingFrame == r.readingFrame
}

// Efficiency returns the termination efficiency for the named mover.
func (r *ReleaseSite) Efficiency(moverName string) float64 {
	return r.interactions[moverName]
}

// Readthrough reports whether a mover has stochastically failed to
// terminate here and is still overlapping the site.
func (r *ReleaseSite) Readthrough() bool { return r.readthrough }

// SetReadthrough sets the readthrough state.
func (r *ReleaseSite) SetReadthrough(readthrough bool) { r.readthrough = readthrough }

// Clone returns a deep copy with pristine covering state and readthrough
// flag.
func (r *ReleaseSite) Clone() *ReleaseSite {
	clone := NewReleaseSite(r.name, r.start, r.stop, r.interactions)
	clone.gene = r.gene
	clone.readingFrame = r.readingFrame
	return clone
}
