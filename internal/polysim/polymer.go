package polysim

import (
	"fmt"
	"math/rand"
)

// Polymer is a linear coordinate track (genome or transcript) that
// movers traverse. It owns the attached movers, two interval indexes
// over its fixed sites, one mask, and a cache of per-site exposure
// counts, and orchestrates one movement step at a time: collision
// detection, coverage updates, termination, mask shifting.
//
// Coordinates are inclusive and 1-based. Attached movers stay sorted
// ascending by position; two attached movers may overlap by at most one
// position.
type Polymer struct {
	name  string
	start int
	stop  int
	index int

	movers  *MoverManager
	weights []float64

	bindingIntervals []Interval[*BindingSite]
	releaseIntervals []Interval[*ReleaseSite]
	bindingSites     *SiteIndex[*BindingSite]
	releaseSites     *SiteIndex[*ReleaseSite]

	mask      *Mask
	uncovered map[string]int

	tracker *SpeciesTracker
	rng     *rand.Rand
	sink    EventSink

	// attach is the hook run when a mover joins the polymer; genomes
	// replace it to spawn a dependent transcript.
	attach func(Mover) error
	// setFrame fixes a bound mover's reading frame from its start
	// position; enabled on transcripts so frame-aware stop-codon checks
	// work.
	setFrame bool
}

// NewPolymer creates a polymer spanning the inclusive range
// [start, stop] with a fully receded mask and a positional weight vector
// of all ones. Sites are added with AddBindingSite/AddReleaseSite before
// Initialize.
func NewPolymer(name string, start, stop int, tracker *SpeciesTracker, rng *rand.Rand) *Polymer {
	weights := make([]float64, stop)
	for i := range weights {
		weights[i] = 1.0
	}
	p := &Polymer{
		name:      name,
		start:     start,
		stop:      stop,
		weights:   weights,
		mask:      NewMask(stop+1, stop, nil),
		uncovered: make(map[string]int),
		tracker:   tracker,
		rng:       rng,
		sink:      noopSink{},
	}
	p.movers = NewMoverManager(p.weights)
	p.attach = func(pol Mover) error {
		return p.movers.Insert(pol, nil)
	}
	return p
}

func (p *Polymer) Name() string  { return p.name }
func (p *Polymer) Start() int    { return p.start }
func (p *Polymer) Stop() int     { return p.stop }
func (p *Polymer) Index() int    { return p.index }
func (p *Polymer) Mask() *Mask   { return p.mask }

// SetIndex tags the polymer with the scheduler's identity for it,
// reported back in termination events.
func (p *Polymer) SetIndex(index int) { p.index = index }

// SetEventSink wires the sink receiving termination and spawn events.
func (p *Polymer) SetEventSink(sink EventSink) {
	if sink != nil {
		p.sink = sink
	}
}

// Movers exposes the mover manager.
func (p *Polymer) Movers() *MoverManager { return p.movers }

// AddBindingSite registers a binding site. Must be called before
// Initialize.
func (p *Polymer) AddBindingSite(site *BindingSite) {
	p.bindingIntervals = append(p.bindingIntervals, Interval[*BindingSite]{site.Start(), site.Stop(), site})
}

// AddReleaseSite registers a release site. Must be called before
// Initialize.
func (p *Polymer) AddReleaseSite(site *ReleaseSite) {
	p.releaseIntervals = append(p.releaseIntervals, Interval[*ReleaseSite]{site.Start(), site.Stop(), site})
}

// Initialize freezes the interval indexes and establishes the initial
// covering state: sites under the mask are covered, sites before the
// mask are exposed and reported to the tracker.
func (p *Polymer) Initialize() error {
	p.bindingSites = NewSiteIndex(p.bindingIntervals)
	p.releaseSites = NewSiteIndex(p.releaseIntervals)

	for _, site := range p.bindingSites.FindOverlapping(p.mask.Start(), p.mask.Stop()) {
		p.tracker.AddPolymer(site.Name(), p)
		site.Cover()
		site.ResetState()
	}
	for _, site := range p.bindingSites.FindContained(p.start, p.mask.Start()) {
		p.tracker.AddPolymer(site.Name(), p)
		site.Uncover()
		site.ResetState()
		p.logUncover(site.Name())
	}
	return nil
}

// FindBindingSite picks, uniformly at random, a free site with the given
// name that the mover can bind in the exposed region of the polymer.
func (p *Polymer) FindBindingSite(pol Mover, siteName string) (*BindingSite, error) {
	var choices []*BindingSite
	for _, site := range p.bindingSites.FindOverlapping(p.start, p.mask.Start()) {
		if site.Name() == siteName && !site.IsCovered() {
			choices = append(choices, site)
		}
	}
	if len(choices) == 0 {
		return nil, inconsistentf("mover %q could not find a free site %q to bind on polymer %q",
			pol.Name(), siteName, p.name)
	}
	site := choices[p.rng.Intn(len(choices))]
	if !site.CheckInteraction(pol.Name()) {
		return nil, fmt.Errorf("mover %q does not interact with site %q", pol.Name(), siteName)
	}
	return site, nil
}

// Bind places a mover on a free site with the given name, covering the
// site and attaching the mover. The mover occupies
// [site.start, site.start+footprint-1], which must fit inside the site
// and lie strictly before the mask.
func (p *Polymer) Bind(pol Mover, siteName string) error {
	site, err := p.FindBindingSite(pol, siteName)
	if err != nil {
		return err
	}
	pol.SetStart(site.Start())
	pol.SetStop(site.Start() + pol.Footprint() - 1)
	if pol.Stop() > site.Stop() {
		return fmt.Errorf("mover %q footprint %d is larger than site %q [%d, %d]",
			pol.Name(), pol.Footprint(), siteName, site.Start(), site.Stop())
	}
	if pol.Stop() >= p.mask.Start() {
		return fmt.Errorf("mover %q would overlap the mask of polymer %q upon binding site %q",
			pol.Name(), p.name, siteName)
	}
	site.Cover()
	site.ResetState()
	if err := p.logCover(site.Name()); err != nil {
		return err
	}
	if site.Gene() != "" {
		p.tracker.IncrementRibo(site.Gene(), 1)
	}
	if p.setFrame {
		pol.SetReadingFrame(pol.Start() % 3)
	}
	return p.attach(pol)
}

// Propensity returns the total move propensity across attached movers.
func (p *Polymer) Propensity() float64 { return p.movers.PropSum() }

// CountUncovered returns the cached number of exposed sites with the
// given name.
func (p *Polymer) CountUncovered(siteName string) int { return p.uncovered[siteName] }

// Execute samples one attached mover, weighted by move propensity, and
// performs its single-step move.
func (p *Polymer) Execute() error {
	if p.movers.PropSum() == 0 {
		return inconsistentf("executing polymer %q with zero move propensity", p.name)
	}
	index, err := p.movers.Choose(p.rng)
	if err != nil {
		return err
	}
	return p.move(index)
}

// ShiftMask recedes the mask's leading edge one position, exposing new
// sequence, unless the mask is fully receded.
func (p *Polymer) ShiftMask() error {
	if p.mask.Start() > p.mask.Stop() {
		return nil
	}
	oldStart := p.mask.Start()
	p.mask.Recede()
	return p.checkBehind(oldStart, p.mask.Start())
}

// move advances the mover at index exactly one position and evaluates,
// in strict order: mover collision, mask collision, termination, commit.
// A collision reverts the step silently; the action is simply not
// realized this draw.
func (p *Polymer) move(index int) error {
	pol, err := p.movers.Get(index)
	if err != nil {
		return err
	}
	oldStart := pol.Start()
	oldStop := pol.Stop()

	pol.Move()

	collided, err := p.checkMoverCollision(index)
	if err != nil {
		return err
	}
	if collided {
		pol.MoveBack()
		return nil
	}

	collided, err = p.checkMaskCollision(pol)
	if err != nil {
		return err
	}
	if collided {
		pol.MoveBack()
		return nil
	}

	terminated, err := p.checkTermination(index)
	if err != nil {
		return err
	}
	if terminated {
		if pol.Name() != RnaseName {
			// Free everything the detaching mover was covering.
			for _, site := range p.bindingSites.FindOverlapping(oldStart, pol.Stop()) {
				site.Uncover()
				if site.WasUncovered() {
					p.logUncover(site.Name())
				}
				site.ResetState()
			}
		}
		return nil
	}

	transcript, err := p.movers.Attached(index)
	if err != nil {
		return err
	}
	if transcript != nil {
		if err := transcript.ShiftMask(); err != nil {
			return err
		}
	}

	if err := p.checkBehind(oldStart, pol.Start()); err != nil {
		return err
	}
	if pol.Name() == RnaseName {
		err = p.checkAheadRnase(oldStop, pol.Stop())
	} else {
		err = p.checkAhead(oldStop, pol.Stop())
	}
	if err != nil {
		return err
	}
	return p.movers.UpdatePropensity(index)
}

// checkAhead covers sites in the traversed window whose start lies
// strictly before the mover's new trailing edge.
func (p *Polymer) checkAhead(oldStop, newStop int) error {
	for _, site := range p.bindingSites.FindOverlapping(oldStop+1, newStop) {
		if site.Start() >= newStop {
			continue
		}
		site.Cover()
		if site.WasCovered() {
			if err := p.logCover(site.Name()); err != nil {
				return err
			}
		}
		site.ResetState()
	}
	return nil
}

// checkAheadRnase is checkAhead for a degrading enzyme: any site it
// swallows additionally retires one synthesized transcript of its gene.
func (p *Polymer) checkAheadRnase(oldStop, newStop int) error {
	for _, site := range p.bindingSites.FindOverlapping(oldStop+1, newStop) {
		if site.Start() >= newStop {
			continue
		}
		site.Cover()
		if site.WasCovered() {
			if err := p.logCover(site.Name()); err != nil {
				return err
			}
			if site.Gene() != "" {
				p.tracker.IncrementTranscript(site.Gene(), -1)
			}
		}
		site.ResetState()
	}
	return nil
}

// checkBehind uncovers sites in the traversed window whose stop lies
// strictly before the mover's new leading edge. The first exposure of a
// gene's ribosome binding site counts a newly synthesized transcript;
// release sites left behind clear their readthrough state.
func (p *Polymer) checkBehind(oldStart, newStart int) error {
	for _, site := range p.bindingSites.FindOverlapping(oldStart, newStart+1) {
		if site.Stop() >= newStart {
			continue
		}
		site.Uncover()
		if site.WasUncovered() {
			p.logUncover(site.Name())
			if !site.FirstExposure() && site.Gene() != "" {
				p.tracker.IncrementTranscript(site.Gene(), 1)
				site.SetFirstExposure(true)
			}
		}
		site.ResetState()
	}
	for _, site := range p.releaseSites.FindOverlapping(oldStart, newStart+1) {
		if site.Stop() >= newStart {
			continue
		}
		site.Uncover()
		if site.WasUncovered() {
			site.SetReadthrough(false)
		}
		site.ResetState()
	}
	return nil
}

// checkTermination detaches the mover at index if it ran past the
// polymer's end (run-off) or a matching release site's efficiency draw
// succeeded. A failed draw flags the site read-through so it will not
// re-attempt termination while still overlapped.
func (p *Polymer) checkTermination(index int) (bool, error) {
	pol, err := p.movers.Get(index)
	if err != nil {
		return false, err
	}
	if pol.Stop() >= p.stop {
		if pol.Name() != RnaseName {
			p.sink.MoverTerminated(TerminationEvent{Polymer: p, MoverName: pol.Name(), Gene: RunOffGene})
		}
		return true, p.movers.Delete(index)
	}
	for _, site := range p.releaseSites.FindOverlapping(pol.Start(), pol.Stop()) {
		if !site.CheckInteraction(pol.Name(), pol.ReadingFrame()) || site.Readthrough() {
			continue
		}
		if p.rng.Float64() <= site.Efficiency(pol.Name()) {
			transcript, err := p.movers.Attached(index)
			if err != nil {
				return false, err
			}
			if transcript != nil {
				// Expose the rest of the dependent polymer up to and
				// including the release site before letting go.
				dist := site.Stop() - pol.Stop() + 1
				for i := 0; i < dist; i++ {
					if err := transcript.ShiftMask(); err != nil {
						return false, err
					}
				}
			}
			p.sink.MoverTerminated(TerminationEvent{Polymer: p, MoverName: pol.Name(), Gene: site.Gene()})
			return true, p.movers.Delete(index)
		}
		site.SetReadthrough(true)
	}
	return false, nil
}

// checkMaskCollision resolves the mover reaching the mask's leading
// edge: partners push the mask back, anything else collides.
func (p *Polymer) checkMaskCollision(pol Mover) (bool, error) {
	if p.mask.Start() > p.stop || pol.Stop() < p.mask.Start() {
		return false, nil
	}
	if pol.Stop()-p.mask.Start() > 0 {
		return false, inconsistentf("mover %q overlaps the mask by more than one position on polymer %q",
			pol.Name(), p.name)
	}
	if p.mask.CheckInteraction(pol.Name()) {
		return false, p.ShiftMask()
	}
	return true, nil
}

// checkMoverCollision compares the mover at index against the single
// next-more-downstream mover. An exact one-position footprint touch is a
// collision; anything deeper is a broken invariant.
func (p *Polymer) checkMoverCollision(index int) (bool, error) {
	if !p.movers.ValidIndex(index + 1) {
		return false, nil
	}
	this, err := p.movers.Get(index)
	if err != nil {
		return false, err
	}
	next, err := p.movers.Get(index + 1)
	if err != nil {
		return false, err
	}
	if this.Stop() < next.Start() || next.Stop() < this.Start() {
		return false, nil
	}
	if this.Stop() > next.Start() {
		return false, inconsistentf("mover %q [%d, %d] overlaps mover %q [%d, %d] by more than one position on polymer %q",
			this.Name(), this.Start(), this.Stop(), next.Name(), next.Start(), next.Stop(), p.name)
	}
	return true, nil
}

// logCover records a site disappearing from the exposed-site cache and
// reports the change to the species tracker.
func (p *Polymer) logCover(siteName string) error {
	if _, seen := p.uncovered[siteName]; !seen {
		p.uncovered[siteName] = 0
	} else {
		p.uncovered[siteName]--
		p.tracker.Increment(siteName, -1)
	}
	if p.uncovered[siteName] < 0 {
		return inconsistentf("cached count of exposed site %q on polymer %q went negative", siteName, p.name)
	}
	return nil
}

// logUncover records a site joining the exposed-site cache and reports
// the change to the species tracker.
func (p *Polymer) logUncover(siteName string) {
	p.uncovered[siteName]++
	p.tracker.Increment(siteName, 1)
}
