package polysim

import (
	"fmt"
	"math/rand"
)

// Avogadro's number, used to convert macroscopic rate constants to
// mesoscopic ones.
const Avogadro = 6.0221409e23

// Reaction is one schedulable action in the stochastic simulation: a
// chemical species reaction, a binding reaction, or a polymer movement
// step. The scheduler samples among reactions weighted by propensity and
// executes exactly one to completion per turn.
type Reaction interface {
	// Propensity returns the current stochastic rate of this action.
	Propensity() float64
	// Execute performs the action, cascading all species updates.
	Execute() error
}

// SpeciesReaction is a mass-action chemical reaction with at most two
// reactant species and fixed unit stoichiometry: executing decrements
// each reactant and increments each product by exactly one.
type SpeciesReaction struct {
	rateConstant float64
	reactants    []string
	products     []string
	tracker      *SpeciesTracker
	cached       float64
}

// NewSpeciesReaction creates a mass-action reaction and registers it
// with the tracker. A two-reactant reaction's macroscopic rate constant
// is converted to a mesoscopic one by dividing by Avogadro's number
// times the reaction volume. More than two reactants is a construction
// error.
func NewSpeciesReaction(tracker *SpeciesTracker, rateConstant, volume float64, reactants, products []string) (*SpeciesReaction, error) {
	if len(reactants) > 2 {
		return nil, fmt.Errorf("reactions with more than two reactant species are not supported (got %d)", len(reactants))
	}
	if len(reactants) == 2 {
		rateConstant = rateConstant / (Avogadro * volume)
	}
	r := &SpeciesReaction{
		rateConstant: rateConstant,
		reactants:    append([]string(nil), reactants...),
		products:     append([]string(nil), products...),
		tracker:      tracker,
	}
	tracker.Register(r)
	return r, nil
}

// Reactants returns the reactant species names.
func (r *SpeciesReaction) Reactants() []string { return r.reactants }

// Products returns the product species names.
func (r *SpeciesReaction) Products() []string { return r.products }

// PropensityChanged recomputes the cached propensity from current
// species counts. Called by the tracker whenever a subscribed species
// count changes.
func (r *SpeciesReaction) PropensityChanged() {
	prop := r.rateConstant
	for _, reactant := range r.reactants {
		prop *= float64(r.tracker.Count(reactant))
	}
	r.cached = prop
}

// Propensity returns rateConstant times the product of reactant counts.
func (r *SpeciesReaction) Propensity() float64 { return r.cached }

// Execute decrements each reactant and increments each product by one.
func (r *SpeciesReaction) Execute() error {
	for _, reactant := range r.reactants {
		r.tracker.Increment(reactant, -1)
	}
	for _, product := range r.products {
		r.tracker.Increment(product, 1)
	}
	return nil
}

// BindReaction couples a free mover species to exposed binding sites of
// one name across all polymers: its propensity scales with both the free
// mover count and the number of exposed sites, and executing it binds a
// newly constructed mover to one exposed site.
type BindReaction struct {
	tracker      *SpeciesTracker
	rng          *rand.Rand
	rateConstant float64
	moverName    string
	siteName     string
	footprint    int
	speed        float64
	degradation  bool
	cached       float64
}

// NewBindReaction creates a binding reaction for the given mover species
// and site name. The macroscopic rate constant is converted to a
// mesoscopic one (binding is always bimolecular). degradation marks the
// bound mover as a degrading enzyme rather than a polymerase.
func NewBindReaction(tracker *SpeciesTracker, rng *rand.Rand, rateConstant, volume float64,
	moverName, siteName string, footprint int, speed float64, degradation bool) (*BindReaction, error) {
	if footprint <= 0 {
		return nil, fmt.Errorf("mover %q footprint must be positive, got %d", moverName, footprint)
	}
	r := &BindReaction{
		tracker:      tracker,
		rng:          rng,
		rateConstant: rateConstant / (Avogadro * volume),
		moverName:    moverName,
		siteName:     siteName,
		footprint:    footprint,
		speed:        speed,
		degradation:  degradation,
	}
	tracker.Add(moverName, r)
	tracker.Add(siteName, r)
	tracker.Increment(moverName, 0)
	tracker.Increment(siteName, 0)
	r.PropensityChanged()
	return r, nil
}

// PropensityChanged recomputes the cached propensity from the free mover
// count and the exposed site count.
func (r *BindReaction) PropensityChanged() {
	r.cached = r.rateConstant * float64(r.tracker.Count(r.moverName)) * float64(r.tracker.Count(r.siteName))
}

// Propensity returns the cached binding propensity.
func (r *BindReaction) Propensity() float64 { return r.cached }

// Execute picks a polymer exposing the site, weighted by how many
// exposed copies each carries, binds a fresh mover there, and consumes
// one free mover from the species pool.
func (r *BindReaction) Execute() error {
	polymers := r.tracker.FindPolymers(r.siteName)
	if len(polymers) == 0 {
		return inconsistentf("binding reaction for site %q fired with no polymers carrying the site", r.siteName)
	}
	weights := make([]float64, len(polymers))
	for i, polymer := range polymers {
		weights[i] = float64(polymer.CountUncovered(r.siteName))
	}
	chosen, err := weightedIndex(r.rng, weights)
	if err != nil {
		return err
	}
	var mover Mover
	if r.degradation {
		mover = NewRnase(r.footprint, r.speed)
	} else {
		mover = NewPolymerase(r.moverName, r.footprint, r.speed)
	}
	if err := polymers[chosen].Bind(mover, r.siteName); err != nil {
		return err
	}
	r.tracker.Increment(r.moverName, -1)
	return nil
}
