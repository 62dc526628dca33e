package polysim

// PropensityObserver is notified whenever the count of a species it
// subscribed to changes, meaning its cached propensity may be stale.
// Notifications are synchronous, immediate calls.
type PropensityObserver interface {
	PropensityChanged()
}

// SpeciesTracker is the shared species state of one simulation run:
// species name to copy number, species name to subscribed reactions, and
// site name to the polymers currently carrying that site. It is created
// once per run and threaded explicitly into every polymer and reaction;
// mutation happens only inside execute paths, one action at a time, so
// no locking is needed.
type SpeciesTracker struct {
	species     map[string]int
	observers   map[string][]PropensityObserver
	polymers    map[string][]*Polymer
	transcripts map[string]int
	ribo        map[string]int
	logger      Logger
}

// NewSpeciesTracker creates an empty tracker.
func NewSpeciesTracker() *SpeciesTracker {
	return &SpeciesTracker{
		species:     make(map[string]int),
		observers:   make(map[string][]PropensityObserver),
		polymers:    make(map[string][]*Polymer),
		transcripts: make(map[string]int),
		ribo:        make(map[string]int),
		logger:      NewNoOpLogger(),
	}
}

// SetLogger injects a logger; defaults to a no-op logger.
func (t *SpeciesTracker) SetLogger(logger Logger) {
	if logger != nil {
		t.logger = logger
	}
}

// Register subscribes a reaction to all of its reactant and product
// species, initializing unseen species to zero.
func (t *SpeciesTracker) Register(reaction *SpeciesReaction) {
	for _, reactant := range reaction.Reactants() {
		t.Add(reactant, reaction)
		t.Increment(reactant, 0)
	}
	for _, product := range reaction.Products() {
		t.Add(product, reaction)
		t.Increment(product, 0)
	}
	reaction.PropensityChanged()
}

// Increment adjusts the copy number of a species by delta and, when
// delta is nonzero, notifies every subscribed observer.
func (t *SpeciesTracker) Increment(name string, delta int) {
	t.species[name] += delta
	if delta == 0 {
		return
	}
	t.logger.Debugf("species %s -> %d", name, t.species[name])
	for _, observer := range t.observers[name] {
		observer.PropensityChanged()
	}
}

// Add subscribes an observer to count changes of the named species.
func (t *SpeciesTracker) Add(name string, observer PropensityObserver) {
	for _, existing := range t.observers[name] {
		if existing == observer {
			return
		}
	}
	t.observers[name] = append(t.observers[name], observer)
}

// AddPolymer records that a polymer carries the named site, so binding
// reactions can find candidate polymers for an exposed site.
func (t *SpeciesTracker) AddPolymer(siteName string, polymer *Polymer) {
	for _, existing := range t.polymers[siteName] {
		if existing == polymer {
			return
		}
	}
	t.polymers[siteName] = append(t.polymers[siteName], polymer)
}

// FindPolymers returns the polymers carrying the named site.
func (t *SpeciesTracker) FindPolymers(siteName string) []*Polymer {
	return t.polymers[siteName]
}

// Count returns the copy number of a species. Unseen species count zero.
func (t *SpeciesTracker) Count(name string) int {
	return t.species[name]
}

// Species returns a copy of the full species count table.
func (t *SpeciesTracker) Species() map[string]int {
	out := make(map[string]int, len(t.species))
	for name, count := range t.species {
		out[name] = count
	}
	return out
}

// IncrementTranscript adjusts the count of synthesized transcripts
// carrying the named gene.
func (t *SpeciesTracker) IncrementTranscript(gene string, delta int) {
	t.transcripts[gene] += delta
}

// CountTranscript returns the number of synthesized transcripts carrying
// the named gene.
func (t *SpeciesTracker) CountTranscript(gene string) int {
	return t.transcripts[gene]
}

// IncrementRibo adjusts the count of ribosomes bound on the named gene.
func (t *SpeciesTracker) IncrementRibo(gene string, delta int) {
	t.ribo[gene] += delta
}

// CountRibo returns the number of ribosomes bound on the named gene.
func (t *SpeciesTracker) CountRibo(gene string) int {
	return t.ribo[gene]
}
