package polysim

// Names reserved by the engine. User species must not collide with these.
const (
	// RnaseName is the species name of the degrading enzyme.
	RnaseName = "__rnase"
	// RnaseSiteName is the synthetic decay binding site injected near the
	// 5' end of transcripts when a degradation rate is configured.
	RnaseSiteName = "__rnase_site"
	// RunOffGene is the gene sentinel reported when a mover runs off the
	// end of a polymer without hitting a release site.
	RunOffGene = "NA"
)

// Mover is anything that advances along a polymer one position at a
// time: a polymerase or ribosome, the mask pseudo-mover, or a degrading
// enzyme. Move and MoveBack are single-step operations whose direction
// semantics differ per implementation.
type Mover interface {
	Name() string
	Start() int
	Stop() int
	SetStart(start int)
	SetStop(stop int)
	Footprint() int
	Speed() float64
	ReadingFrame() int
	SetReadingFrame(frame int)
	// Move advances the mover by exactly one position.
	Move()
	// MoveBack undoes a Move.
	MoveBack()
}

// mobileElement carries the state shared by all mover variants.
type mobileElement struct {
	name         string
	start        int
	stop         int
	footprint    int
	speed        float64
	readingFrame int
}

func (m *mobileElement) Name() string              { return m.name }
func (m *mobileElement) Start() int                { return m.start }
func (m *mobileElement) Stop() int                 { return m.stop }
func (m *mobileElement) SetStart(start int)        { m.start = start }
func (m *mobileElement) SetStop(stop int)          { m.stop = stop }
func (m *mobileElement) Footprint() int            { return m.footprint }
func (m *mobileElement) Speed() float64            { return m.speed }
func (m *mobileElement) ReadingFrame() int         { return m.readingFrame }
func (m *mobileElement) SetReadingFrame(frame int) { m.readingFrame = frame }

// Polymerase is a generic forward mover (RNA polymerase, ribosome).
// Coordinates are assigned when it binds a site.
type Polymerase struct {
	mobileElement
}

// NewPolymerase creates an unbound polymerase with the given footprint
// and speed (positions per second).
func NewPolymerase(name string, footprint int, speed float64) *Polymerase {
	return &Polymerase{mobileElement{
		name:      name,
		footprint: footprint,
		speed:     speed,
	}}
}

// Move advances the whole footprint one position downstream.
func (p *Polymerase) Move() {
	p.start++
	p.stop++
}

// MoveBack undoes a Move.
func (p *Polymerase) MoveBack() {
	p.start--
	p.stop--
}

// Mask is the pseudo-mover marking the still-inaccessible trailing
// portion of a polymer, e.g. genome that has not yet entered the cell or
// transcript that has not yet been synthesized. It occupies
// [start, stop]; receding moves its leading edge downstream, exposing
// sequence. Movers on the mask's partner list may push it back.
type Mask struct {
	mobileElement
	interactions map[string]float64
}

// NewMask creates a mask covering the inclusive interval [start, stop].
func NewMask(start, stop int, interactions map[string]float64) *Mask {
	return &Mask{
		mobileElement: mobileElement{
			name:  "mask",
			start: start,
			stop:  stop,
		},
		interactions: copyInteractions(interactions),
	}
}

// Recede shifts the mask's leading edge one position downstream.
func (m *Mask) Recede() { m.start++ }

// Move recedes the mask; a mover pushing the mask moves it the same way.
func (m *Mask) Move() { m.start++ }

// MoveBack undoes a recede.
func (m *Mask) MoveBack() { m.start-- }

// CheckInteraction reports whether the named mover may push the mask
// back instead of colliding with it.
func (m *Mask) CheckInteraction(moverName string) bool {
	_, ok := m.interactions[moverName]
	return ok
}

// Rnase is the degrading enzyme. Unlike a polymerase it extends its
// trailing edge forward, consuming the polymer behind it.
type Rnase struct {
	mobileElement
}

// NewRnase creates an unbound degrading enzyme.
func NewRnase(footprint int, speed float64) *Rnase {
	return &Rnase{mobileElement{
		name:      RnaseName,
		footprint: footprint,
		speed:     speed,
	}}
}

// Move extends the trailing edge one position forward.
func (r *Rnase) Move() { r.stop++ }

// MoveBack undoes a Move.
func (r *Rnase) MoveBack() { r.stop-- }
