package polysim

import (
	"math/rand"
	"sort"
)

// MoverManager keeps the movers attached to one polymer ordered by
// position, together with an index-aligned cache of per-mover move
// propensities and their running sum. A mover's cached propensity is the
// positional weight at its trailing position times its speed.
//
// Invariant: len(movers) == len(props) == len(attached) after every
// mutation. A divergence is a broken invariant and surfaces as an error
// wrapping ErrInconsistentState.
type MoverManager struct {
	weights  []float64
	movers   []Mover
	attached []*Transcript
	props    []float64
	propSum  float64
}

// NewMoverManager creates a manager using the given per-position weight
// vector, indexed by polymer position (position 1 is weights[0]).
func NewMoverManager(weights []float64) *MoverManager {
	return &MoverManager{weights: weights}
}

// Count returns the number of attached movers.
func (m *MoverManager) Count() int { return len(m.movers) }

// PropSum returns the running total move propensity.
func (m *MoverManager) PropSum() float64 { return m.propSum }

func (m *MoverManager) weightAt(pos int) (float64, error) {
	idx := pos - 1
	if idx < 0 || idx >= len(m.weights) {
		return 0, inconsistentf("no positional weight for position %d (weight vector length %d)", pos, len(m.weights))
	}
	return m.weights[idx], nil
}

func (m *MoverManager) checkAligned() error {
	if len(m.props) != len(m.movers) || len(m.attached) != len(m.movers) {
		return inconsistentf("propensity cache misaligned: %d movers, %d propensities, %d attachments",
			len(m.movers), len(m.props), len(m.attached))
	}
	return nil
}

// Insert adds a mover at the position preserving ascending start order,
// caching its move propensity at the same index. dependent is the
// polymer the mover is synthesizing, or nil.
func (m *MoverManager) Insert(mover Mover, dependent *Transcript) error {
	weight, err := m.weightAt(mover.Stop())
	if err != nil {
		return err
	}
	at := sort.Search(len(m.movers), func(i int) bool {
		return m.movers[i].Start() > mover.Start()
	})
	prop := weight * mover.Speed()

	m.movers = append(m.movers, nil)
	copy(m.movers[at+1:], m.movers[at:])
	m.movers[at] = mover

	m.attached = append(m.attached, nil)
	copy(m.attached[at+1:], m.attached[at:])
	m.attached[at] = dependent

	m.props = append(m.props, 0)
	copy(m.props[at+1:], m.props[at:])
	m.props[at] = prop
	m.propSum += prop

	return m.checkAligned()
}

// Delete removes the mover at index and its cached propensity,
// subtracting the cached value from the running sum.
func (m *MoverManager) Delete(index int) error {
	if index < 0 || index >= len(m.movers) {
		return inconsistentf("mover index %d out of range (%d attached)", index, len(m.movers))
	}
	m.propSum -= m.props[index]
	m.movers = append(m.movers[:index], m.movers[index+1:]...)
	m.attached = append(m.attached[:index], m.attached[index+1:]...)
	m.props = append(m.props[:index], m.props[index+1:]...)
	return m.checkAligned()
}

// Get returns the mover at index.
func (m *MoverManager) Get(index int) (Mover, error) {
	if index < 0 || index >= len(m.movers) {
		return nil, inconsistentf("mover index %d out of range (%d attached)", index, len(m.movers))
	}
	return m.movers[index], nil
}

// Attached returns the dependent polymer being synthesized by the mover
// at index, or nil.
func (m *MoverManager) Attached(index int) (*Transcript, error) {
	if index < 0 || index >= len(m.attached) {
		return nil, inconsistentf("mover index %d out of range (%d attached)", index, len(m.attached))
	}
	return m.attached[index], nil
}

// ValidIndex reports whether index addresses an attached mover.
func (m *MoverManager) ValidIndex(index int) bool {
	return index >= 0 && index < len(m.movers)
}

// UpdatePropensity recomputes the cached propensity of the mover at
// index from the weight at its current trailing position, adjusting the
// running sum by the delta.
func (m *MoverManager) UpdatePropensity(index int) error {
	if index < 0 || index >= len(m.movers) {
		return inconsistentf("mover index %d out of range (%d attached)", index, len(m.movers))
	}
	weight, err := m.weightAt(m.movers[index].Stop())
	if err != nil {
		return err
	}
	prop := weight * m.movers[index].Speed()
	m.propSum += prop - m.props[index]
	m.props[index] = prop
	return nil
}

// Choose performs propensity-weighted random selection over the attached
// movers and returns the chosen index. Fails if no movers are attached
// or the running sum is not positive.
func (m *MoverManager) Choose(rng *rand.Rand) (int, error) {
	if err := m.checkAligned(); err != nil {
		return 0, err
	}
	if len(m.movers) == 0 {
		return 0, inconsistentf("no movers attached (propensity sum %g)", m.propSum)
	}
	return weightedIndex(rng, m.props)
}
