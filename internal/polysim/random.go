package polysim

import "math/rand"

// weightedIndex draws an index in [0, len(weights)) with probability
// proportional to its weight. Returns an error if no weight is positive.
func weightedIndex(rng *rand.Rand, weights []float64) (int, error) {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	if sum <= 0 {
		return 0, inconsistentf("weighted choice over %d entries with non-positive total weight %g", len(weights), sum)
	}
	r := rng.Float64() * sum
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i, nil
		}
	}
	// Float64 rounding can leave r at exactly zero after the last entry.
	return len(weights) - 1, nil
}
