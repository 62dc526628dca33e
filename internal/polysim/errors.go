package polysim

import (
	"errors"
	"fmt"
)

// ErrInconsistentState marks a broken engine invariant: index
// misalignment, overlap beyond the one-position tolerance, executing
// with zero propensity, and the like. Errors wrapping it are
// unrecoverable; the run must abort rather than resample, since
// continuing would silently produce wrong simulation results.
var ErrInconsistentState = errors.New("inconsistent simulation state")

func inconsistentf(format string, v ...any) error {
	return fmt.Errorf("%w: %s", ErrInconsistentState, fmt.Sprintf(format, v...))
}
