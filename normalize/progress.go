package normalize

// Phase identifies which pass of the convergence loop is reporting
// progress.
type Phase string

const (
	// PhaseMeasure is the initial loudness measurement of the input.
	PhaseMeasure Phase = "measure"

	// PhaseLimit is the true-peak limiting pass over a candidate.
	PhaseLimit Phase = "limit"

	// PhaseVerify is the re-measurement of a gain-adjusted, limited
	// candidate.
	PhaseVerify Phase = "verify"
)

// ProgressFunc observes the controller's passes. Within one
// (phase, iteration) pair, current grows monotonically and the final
// call arrives with current == total. iteration is 0 for the initial
// measurement and counts correction iterations from 1 otherwise.
// Callbacks run on the calling goroutine, must not block, and cannot
// affect control flow.
type ProgressFunc func(phase Phase, iteration, current, total int)

// IterationResult records one completed correction iteration: the
// cumulative gain the candidate carried and the integrated loudness it
// measured at.
type IterationResult struct {
	Iteration int
	GainDB    float64
	Loudness  float64
}

// IterationFunc observes one completed correction iteration.
type IterationFunc func(IterationResult)
